package results

import (
	"io"
	"time"

	"texturefinder/types"

	"github.com/schollz/progressbar/v3"
)

// Progress shows a progress bar while candidates are compared
type Progress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgress creates a progress sink writing to out. The bar is created by Start.
func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

// Start creates the bar for total candidates
func (p *Progress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Scanning candidates"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Record implements Sink
func (p *Progress) Record(types.ComparisonResult) error {
	if p.bar == nil {
		return nil
	}
	return p.bar.Add(1)
}

// Clear removes the bar from the terminal so other output can be printed
func (p *Progress) Clear() {
	if p.bar != nil {
		p.bar.Clear()
	}
}

// Close finishes the bar
func (p *Progress) Close() error {
	if p.bar == nil {
		return nil
	}
	return p.bar.Finish()
}
