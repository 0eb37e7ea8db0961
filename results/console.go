package results

import (
	"errors"
	"fmt"
	"io"

	"texturefinder/types"
)

// Console prints results for the user. Only matches are shown unless verbose is set.
type Console struct {
	out     io.Writer
	verbose bool
	before  func()
}

// NewConsole creates a console sink writing to out
func NewConsole(out io.Writer, verbose bool) *Console {
	return &Console{out: out, verbose: verbose}
}

// BeforePrint registers a hook run before each line, used to clear the progress bar
func (c *Console) BeforePrint(fn func()) {
	c.before = fn
}

// Record implements Sink
func (c *Console) Record(result types.ComparisonResult) error {
	if !result.Matched && !c.verbose {
		return nil
	}
	if c.before != nil {
		c.before()
	}
	_, err := fmt.Fprintln(c.out, FormatResult(result))
	return err
}

// FormatResult renders a one line description of a comparison
func FormatResult(result types.ComparisonResult) string {
	switch {
	case result.Matched:
		if result.Mode == types.ModeCompare {
			return fmt.Sprintf("Match found: %s (distance %.4f, phash %d)", result.Path, result.Score, result.HashDistance)
		}
		return fmt.Sprintf("Match found: %s (%.2f%% identical pixels)", result.Path, result.Score*100)
	case result.Err != nil:
		if errors.Is(result.Err, types.ErrDecodeFailure) {
			return fmt.Sprintf("Skipped %s: %v", result.Path, result.Err)
		}
		return fmt.Sprintf("Error %s: %v", result.Path, result.Err)
	case result.Reason != "":
		return fmt.Sprintf("No match: %s (%s)", result.Path, result.Reason)
	case result.Mode == types.ModeCompare:
		return fmt.Sprintf("No match: %s (distance %.4f, phash %d)", result.Path, result.Score, result.HashDistance)
	default:
		return fmt.Sprintf("No match: %s (%.2f%% identical pixels)", result.Path, result.Score*100)
	}
}
