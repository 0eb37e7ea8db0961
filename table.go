package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"texturefinder/scanner"
	"texturefinder/types"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderMatches lays out ranked matches, best first
func renderMatches(mode types.Mode, matches []types.ComparisonResult) string {
	headers := []string{"#", "Path", "Score"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight}
	if mode == types.ModeCompare {
		headers = append(headers, "pHash")
		aligns = append(aligns, alignRight)
	}

	rows := make([][]string, 0, len(matches))
	for i, m := range matches {
		row := []string{strconv.Itoa(i + 1), m.Path, fmt.Sprintf("%.4f", m.Score)}
		if mode == types.ModeCompare {
			row = append(row, strconv.Itoa(m.HashDistance))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}

// printSummary reports the outcome of a run
func printSummary(out io.Writer, mode types.Mode, stats scanner.Stats, matches []types.ComparisonResult, logPath string, verbose bool) {
	if stats.Interrupted {
		fmt.Fprintln(out, "Search interrupted; results are partial.")
	}

	if len(matches) == 0 {
		fmt.Fprintln(out, "No match found.")
	} else {
		if len(matches) > 1 {
			fmt.Fprintln(out, renderMatches(mode, matches))
		}
		fmt.Fprintf(out, "Best match: %s\n", matches[0].Path)
		if logPath != "" {
			fmt.Fprintf(out, "Matches logged to: %s\n", logPath)
		}
	}

	if verbose {
		fmt.Fprintf(out, "Compared %d of %d candidates in %v (%d unreadable, %d workers).\n",
			stats.Processed, stats.Candidates, stats.Elapsed.Round(time.Millisecond), stats.DecodeFailures, stats.Workers)
	}
}
