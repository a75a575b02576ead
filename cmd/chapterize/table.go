package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"chapterize/internal/export"
	"chapterize/internal/timecode"
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

var chapterHeaders = []string{"#", "Title", "Start", "End", "Length", "File"}

func chapterRows(exported []export.Exported) [][]string {
	rows := make([][]string, 0, len(exported))
	for i, item := range exported {
		ch := item.Chapter
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.Title,
			timecode.Format(ch.Start),
			timecode.Format(ch.End),
			timecode.Duration(ch.Start, ch.End),
			filepath.Base(item.File),
		})
	}
	return rows
}

func chapterTable(exported []export.Exported) string {
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(chapterHeaders, chapterRows(exported), aligns)
}

// chapterLines is the plain rendering used when stdout is not a terminal.
func chapterLines(exported []export.Exported) []string {
	lines := make([]string, 0, len(exported))
	for _, row := range chapterRows(exported) {
		lines = append(lines, fmt.Sprintf("%2s  %s - %s  %-10s %s",
			row[0], row[2], row[3], row[4], row[5]))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
