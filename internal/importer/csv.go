package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVImporter renders a CSV file as a Markdown table; the first record is the header.
type CSVImporter struct{}

func (CSVImporter) Import(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var table strings.Builder
	writeRow(&table, headers, len(headers))
	table.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range records[1:] {
		writeRow(&table, row, len(headers))
	}
	return joinBlocks([]string{heading(1, titleOf(filename)), strings.TrimSuffix(table.String(), "\n")}), nil
}

func writeRow(b *strings.Builder, cells []string, width int) {
	b.WriteString("|")
	for i := range width {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(strings.TrimSpace(cells[i]), "|", `\|`)
		}
		b.WriteString(" " + cell + " |")
	}
	b.WriteString("\n")
}
