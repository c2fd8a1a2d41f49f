package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var csvHeaders = []string{"date", "start", "end", "title", "kind", "subject", "type"}

// CSVExporter renders a calendar week into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the week, one row per item.
func (e *CSVExporter) Render(week Week) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, item := range week.Items {
		record := []string{item.Date, item.Start, item.End, item.Title, item.Kind, item.Subject, item.Type}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
