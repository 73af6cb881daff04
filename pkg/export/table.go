package export

import (
	"fmt"
	"io"
	"strings"
)

// Format identifies an export file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts a format name case-insensitively; empty means xlsx
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", raw)
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Table is a named set of rows keyed by column
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]interface{}
}

// Write renders the table in the given format
func Write(w io.Writer, format Format, table *Table) error {
	switch format {
	case FormatCSV:
		exporter := NewCSVExporter(w, DefaultCSVOptions())
		if err := exporter.WriteTable(table); err != nil {
			return err
		}
		return exporter.Flush()
	case FormatXLSX:
		options := DefaultExcelOptions()
		if table.Name != "" {
			options.SheetName = table.Name
		}
		exporter, err := NewExcelExporter(options)
		if err != nil {
			return err
		}
		defer exporter.Close()
		if err := exporter.WriteTable(table); err != nil {
			return err
		}
		return exporter.WriteTo(w)
	}
	return fmt.Errorf("unsupported export format: %s", format)
}
