package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// CSVExporter exports tables to CSV format
type CSVExporter struct {
	writer  *csv.Writer
	options CSVOptions
}

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter       rune   `json:"delimiter"`
	UseCRLF         bool   `json:"use_crlf"`
	IncludeHeader   bool   `json:"include_header"`
	DateFormat      string `json:"date_format"`
	TimestampFormat string `json:"timestamp_format"`
	NullValue       string `json:"null_value"`
	BoolTrueValue   string `json:"bool_true_value"`
	BoolFalseValue  string `json:"bool_false_value"`
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:       ',',
		IncludeHeader:   true,
		DateFormat:      "2006-01-02",
		TimestampFormat: time.RFC3339,
		BoolTrueValue:   "yes",
		BoolFalseValue:  "no",
	}
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter(w io.Writer, options CSVOptions) *CSVExporter {
	writer := csv.NewWriter(w)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}
	writer.UseCRLF = options.UseCRLF

	return &CSVExporter{
		writer:  writer,
		options: options,
	}
}

// WriteTable writes the optional header and every row in column order
func (e *CSVExporter) WriteTable(table *Table) error {
	if e.options.IncludeHeader {
		if err := e.writer.Write(table.Columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			record[i] = e.formatValue(row[col])
		}
		if err := e.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer
func (e *CSVExporter) Flush() error {
	e.writer.Flush()
	return e.writer.Error()
}

func (e *CSVExporter) formatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return e.options.NullValue
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return e.options.BoolTrueValue
		}
		return e.options.BoolFalseValue
	case uuid.UUID:
		return v.String()
	case *uuid.UUID:
		if v == nil {
			return e.options.NullValue
		}
		return v.String()
	case time.Time:
		return e.formatTime(v)
	case *time.Time:
		if v == nil {
			return e.options.NullValue
		}
		return e.formatTime(*v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatTime renders midnight values as dates and everything else as timestamps
func (e *CSVExporter) formatTime(t time.Time) string {
	if t.IsZero() {
		return e.options.NullValue
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(e.options.DateFormat)
	}
	return t.Format(e.options.TimestampFormat)
}
