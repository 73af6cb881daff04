package export

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ExcelExporter exports a table to a single-sheet workbook
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions

	headerStyle int
	dataStyle   int
	dateStyle   int
}

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	SheetName    string             `json:"sheet_name"`
	FreezeHeader bool               `json:"freeze_header"`
	AutoFilter   bool               `json:"auto_filter"`
	AutoWidth    bool               `json:"auto_width"`
	HeaderStyle  *ExcelStyleConfig  `json:"header_style,omitempty"`
	DataStyle    *ExcelStyleConfig  `json:"data_style,omitempty"`
	ColumnWidths map[string]float64 `json:"column_widths,omitempty"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:    "Onboarding",
		FreezeHeader: true,
		AutoFilter:   true,
		AutoWidth:    true,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "4472C4",
			FontColor: "FFFFFF",
			Alignment: "center",
			Border:    true,
		},
		DataStyle: &ExcelStyleConfig{
			FontSize:  11,
			Alignment: "left",
			Border:    true,
		},
	}
}

// NewExcelExporter creates a workbook whose first sheet carries options.SheetName
func NewExcelExporter(options ExcelOptions) (*ExcelExporter, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", options.SheetName); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	e := &ExcelExporter{file: file, options: options}
	var err error
	if options.HeaderStyle != nil {
		if e.headerStyle, err = e.createStyle(options.HeaderStyle, 0); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create header style: %w", err)
		}
	}
	data := options.DataStyle
	if data == nil {
		data = &ExcelStyleConfig{}
	}
	if e.dataStyle, err = e.createStyle(data, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create data style: %w", err)
	}
	// 14 is the built-in short date format
	if e.dateStyle, err = e.createStyle(data, 14); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}
	return e, nil
}

// WriteTable writes the header row, data rows, and sheet decorations
func (e *ExcelExporter) WriteTable(table *Table) error {
	sheet := e.options.SheetName

	for i, col := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if e.headerStyle > 0 {
			e.file.SetCellStyle(sheet, cell, cell, e.headerStyle)
		}
	}

	widths := make([]float64, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = estimateWidth(col)
	}

	for r, row := range table.Rows {
		for c, col := range table.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			val := row[col]
			if err := e.setCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if w := estimateWidth(val); w > widths[c] {
				widths[c] = w
			}
		}
	}

	if e.options.FreezeHeader {
		e.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	if e.options.AutoFilter && len(table.Columns) > 0 && len(table.Rows) > 0 {
		lastCol, _ := excelize.CoordinatesToCellName(len(table.Columns), len(table.Rows)+1)
		if err := e.file.AutoFilter(sheet, "A1:"+lastCol, nil); err != nil {
			return fmt.Errorf("failed to set auto filter: %w", err)
		}
	}

	for i, col := range table.Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width, custom := e.options.ColumnWidths[col]
		if !custom {
			if !e.options.AutoWidth {
				continue
			}
			width = min(max(widths[i], 10), 50)
		}
		e.file.SetColWidth(sheet, name, name, width)
	}
	return nil
}

// WriteTo writes the workbook to a writer
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the workbook
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

func (e *ExcelExporter) createStyle(config *ExcelStyleConfig, numFmt int) (int, error) {
	style := &excelize.Style{NumFmt: numFmt}

	size := float64(config.FontSize)
	if size == 0 {
		size = 11
	}
	style.Font = &excelize.Font{Bold: config.FontBold, Size: size, Color: config.FontColor}

	if config.FillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{config.FillColor}}
	}
	if config.Alignment != "" {
		style.Alignment = &excelize.Alignment{Horizontal: config.Alignment}
	}
	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
	return e.file.NewStyle(style)
}

func (e *ExcelExporter) setCellValue(sheet, cell string, val interface{}) error {
	style := e.dataStyle
	switch v := val.(type) {
	case nil:
		val = ""
	case *time.Time:
		if v == nil {
			val = ""
		} else {
			val = *v
			style = e.dateStyle
		}
	case time.Time:
		if v.IsZero() {
			val = ""
		} else {
			style = e.dateStyle
		}
	case uuid.UUID:
		val = v.String()
	case *uuid.UUID:
		if v == nil {
			val = ""
		} else {
			val = v.String()
		}
	}

	if err := e.file.SetCellValue(sheet, cell, val); err != nil {
		return err
	}
	return e.file.SetCellStyle(sheet, cell, cell, style)
}

func estimateWidth(val interface{}) float64 {
	if val == nil {
		return 0
	}
	return float64(len(fmt.Sprintf("%v", val))) * 1.2
}
