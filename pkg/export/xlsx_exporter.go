package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Timetable"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes the optional title on the first row, then the header row and the data rows.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(data.Headers))
	if err != nil {
		return nil, fmt.Errorf("resolve column: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 14); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if len(data.Headers) > 1 {
		if err := f.SetColWidth(xlsxSheet, "B", lastCol, 28); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create body style: %w", err)
	}

	row := 1
	if data.Title != "" {
		if err := f.SetCellValue(xlsxSheet, "A1", data.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		if err := f.MergeCell(xlsxSheet, "A1", lastCol+"1"); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, "A1", "A1", headerStyle); err != nil {
			return nil, fmt.Errorf("style title: %w", err)
		}
		row++
	}

	headerRow := row
	for i, header := range data.Headers {
		if err := f.SetCellValue(xlsxSheet, cellName(i+1, row), header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(xlsxSheet, cellName(1, row), cellName(len(data.Headers), row), headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for _, values := range data.Rows {
		row++
		for i, header := range data.Headers {
			if err := f.SetCellValue(xlsxSheet, cellName(i+1, row), values[header]); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}
	if row > headerRow {
		if err := f.SetCellStyle(xlsxSheet, cellName(1, headerRow+1), cellName(len(data.Headers), row), bodyStyle); err != nil {
			return nil, fmt.Errorf("style body: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
