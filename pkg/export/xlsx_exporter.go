package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// XLSXExporter renders one worksheet per group with the weekly grid.
type XLSXExporter struct{}

// NewXLSXExporter builds an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType is the MIME type of rendered files.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension is the file extension of rendered files.
func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the workbook. A schedule with no groups yields a single
// empty "Horario" sheet.
func (e *XLSXExporter) Render(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	grids := BuildGrids(doc)
	if len(grids) == 0 {
		if err := f.SetSheetName("Sheet1", "Horario"); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
		return write(f)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	classStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("class style: %w", err)
	}

	used := map[string]int{}
	for i, g := range grids {
		sheet := sheetName(g, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", sheet, err)
		}
		if err := writeGrid(f, sheet, doc.Title, g, headerStyle, classStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return write(f)
}

func writeGrid(f *excelize.File, sheet, title string, g Grid, headerStyle, classStyle int) error {
	lastCol, _ := excelize.ColumnNumberToName(len(g.Days) + 1)
	if lastCol == "" {
		lastCol = "A"
	}

	heading := g.GroupName
	if title != "" {
		heading = title + " - " + g.GroupName
	}
	if err := f.SetCellValue(sheet, "A1", heading); err != nil {
		return err
	}
	if lastCol != "A" {
		if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A2", "Hora"); err != nil {
		return err
	}
	_ = f.SetColWidth(sheet, "A", "A", 14)
	for i, day := range g.Days {
		col, _ := excelize.ColumnNumberToName(i + 2)
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s2", col), day.String()); err != nil {
			return err
		}
		_ = f.SetColWidth(sheet, col, col, 24)
	}
	if err := f.SetCellStyle(sheet, "A2", lastCol+"2", headerStyle); err != nil {
		return err
	}

	for r, hour := range g.Hours {
		row := r + 3
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), hourLabel(hour)); err != nil {
			return err
		}
		for c, day := range g.Days {
			cell, ok := g.Cells[cellKey(day, hour)]
			if !ok {
				continue
			}
			name, _ := excelize.CoordinatesToCellName(c+2, row)
			if err := f.SetCellValue(sheet, name, cell.Subject+"\n"+cell.Teacher); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, name, name, classStyle); err != nil {
				return err
			}
		}
		_ = f.SetRowHeight(sheet, row, 32)
	}
	return nil
}

func write(f *excelize.File) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName derives a unique, Excel-safe sheet name from the group.
func sheetName(g Grid, used map[string]int) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, g.GroupName)
	name = strings.TrimSpace(name)
	if name == "" {
		name = g.GroupID
	}
	if runes := []rune(name); len(runes) > maxSheetName-3 {
		name = string(runes[:maxSheetName-3])
	}
	used[name]++
	if n := used[name]; n > 1 {
		name = fmt.Sprintf("%s~%d", name, n)
	}
	return name
}
