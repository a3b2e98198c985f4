package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

const (
	pageWidth  = 277.0 // A4 landscape minus margins
	hourColumn = 25.0
	rowHeight  = 12.0
)

// PDFExporter renders one landscape page per group with the weekly grid.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType is the MIME type of rendered files.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension is the file extension of rendered files.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates the PDF document.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	grids := BuildGrids(doc)
	if len(grids) == 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, tr("Sin clases asignadas"), "", 1, "C", false, 0, "")
	}

	for _, g := range grids {
		pdf.AddPage()
		heading := g.GroupName
		if doc.Title != "" {
			heading = doc.Title + " - " + g.GroupName
		}
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(heading)), "", 1, "C", false, 0, "")
		pdf.Ln(3)

		dayWidth := pageWidth - hourColumn
		if len(g.Days) > 0 {
			dayWidth = (pageWidth - hourColumn) / float64(len(g.Days))
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(68, 114, 196)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(hourColumn, 8, "Hora", "1", 0, "C", true, 0, "")
		for _, day := range g.Days {
			pdf.CellFormat(dayWidth, 8, tr(day.String()), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFillColor(221, 235, 247)
		for _, hour := range g.Hours {
			pdf.SetFont("Arial", "B", 8)
			pdf.CellFormat(hourColumn, rowHeight, hourLabel(hour), "1", 0, "C", false, 0, "")
			pdf.SetFont("Arial", "", 7)
			for _, day := range g.Days {
				cell, ok := g.Cells[cellKey(day, hour)]
				if !ok {
					pdf.CellFormat(dayWidth, rowHeight, "", "1", 0, "C", false, 0, "")
					continue
				}
				x, y := pdf.GetXY()
				pdf.Rect(x, y, dayWidth, rowHeight, "FD")
				pdf.SetXY(x, y+1)
				pdf.CellFormat(dayWidth, rowHeight/2-1, tr(cell.Subject), "", 2, "C", false, 0, "")
				pdf.CellFormat(dayWidth, rowHeight/2-1, tr(cell.Teacher), "", 0, "C", false, 0, "")
				pdf.SetXY(x+dayWidth, y)
			}
			pdf.Ln(rowHeight)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func cellKey(day models.Day, hour int) models.Cell {
	return models.Cell{Day: day, Hour: hour}
}
