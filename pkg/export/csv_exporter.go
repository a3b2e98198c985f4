package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// csvRow is the flat CSV layout of one schedule entry.
type csvRow struct {
	Day       string `csv:"day"`
	Start     string `csv:"start"`
	End       string `csv:"end"`
	GroupID   string `csv:"group_id"`
	Group     string `csv:"group"`
	SubjectID string `csv:"subject_id"`
	Subject   string `csv:"subject"`
	TeacherID string `csv:"teacher_id"`
	Teacher   string `csv:"teacher"`
}

// CSVExporter renders a schedule as one CSV row per entry.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType is the MIME type of rendered files.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Extension is the file extension of rendered files.
func (e *CSVExporter) Extension() string { return "csv" }

// Render produces CSV bytes in entry order.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	rows := make([]*csvRow, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		rows = append(rows, &csvRow{
			Day:       entry.Day.String(),
			Start:     entry.Start.String(),
			End:       entry.End.String(),
			GroupID:   entry.GroupID,
			Group:     doc.Names.Group(entry.GroupID),
			SubjectID: entry.SubjectID,
			Subject:   doc.Names.Subject(entry.SubjectID),
			TeacherID: entry.TeacherID,
			Teacher:   doc.Names.Teacher(entry.TeacherID),
		})
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return []byte(out), nil
}
