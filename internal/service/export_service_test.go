package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/dto"
	appErrors "github.com/abel-rois666/Generador-Horarios-CUOM/pkg/errors"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/export"
)

func TestExportServiceRendersRunAsCSV(t *testing.T) {
	generator := newGeneratorFixture(t, generatorFixtureConfig{})
	run, err := generator.Generate(context.Background(), dto.GenerateScheduleRequest{Catalog: smallCatalog()})
	require.NoError(t, err)

	svc := NewExportService(generator, nil, nil, zap.NewNop(), ExportConfig{})
	file, err := svc.Export(context.Background(), dto.ExportRequest{RunID: run.RunID, Format: "CSV"})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "horario-run-"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.Contains(t, string(file.Data), "Lunes,07:00,08:00,G1,ISC 1A,SUB1,Algoritmos,T1,Dra. Ada Lovelace")
}

func TestExportServiceRendersRunAsXLSX(t *testing.T) {
	generator := newGeneratorFixture(t, generatorFixtureConfig{})
	run, err := generator.Generate(context.Background(), dto.GenerateScheduleRequest{Catalog: SampleCatalog()})
	require.NoError(t, err)

	svc := NewExportService(generator, nil, nil, nil, ExportConfig{DefaultTitle: "Ciclo 2025-A"})
	file, err := svc.Export(context.Background(), dto.ExportRequest{RunID: run.RunID, Format: dto.ExportFormatXLSX})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"ISC 1A", "ISC 3B", "ISC 5C Sabatino"}, book.GetSheetList())

	title, err := book.GetCellValue("ISC 3B", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Ciclo 2025-A - ISC 3B", title)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	generator := newGeneratorFixture(t, generatorFixtureConfig{})
	svc := NewExportService(generator, nil, nil, nil, ExportConfig{})

	_, err := svc.Export(context.Background(), dto.ExportRequest{RunID: "any", Format: "docx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedFormat.Code, appErrors.FromError(err).Code)

	_, err = svc.Export(context.Background(), dto.ExportRequest{Format: "csv"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Export(context.Background(), dto.ExportRequest{RunID: "missing", Format: "pdf"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceUsesStoredTimetable(t *testing.T) {
	source := &snapshotSourceStub{snapshot: &ScheduleSnapshot{Name: "2025-A v2", Entries: nil}}
	svc := NewExportService(source, nil, nil, nil, ExportConfig{})

	file, err := svc.Export(context.Background(), dto.ExportRequest{TimetableID: "tt-1", Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "tt-1", source.timetableID)
	assert.Equal(t, "horario-2025-a-v2.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServiceWrapsRenderFailure(t *testing.T) {
	source := &snapshotSourceStub{snapshot: &ScheduleSnapshot{Name: "x"}}
	svc := NewExportService(source, map[dto.ExportFormat]Renderer{dto.ExportFormatCSV: failingRenderer{}}, nil, nil, ExportConfig{})

	_, err := svc.Export(context.Background(), dto.ExportRequest{RunID: "r", Format: "csv"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "2025-a-v3", slugify(" 2025 A / v3 "))
	assert.Equal(t, "export", slugify("¿?"))
}

type snapshotSourceStub struct {
	snapshot    *ScheduleSnapshot
	timetableID string
}

func (s *snapshotSourceStub) RunSnapshot(ctx context.Context, runID string) (*ScheduleSnapshot, error) {
	return s.snapshot, nil
}

func (s *snapshotSourceStub) TimetableSnapshot(ctx context.Context, id string) (*ScheduleSnapshot, error) {
	s.timetableID = id
	return s.snapshot, nil
}

type failingRenderer struct{}

func (failingRenderer) ContentType() string { return "text/csv" }
func (failingRenderer) Extension() string   { return "csv" }
func (failingRenderer) Render(export.Document) ([]byte, error) {
	return nil, errors.New("disk full")
}
