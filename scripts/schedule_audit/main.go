package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/engine"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/export"
)

type options struct {
	CatalogPath  string
	SchedulePath string
	EntriesOut   string
	ReportOut    string
	Engine       engine.Config
}

// entryRow matches the CSV layout written by the export endpoints. Name columns are ignored.
type entryRow struct {
	Day       string `csv:"day"`
	Start     string `csv:"start"`
	End       string `csv:"end"`
	GroupID   string `csv:"group_id"`
	SubjectID string `csv:"subject_id"`
	TeacherID string `csv:"teacher_id"`
}

type violationRow struct {
	Kind      string `csv:"kind"`
	Message   string `csv:"message"`
	Entries   string `csv:"entries"`
	GroupID   string `csv:"group_id"`
	SubjectID string `csv:"subject_id"`
	TeacherID string `csv:"teacher_id"`
	Cell      string `csv:"cell"`
}

var errFindings = errors.New("schedule has findings")

func main() {
	var opts options
	flag.StringVar(&opts.CatalogPath, "catalog", "", "Catalog snapshot JSON (bare catalog or {\"catalog\": ...})")
	flag.StringVar(&opts.SchedulePath, "schedule", "", "Schedule to audit, JSON entries or CSV; solves the catalog when empty")
	flag.StringVar(&opts.EntriesOut, "entries-out", "", "Write the solved schedule as CSV to this path")
	flag.StringVar(&opts.ReportOut, "report", "", "Write violations as CSV to this path instead of stdout")
	flag.Int64Var(&opts.Engine.NodeBudget, "node-budget", engine.DefaultNodeBudget, "Tentative placements allowed per component")
	flag.DurationVar(&opts.Engine.TimeBudget, "time-budget", 30*time.Second, "Wall-clock limit for the run")
	flag.IntVar(&opts.Engine.Workers, "workers", 0, "Components searched concurrently (0 = GOMAXPROCS)")
	flag.Parse()

	if opts.CatalogPath == "" {
		log.Fatal("-catalog is required")
	}
	err := run(context.Background(), opts, os.Stdout)
	switch {
	case errors.Is(err, errFindings):
		os.Exit(1)
	case err != nil:
		log.Fatalf("schedule audit failed: %v", err)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	catalog, err := loadCatalog(opts.CatalogPath)
	if err != nil {
		return err
	}

	var entries []models.ScheduleEntry
	solved := true
	if opts.SchedulePath != "" {
		entries, err = loadEntries(opts.SchedulePath)
		if err != nil {
			return err
		}
	} else {
		result, err := engine.Schedule(ctx, catalog, opts.Engine)
		if err != nil {
			return fmt.Errorf("solve: %w", err)
		}
		entries = result.Entries
		solved = result.Status == models.RunStatusSolved
		fmt.Fprintf(stdout, "status=%s entries=%d nodes=%d backtracks=%d components=%d duration=%s\n",
			result.Status, len(result.Entries), result.Stats.Nodes, result.Stats.Backtracks, result.Stats.Components, result.Stats.Duration)
		for _, u := range result.Unsatisfied {
			fmt.Fprintf(stdout, "unsatisfied group=%s subject=%s missing=%d reason=%s\n", u.GroupID, u.SubjectID, u.UnitsStillNeeded, u.Reason)
		}
		if opts.EntriesOut != "" {
			if err := writeEntries(opts.EntriesOut, entries, &catalog); err != nil {
				return err
			}
		}
	}

	violations, err := engine.Validate(entries, catalog)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := writeReport(opts.ReportOut, stdout, violations); err != nil {
		return err
	}
	if len(violations) > 0 || !solved {
		return errFindings
	}
	return nil
}

func loadCatalog(path string) (models.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var wrapped struct {
		Catalog *models.Catalog `json:"catalog"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return models.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if wrapped.Catalog != nil {
		return *wrapped.Catalog, nil
	}
	var catalog models.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return models.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return catalog, nil
}

func loadEntries(path string) ([]models.ScheduleEntry, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSVEntries(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	var entries []models.ScheduleEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}
	var wrapped struct {
		Entries []models.ScheduleEntry `json:"entries"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return wrapped.Entries, nil
}

func loadCSVEntries(path string) ([]models.ScheduleEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schedule: %w", err)
	}
	defer file.Close()

	var rows []*entryRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("decode schedule csv: %w", err)
	}
	entries := make([]models.ScheduleEntry, 0, len(rows))
	for i, row := range rows {
		day, err := models.ParseDay(row.Day)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		start, err := models.ParseClock(row.Start)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		end, err := models.ParseClock(row.End)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, models.ScheduleEntry{
			SubjectID: row.SubjectID,
			TeacherID: row.TeacherID,
			GroupID:   row.GroupID,
			Day:       day,
			Start:     start,
			End:       end,
		})
	}
	return entries, nil
}

func writeEntries(path string, entries []models.ScheduleEntry, catalog *models.Catalog) error {
	data, err := export.NewCSVExporter().Render(export.NewDocument("", entries, catalog))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	return nil
}

func writeReport(path string, stdout io.Writer, violations []models.Violation) error {
	rows := make([]*violationRow, 0, len(violations))
	for _, v := range violations {
		row := &violationRow{
			Kind:      string(v.Kind),
			Message:   v.Message,
			Entries:   joinInts(v.Entries),
			GroupID:   v.GroupID,
			SubjectID: v.SubjectID,
			TeacherID: v.TeacherID,
		}
		if v.Cell != nil {
			row.Cell = v.Cell.String()
		}
		rows = append(rows, row)
	}

	out := stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer file.Close()
		out = file
	}
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "no violations")
		return nil
	}
	if err := gocsv.Marshal(&rows, out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
