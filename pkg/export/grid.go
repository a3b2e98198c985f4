package export

import (
	"sort"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// Document is a schedule prepared for rendering.
type Document struct {
	Title   string
	Entries []models.ScheduleEntry
	Names   Names
	// Windows lays out each group's grid over its shift; groups without a
	// window are laid out over the days and hours their entries use.
	Windows map[string]Window
}

// Window is the day and hour frame of one group's weekly grid.
type Window struct {
	Days      []models.Day
	StartHour int
	EndHour   int
}

// Names resolves ids into display names; unknown ids render as themselves.
type Names struct {
	Groups   map[string]string
	Subjects map[string]string
	Teachers map[string]string
}

// NewDocument builds a document whose names and grid frames come from the catalog.
func NewDocument(title string, entries []models.ScheduleEntry, catalog *models.Catalog) Document {
	doc := Document{Title: title, Entries: entries}
	if catalog == nil {
		return doc
	}
	doc.Names = Names{
		Groups:   make(map[string]string, len(catalog.Groups)),
		Subjects: make(map[string]string, len(catalog.Subjects)),
		Teachers: make(map[string]string, len(catalog.Teachers)),
	}
	for _, s := range catalog.Subjects {
		doc.Names.Subjects[s.ID] = s.Name
	}
	for _, t := range catalog.Teachers {
		doc.Names.Teachers[t.ID] = t.Name
	}
	shifts := make(map[string]models.Shift, len(catalog.Shifts))
	for _, s := range catalog.Shifts {
		shifts[s.ID] = s
	}
	doc.Windows = make(map[string]Window, len(catalog.Groups))
	for _, g := range catalog.Groups {
		doc.Names.Groups[g.ID] = g.Name
		if shift, ok := shifts[g.ShiftID]; ok {
			days := append([]models.Day(nil), shift.Days...)
			sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
			doc.Windows[g.ID] = Window{Days: days, StartHour: shift.Start.Hour(), EndHour: shift.End.Hour()}
		}
	}
	return doc
}

func lookup(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

// Group returns the display name of a group.
func (n Names) Group(id string) string { return lookup(n.Groups, id) }

// Subject returns the display name of a subject.
func (n Names) Subject(id string) string { return lookup(n.Subjects, id) }

// Teacher returns the display name of a teacher.
func (n Names) Teacher(id string) string { return lookup(n.Teachers, id) }

// Grid is one group's weekly timetable: rows are hours, columns are days.
type Grid struct {
	GroupID   string
	GroupName string
	Days      []models.Day
	Hours     []int
	Cells     map[models.Cell]GridCell
}

// GridCell is the class shown in one grid cell.
type GridCell struct {
	Subject string
	Teacher string
}

// BuildGrids lays out one grid per group, ordered by group id.
func BuildGrids(doc Document) []Grid {
	byGroup := map[string][]models.ScheduleEntry{}
	for _, e := range doc.Entries {
		byGroup[e.GroupID] = append(byGroup[e.GroupID], e)
	}
	for id := range doc.Windows {
		if _, ok := byGroup[id]; !ok {
			byGroup[id] = nil
		}
	}

	ids := make([]string, 0, len(byGroup))
	for id := range byGroup {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	grids := make([]Grid, 0, len(ids))
	for _, id := range ids {
		entries := byGroup[id]
		window, ok := doc.Windows[id]
		if !ok {
			window = frame(entries)
		}
		g := Grid{
			GroupID:   id,
			GroupName: doc.Names.Group(id),
			Days:      window.Days,
			Cells:     make(map[models.Cell]GridCell, len(entries)),
		}
		for h := window.StartHour; h < window.EndHour; h++ {
			g.Hours = append(g.Hours, h)
		}
		for _, e := range entries {
			g.Cells[e.Cell()] = GridCell{
				Subject: doc.Names.Subject(e.SubjectID),
				Teacher: doc.Names.Teacher(e.TeacherID),
			}
		}
		grids = append(grids, g)
	}
	return grids
}

func frame(entries []models.ScheduleEntry) Window {
	if len(entries) == 0 {
		return Window{}
	}
	seen := map[models.Day]bool{}
	w := Window{StartHour: models.HoursPerDay, EndHour: 0}
	for _, e := range entries {
		if !seen[e.Day] {
			seen[e.Day] = true
			w.Days = append(w.Days, e.Day)
		}
		if h := e.Start.Hour(); h < w.StartHour {
			w.StartHour = h
		}
		if h := e.End.Hour(); h > w.EndHour {
			w.EndHour = h
		}
	}
	sort.Slice(w.Days, func(i, j int) bool { return w.Days[i] < w.Days[j] })
	return w
}

func hourLabel(h int) string {
	return models.At(h).String() + "-" + models.At(h+1).String()
}
