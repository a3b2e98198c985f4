package engine

import "github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"

func slot(day models.Day, from, to int) models.TimeSlot {
	return models.TimeSlot{Day: day, Start: models.At(from), End: models.At(to)}
}

func span(days []models.Day, from, to int) []models.TimeSlot {
	out := make([]models.TimeSlot, 0, len(days))
	for _, d := range days {
		out = append(out, slot(d, from, to))
	}
	return out
}

var weekdays = []models.Day{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday}

// basicCatalog is one group on a Mon-Fri 07:00-09:00 shift needing two
// hours of one subject from a teacher available across the whole shift.
func basicCatalog() models.Catalog {
	return models.Catalog{
		Degrees: []models.Degree{{ID: "D1", Name: "Ingeniería"}},
		Shifts: []models.Shift{{
			ID: "S1", Name: "Matutino", Start: models.At(7), End: models.At(9), Days: weekdays,
		}},
		Teachers: []models.Teacher{{
			ID: "T1", Name: "Turing", Availability: span(weekdays, 7, 9), CanTeach: []string{"SUB1"},
		}},
		Subjects: []models.Subject{{ID: "SUB1", Name: "Algoritmos", HoursPerWeek: 2, DegreeID: "D1", Semester: 1}},
		Groups:   []models.Group{{ID: "G1", Name: "1A", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"SUB1"}}},
	}
}

// sharedCatalog has two groups on one Mon-Tue 07:00-10:00 shift competing
// for teachers with overlapping eligibility.
func sharedCatalog() models.Catalog {
	monTue := []models.Day{models.Monday, models.Tuesday}
	return models.Catalog{
		Degrees: []models.Degree{{ID: "D1"}},
		Shifts:  []models.Shift{{ID: "S1", Start: models.At(7), End: models.At(10), Days: monTue}},
		Teachers: []models.Teacher{
			{ID: "T1", Availability: span(monTue, 7, 10), CanTeach: []string{"SA"}},
			{ID: "T2", Availability: []models.TimeSlot{slot(models.Tuesday, 7, 10), slot(models.Monday, 7, 10)}, CanTeach: []string{"SB", "SC"}},
			{ID: "T3", Availability: []models.TimeSlot{slot(models.Tuesday, 7, 10)}, CanTeach: []string{"SA"}},
		},
		Subjects: []models.Subject{
			{ID: "SA", HoursPerWeek: 3, DegreeID: "D1", Semester: 1},
			{ID: "SB", HoursPerWeek: 3, DegreeID: "D1", Semester: 1},
			{ID: "SC", HoursPerWeek: 2, DegreeID: "D1", Semester: 1},
		},
		Groups: []models.Group{
			{ID: "G1", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"SA", "SB"}},
			{ID: "G2", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"SA", "SC"}},
		},
	}
}

// reversed returns a copy of the catalog with every entity list reversed.
func reversed(c models.Catalog) models.Catalog {
	out := models.Catalog{
		Degrees:  append([]models.Degree(nil), c.Degrees...),
		Shifts:   append([]models.Shift(nil), c.Shifts...),
		Teachers: append([]models.Teacher(nil), c.Teachers...),
		Subjects: append([]models.Subject(nil), c.Subjects...),
		Groups:   append([]models.Group(nil), c.Groups...),
	}
	reverse(out.Degrees)
	reverse(out.Shifts)
	reverse(out.Teachers)
	reverse(out.Subjects)
	reverse(out.Groups)
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
