package service

import "github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"

var weekdays = []models.Day{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday}

func slot(day models.Day, from, to int) models.TimeSlot {
	return models.TimeSlot{Day: day, Start: models.At(from), End: models.At(to)}
}

// SampleCatalog returns the demonstration dataset the university shipped with the first
// version of the tool. Solving it is INFEASIBLE: no teacher who can teach Algoritmos is
// free during the morning shift of ISC 1A.
func SampleCatalog() models.Catalog {
	return models.Catalog{
		Degrees: []models.Degree{
			{ID: "D1", Name: "Ingeniería en Sistemas Computacionales"},
			{ID: "D2", Name: "Licenciatura en Diseño Gráfico"},
		},
		Shifts: []models.Shift{
			{ID: "Shift1", Name: "Matutino", Start: models.At(7), End: models.At(13), Days: append([]models.Day(nil), weekdays...)},
			{ID: "Shift2", Name: "Vespertino", Start: models.At(16), End: models.At(21), Days: append([]models.Day(nil), weekdays...)},
			{ID: "Shift3", Name: "Mixto (Sabatino)", Start: models.At(7), End: models.At(15), Days: []models.Day{models.Saturday}},
		},
		Teachers: []models.Teacher{
			{
				ID:   "T1",
				Name: "Dr. Alan Turing",
				Availability: []models.TimeSlot{
					slot(models.Monday, 16, 21),
					slot(models.Wednesday, 16, 21),
					slot(models.Friday, 16, 21),
				},
				CanTeach: []string{"S1", "S2", "S5", "S7"},
			},
			{
				ID:   "T2",
				Name: "Dra. Ada Lovelace",
				Availability: []models.TimeSlot{
					slot(models.Tuesday, 7, 13),
					slot(models.Thursday, 7, 13),
				},
				CanTeach: []string{"S3", "S4"},
			},
			{
				ID:           "T3",
				Name:         "Ing. Grace Hopper",
				Availability: []models.TimeSlot{slot(models.Saturday, 7, 15)},
				CanTeach:     []string{"S1", "S6"},
			},
			{
				ID:   "T4",
				Name: "Mtro. Tim Berners-Lee",
				Availability: []models.TimeSlot{
					slot(models.Monday, 7, 13),
					slot(models.Tuesday, 16, 21),
					slot(models.Wednesday, 7, 13),
					slot(models.Thursday, 16, 21),
				},
				CanTeach: []string{"S2", "S3", "S4", "S5"},
			},
		},
		Subjects: []models.Subject{
			{ID: "S1", Name: "Algoritmos", HoursPerWeek: 3, DegreeID: "D1", Semester: 1},
			{ID: "S2", Name: "Estructura de Datos", HoursPerWeek: 4, DegreeID: "D1", Semester: 2},
			{ID: "S3", Name: "Bases de Datos", HoursPerWeek: 4, DegreeID: "D1", Semester: 3},
			{ID: "S4", Name: "Redes de Computadoras", HoursPerWeek: 3, DegreeID: "D1", Semester: 4},
			{ID: "S5", Name: "Inteligencia Artificial", HoursPerWeek: 2, DegreeID: "D1", Semester: 5},
			{ID: "S6", Name: "Programación Web", HoursPerWeek: 5, DegreeID: "D1", Semester: 6},
			{ID: "S7", Name: "Teoría del Color", HoursPerWeek: 3, DegreeID: "D2", Semester: 1},
		},
		Groups: []models.Group{
			{ID: "G1", Name: "ISC 1A", ShiftID: "Shift1", DegreeID: "D1", Subjects: []string{"S1"}},
			{ID: "G2", Name: "ISC 3B", ShiftID: "Shift2", DegreeID: "D1", Subjects: []string{"S2", "S3", "S5"}},
			{ID: "G3", Name: "ISC 5C Sabatino", ShiftID: "Shift3", DegreeID: "D1", Subjects: []string{"S6"}},
		},
	}
}
