package models

// Subject is a course of a degree program taught a fixed number of hours per week.
type Subject struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name"`
	HoursPerWeek int    `json:"hoursPerWeek" validate:"min=1"`
	DegreeID     string `json:"degreeId" validate:"required"`
	Semester     int    `json:"semester" validate:"min=1"`
}
