package models

// Group is a cohort of students bound to one shift and one degree program.
type Group struct {
	ID       string   `json:"id" validate:"required"`
	Name     string   `json:"name"`
	ShiftID  string   `json:"shiftId" validate:"required"`
	DegreeID string   `json:"degreeId" validate:"required"`
	Subjects []string `json:"subjects"`
}
