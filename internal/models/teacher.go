package models

// Teacher is an instructor with weekly availability and the subjects they may teach.
// A teacher may teach subjects of several degree programs.
type Teacher struct {
	ID           string     `json:"id" validate:"required"`
	Name         string     `json:"name"`
	Availability []TimeSlot `json:"availability"`
	CanTeach     []string   `json:"canTeach"`
}
