package models

// Degree is a degree program that owns subjects and groups.
type Degree struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// Shift is the recurring weekly window in which a group receives instruction.
type Shift struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Start Clock  `json:"start"`
	End   Clock  `json:"end"`
	Days  []Day  `json:"days" validate:"required,min=1"`
}

// TimeSlot is a half-open interval [Start, End) on one day.
type TimeSlot struct {
	Day   Day   `json:"day"`
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// Catalog is the entity snapshot consumed by one scheduling or validation run.
type Catalog struct {
	Degrees  []Degree  `json:"degrees" validate:"dive"`
	Shifts   []Shift   `json:"shifts" validate:"dive"`
	Teachers []Teacher `json:"teachers" validate:"dive"`
	Subjects []Subject `json:"subjects" validate:"dive"`
	Groups   []Group   `json:"groups" validate:"dive"`
}
