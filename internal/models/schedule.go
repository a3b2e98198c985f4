package models

import "time"

// ScheduleEntry is one hour of one subject taught by one teacher to one group.
type ScheduleEntry struct {
	SubjectID string `json:"subjectId"`
	TeacherID string `json:"teacherId"`
	GroupID   string `json:"groupId"`
	Day       Day    `json:"day"`
	Start     Clock  `json:"start"`
	End       Clock  `json:"end"`
}

// Cell returns the grid cell the entry starts in.
func (e ScheduleEntry) Cell() Cell {
	return Cell{Day: e.Day, Hour: e.Start.Hour()}
}

// RunStatus is the terminal state of a scheduling run.
type RunStatus string

const (
	RunStatusSolved         RunStatus = "SOLVED"
	RunStatusInfeasible     RunStatus = "INFEASIBLE"
	RunStatusBudgetExceeded RunStatus = "BUDGET_EXCEEDED"
)

// UnsatisfiedReason explains why a (group, subject) pair kept unscheduled units.
type UnsatisfiedReason string

const (
	ReasonNoEligibleTeacher UnsatisfiedReason = "NO_ELIGIBLE_TEACHER"
	ReasonSearchExhausted   UnsatisfiedReason = "SEARCH_EXHAUSTED"
	ReasonBudgetExceeded    UnsatisfiedReason = "BUDGET_EXCEEDED"
)

// Unsatisfied reports the units still missing for a (group, subject) pair.
type Unsatisfied struct {
	GroupID          string            `json:"groupId"`
	SubjectID        string            `json:"subjectId"`
	UnitsStillNeeded int               `json:"unitsStillNeeded"`
	Reason           UnsatisfiedReason `json:"reason"`
}

// ViolationKind names the rule a schedule entry breaks.
type ViolationKind string

const (
	ViolationTeacherDoubleBooked ViolationKind = "TEACHER_DOUBLE_BOOKED"
	ViolationGroupDoubleBooked   ViolationKind = "GROUP_DOUBLE_BOOKED"
	ViolationOutsideAvailability ViolationKind = "OUTSIDE_TEACHER_AVAILABILITY"
	ViolationOutsideShift        ViolationKind = "OUTSIDE_SHIFT"
	ViolationTeacherNotEligible  ViolationKind = "TEACHER_NOT_ELIGIBLE"
	ViolationInvalidDuration     ViolationKind = "INVALID_DURATION"
	ViolationHoursMismatch       ViolationKind = "HOURS_MISMATCH"
	ViolationSubjectNotInGroup   ViolationKind = "SUBJECT_NOT_IN_GROUP"
	ViolationDegreeMismatch      ViolationKind = "DEGREE_MISMATCH"
	ViolationUnknownReference    ViolationKind = "UNKNOWN_REFERENCE"
)

// Violation describes one broken rule with enough context to render a diagnostic.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	Message   string        `json:"message"`
	Entries   []int         `json:"entries,omitempty"`
	GroupID   string        `json:"groupId,omitempty"`
	SubjectID string        `json:"subjectId,omitempty"`
	TeacherID string        `json:"teacherId,omitempty"`
	Cell      *Cell         `json:"cell,omitempty"`
	Expected  *int          `json:"expected,omitempty"`
	Actual    *int          `json:"actual,omitempty"`
}

// SearchStats summarises the work done by the scheduler.
type SearchStats struct {
	Components int           `json:"components"`
	Units      int           `json:"units"`
	Nodes      int64         `json:"nodes"`
	Backtracks int64         `json:"backtracks"`
	MaxDepth   int           `json:"maxDepth"`
	Duration   time.Duration `json:"durationNs"`
}

// ScheduleResult is the outcome of one scheduling run.
type ScheduleResult struct {
	Status      RunStatus       `json:"status"`
	Entries     []ScheduleEntry `json:"entries"`
	Unsatisfied []Unsatisfied   `json:"unsatisfied"`
	Violations  []Violation     `json:"violations"`
	Stats       SearchStats     `json:"stats"`
}
