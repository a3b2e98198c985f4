package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	Label    string
	Status   TimetableStatus
	Page     int
	PageSize int
}
