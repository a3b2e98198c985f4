package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Day is a teaching day of the week, Monday (1) through Saturday (6).
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysPerWeek is the number of teaching days in the weekly grid.
const DaysPerWeek = 6

// HoursPerDay is the number of hour rows per day in the weekly grid.
const HoursPerDay = 24

// Week lists the teaching days in week order.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var dayNames = map[Day]string{
	Monday:    "Lunes",
	Tuesday:   "Martes",
	Wednesday: "Miércoles",
	Thursday:  "Jueves",
	Friday:    "Viernes",
	Saturday:  "Sábado",
}

var dayAliases = map[string]Day{
	"lunes":     Monday,
	"martes":    Tuesday,
	"miércoles": Wednesday,
	"miercoles": Wednesday,
	"jueves":    Thursday,
	"viernes":   Friday,
	"sábado":    Saturday,
	"sabado":    Saturday,
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
}

// Valid reports whether d is one of the six teaching days.
func (d Day) Valid() bool {
	return d >= Monday && d <= Saturday
}

// String returns the display name of the day.
func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Day(%d)", int(d))
}

// MarshalText encodes the day with its display name.
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid day %d", int(d))
	}
	return []byte(dayNames[d]), nil
}

// UnmarshalText accepts Spanish or English day names, with or without accents.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDay resolves a day name into a Day.
func ParseDay(raw string) (Day, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if day, ok := dayAliases[key]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unknown day %q", raw)
}

// Clock is a time of day expressed in minutes since midnight.
type Clock int

// At returns the clock value for the start of the given hour.
func At(hour int) Clock {
	return Clock(hour * 60)
}

// ParseClock parses an "HH:mm" value between 00:00 and 24:00.
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:mm", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("time %q out of range", raw)
	}
	return Clock(hour*60 + minute), nil
}

// Hour returns the hour component.
func (c Clock) Hour() int {
	return int(c) / 60
}

// OnTheHour reports whether the clock has no minute component.
func (c Clock) OnTheHour() bool {
	return int(c)%60 == 0
}

// String formats the clock as "HH:mm".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalText encodes the clock as "HH:mm".
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes an "HH:mm" value.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Cell is one hour of one day in the weekly grid.
type Cell struct {
	Day  Day `json:"day"`
	Hour int `json:"hour"`
}

// String renders the cell as "Lunes 07:00".
func (c Cell) String() string {
	return fmt.Sprintf("%s %s", c.Day, At(c.Hour))
}
