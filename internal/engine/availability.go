package engine

import (
	"errors"
	"fmt"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// Normalize folds a teacher's availability intervals into a cell set.
// Intervals may overlap, touch or come in any order; the result is the
// merged set of schedulable hours. An interval with start >= end, an
// invalid day or a time off the hour grid is rejected.
func Normalize(intervals []models.TimeSlot) (CellSet, error) {
	var set CellSet
	for i, slot := range intervals {
		if err := checkWindow(slot.Day, slot.Start, slot.End); err != nil {
			return CellSet{}, inputError(KindMalformedInterval, "availability",
				fmt.Sprintf("interval %d (%s %s-%s): %v", i, slot.Day, slot.Start, slot.End, err))
		}
		set.AddRange(slot.Day, slot.Start.Hour(), slot.End.Hour())
	}
	return set, nil
}

// ShiftWindow expands a shift into the cells a group on that shift may use.
func ShiftWindow(shift models.Shift) (CellSet, error) {
	var set CellSet
	if len(shift.Days) == 0 {
		return set, inputError(KindMalformedShift, "shift", "no teaching days", shift.ID)
	}
	for _, day := range shift.Days {
		if err := checkWindow(day, shift.Start, shift.End); err != nil {
			return CellSet{}, inputError(KindMalformedInterval, "shift", err.Error(), shift.ID)
		}
		set.AddRange(day, shift.Start.Hour(), shift.End.Hour())
	}
	return set, nil
}

// attribute pins an input error on the entity that carried the bad value.
func attribute(err error, entity string, ids ...string) error {
	var ie *InputError
	if !errors.As(err, &ie) {
		return err
	}
	out := *ie
	out.Entity = entity
	out.IDs = ids
	return &out
}

func checkWindow(day models.Day, start, end models.Clock) error {
	switch {
	case !day.Valid():
		return fmt.Errorf("invalid day %d", int(day))
	case !start.OnTheHour() || !end.OnTheHour():
		return fmt.Errorf("times must fall on the hour")
	case start >= end:
		return fmt.Errorf("start %s is not before end %s", start, end)
	case end > models.At(models.HoursPerDay):
		return fmt.Errorf("end %s is past midnight", end)
	}
	return nil
}

// AvailabilityIndex holds the precomputed cell sets of one snapshot.
type AvailabilityIndex struct {
	teachers map[string]CellSet
	shifts   map[string]CellSet
}

// BuildAvailabilityIndex normalizes every teacher availability and every
// shift window of the catalog.
func BuildAvailabilityIndex(catalog models.Catalog) (*AvailabilityIndex, error) {
	idx := &AvailabilityIndex{
		teachers: make(map[string]CellSet, len(catalog.Teachers)),
		shifts:   make(map[string]CellSet, len(catalog.Shifts)),
	}
	for _, teacher := range catalog.Teachers {
		set, err := Normalize(teacher.Availability)
		if err != nil {
			return nil, attribute(err, "teacher", teacher.ID)
		}
		idx.teachers[teacher.ID] = set
	}
	for _, shift := range catalog.Shifts {
		set, err := ShiftWindow(shift)
		if err != nil {
			return nil, err
		}
		idx.shifts[shift.ID] = set
	}
	return idx, nil
}

// Teacher returns the availability of a teacher; unknown ids yield an empty set.
func (i *AvailabilityIndex) Teacher(id string) CellSet {
	return i.teachers[id]
}

// Shift returns the window of a shift; unknown ids yield an empty set.
func (i *AvailabilityIndex) Shift(id string) CellSet {
	return i.shifts[id]
}
