package engine

import (
	"math/bits"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// GridSize is the number of cells in the weekly grid.
const GridSize = models.DaysPerWeek * models.HoursPerDay

const gridWords = (GridSize + 63) / 64

// CellSet is a dense bitset over the weekly grid. Bit i is the cell
// (day, hour) with i = (day-1)*24 + hour, so ascending index order is
// week order: earlier day first, then earlier hour.
type CellSet [gridWords]uint64

// CellIndex maps a day and hour to its bit index. It returns -1 when the
// coordinates fall outside the grid.
func CellIndex(day models.Day, hour int) int {
	if !day.Valid() || hour < 0 || hour >= models.HoursPerDay {
		return -1
	}
	return (int(day)-1)*models.HoursPerDay + hour
}

// CellAt is the inverse of CellIndex.
func CellAt(index int) models.Cell {
	return models.Cell{
		Day:  models.Day(index/models.HoursPerDay + 1),
		Hour: index % models.HoursPerDay,
	}
}

// Add marks the cell at index.
func (s *CellSet) Add(index int) {
	s[index/64] |= 1 << uint(index%64)
}

// Remove clears the cell at index.
func (s *CellSet) Remove(index int) {
	s[index/64] &^= 1 << uint(index%64)
}

// Has reports whether the cell at index is set.
func (s CellSet) Has(index int) bool {
	if index < 0 || index >= GridSize {
		return false
	}
	return s[index/64]&(1<<uint(index%64)) != 0
}

// AddRange marks every hour in [fromHour, toHour) of day.
func (s *CellSet) AddRange(day models.Day, fromHour, toHour int) {
	for h := fromHour; h < toHour; h++ {
		if idx := CellIndex(day, h); idx >= 0 {
			s.Add(idx)
		}
	}
}

// Count returns the number of cells in the set.
func (s CellSet) Count() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// Empty reports whether no cell is set.
func (s CellSet) Empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// And returns the intersection of s and o.
func (s CellSet) And(o CellSet) CellSet {
	var out CellSet
	for i := range s {
		out[i] = s[i] & o[i]
	}
	return out
}

// Or returns the union of s and o.
func (s CellSet) Or(o CellSet) CellSet {
	var out CellSet
	for i := range s {
		out[i] = s[i] | o[i]
	}
	return out
}

// AndNot returns the cells of s that are not in o.
func (s CellSet) AndNot(o CellSet) CellSet {
	var out CellSet
	for i := range s {
		out[i] = s[i] &^ o[i]
	}
	return out
}

// Intersects reports whether s and o share a cell.
func (s CellSet) Intersects(o CellSet) bool {
	for i := range s {
		if s[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

// After returns the cells of s with an index strictly greater than index.
func (s CellSet) After(index int) CellSet {
	if index < 0 {
		return s
	}
	var out CellSet
	for i := range s {
		lo := i * 64
		switch {
		case index >= lo+63:
		case index < lo:
			out[i] = s[i]
		default:
			out[i] = s[i] &^ (uint64(1)<<uint(index-lo+1) - 1)
		}
	}
	return out
}

// Next returns the smallest index in s that is >= from, or -1.
func (s CellSet) Next(from int) int {
	if from < 0 {
		from = 0
	}
	for i := from / 64; i < gridWords; i++ {
		w := s[i]
		if i == from/64 {
			w &^= uint64(1)<<uint(from%64) - 1
		}
		if w != 0 {
			idx := i*64 + bits.TrailingZeros64(w)
			if idx >= GridSize {
				return -1
			}
			return idx
		}
	}
	return -1
}

// Each calls fn for every cell index in ascending order.
func (s CellSet) Each(fn func(index int)) {
	for i, w := range s {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(i*64 + tz)
			w &= w - 1
		}
	}
}

// Cells lists the set as grid cells in week order.
func (s CellSet) Cells() []models.Cell {
	out := make([]models.Cell, 0, s.Count())
	s.Each(func(index int) {
		out = append(out, CellAt(index))
	})
	return out
}

// Intervals converts the set back into merged, sorted hour intervals.
func (s CellSet) Intervals() []models.TimeSlot {
	var out []models.TimeSlot
	for _, day := range models.Week {
		start := -1
		for h := 0; h <= models.HoursPerDay; h++ {
			in := h < models.HoursPerDay && s.Has(CellIndex(day, h))
			switch {
			case in && start < 0:
				start = h
			case !in && start >= 0:
				out = append(out, models.TimeSlot{Day: day, Start: models.At(start), End: models.At(h)})
				start = -1
			}
		}
	}
	return out
}
