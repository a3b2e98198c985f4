package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// Validate re-checks a schedule against the catalog without looking at how
// it was produced. Every violation is reported, each with the indices of
// the entries involved. An error is returned only when the catalog itself
// cannot be indexed (malformed intervals or duplicate ids).
func Validate(entries []models.ScheduleEntry, catalog models.Catalog) ([]models.Violation, error) {
	ix, err := newCatalogIndex(catalog)
	if err != nil {
		return nil, err
	}

	v := &violationSet{list: []models.Violation{}}
	teacherCells := map[string]map[int][]int{}
	groupCells := map[string]map[int][]int{}
	pairEntries := map[[2]string][]int{}

	for i, e := range entries {
		subject, okS := ix.subjects[e.SubjectID]
		teacher, okT := ix.teachers[e.TeacherID]
		group, okG := ix.groups[e.GroupID]
		if !okS || !okT || !okG {
			v.add(models.Violation{
				Kind:      models.ViolationUnknownReference,
				Message:   fmt.Sprintf("entry %d references %s", i, missingRefs(okS, okT, okG, e)),
				Entries:   []int{i},
				GroupID:   e.GroupID,
				SubjectID: e.SubjectID,
				TeacherID: e.TeacherID,
			})
			continue
		}
		pairEntries[[2]string{e.GroupID, e.SubjectID}] = append(pairEntries[[2]string{e.GroupID, e.SubjectID}], i)

		if !e.Day.Valid() || !e.Start.OnTheHour() || e.End-e.Start != models.At(1) || e.End > models.At(models.HoursPerDay) {
			v.add(models.Violation{
				Kind:      models.ViolationInvalidDuration,
				Message:   fmt.Sprintf("entry %d must cover exactly one hour on the hour, got %s %s-%s", i, e.Day, e.Start, e.End),
				Entries:   []int{i},
				GroupID:   e.GroupID,
				SubjectID: e.SubjectID,
				TeacherID: e.TeacherID,
			})
		}
		if _, ok := teacher.canTeach[e.SubjectID]; !ok {
			v.add(models.Violation{
				Kind:      models.ViolationTeacherNotEligible,
				Message:   fmt.Sprintf("entry %d: teacher %s cannot teach subject %s", i, e.TeacherID, e.SubjectID),
				Entries:   []int{i},
				GroupID:   e.GroupID,
				SubjectID: e.SubjectID,
				TeacherID: e.TeacherID,
			})
		}
		if _, ok := group.subjects[e.SubjectID]; !ok {
			v.add(models.Violation{
				Kind:      models.ViolationSubjectNotInGroup,
				Message:   fmt.Sprintf("entry %d: subject %s is not part of group %s", i, e.SubjectID, e.GroupID),
				Entries:   []int{i},
				GroupID:   e.GroupID,
				SubjectID: e.SubjectID,
			})
		}
		if subject.DegreeID != group.degreeID {
			v.add(models.Violation{
				Kind:      models.ViolationDegreeMismatch,
				Message:   fmt.Sprintf("entry %d: subject %s belongs to degree %s, group %s to %s", i, e.SubjectID, subject.DegreeID, e.GroupID, group.degreeID),
				Entries:   []int{i},
				GroupID:   e.GroupID,
				SubjectID: e.SubjectID,
			})
		}

		// Every hour the entry covers must be inside both windows and
		// counts toward double-booking.
		if !e.Day.Valid() || e.Start >= e.End {
			continue
		}
		for h := e.Start.Hour(); models.At(h) < e.End && h < models.HoursPerDay; h++ {
			idx := CellIndex(e.Day, h)
			cell := CellAt(idx)
			if !teacher.availability.Has(idx) {
				v.add(models.Violation{
					Kind:      models.ViolationOutsideAvailability,
					Message:   fmt.Sprintf("entry %d: teacher %s is not available on %s", i, e.TeacherID, cell),
					Entries:   []int{i},
					TeacherID: e.TeacherID,
					Cell:      &cell,
				})
			}
			if !group.window.Has(idx) {
				v.add(models.Violation{
					Kind:    models.ViolationOutsideShift,
					Message: fmt.Sprintf("entry %d: %s is outside the shift of group %s", i, cell, e.GroupID),
					Entries: []int{i},
					GroupID: e.GroupID,
					Cell:    &cell,
				})
			}
			addCell(teacherCells, e.TeacherID, idx, i)
			addCell(groupCells, e.GroupID, idx, i)
		}
	}

	for _, id := range sortedKeys(teacherCells) {
		for _, idx := range sortedCells(teacherCells[id]) {
			if hits := teacherCells[id][idx]; len(hits) > 1 {
				cell := CellAt(idx)
				v.add(models.Violation{
					Kind:      models.ViolationTeacherDoubleBooked,
					Message:   fmt.Sprintf("teacher %s is booked %d times on %s (entries %v)", id, len(hits), cell, hits),
					Entries:   hits,
					TeacherID: id,
					Cell:      &cell,
				})
			}
		}
	}
	for _, id := range sortedKeys(groupCells) {
		for _, idx := range sortedCells(groupCells[id]) {
			if hits := groupCells[id][idx]; len(hits) > 1 {
				cell := CellAt(idx)
				v.add(models.Violation{
					Kind:    models.ViolationGroupDoubleBooked,
					Message: fmt.Sprintf("group %s is booked %d times on %s (entries %v)", id, len(hits), cell, hits),
					Entries: hits,
					GroupID: id,
					Cell:    &cell,
				})
			}
		}
	}

	for _, gid := range sortedKeys(ix.groups) {
		for _, sid := range sortedKeys(ix.groups[gid].subjects) {
			subject, ok := ix.subjects[sid]
			if !ok {
				continue
			}
			hits := pairEntries[[2]string{gid, sid}]
			if len(hits) == subject.HoursPerWeek {
				continue
			}
			expected, actual := subject.HoursPerWeek, len(hits)
			v.add(models.Violation{
				Kind:      models.ViolationHoursMismatch,
				Message:   fmt.Sprintf("group %s has %d hour(s) of subject %s, expected %d", gid, actual, sid, expected),
				Entries:   hits,
				GroupID:   gid,
				SubjectID: sid,
				Expected:  &expected,
				Actual:    &actual,
			})
		}
	}
	return v.list, nil
}

type violationSet struct {
	list []models.Violation
}

func (v *violationSet) add(violation models.Violation) {
	v.list = append(v.list, violation)
}

type indexedTeacher struct {
	availability CellSet
	canTeach     map[string]struct{}
}

type indexedGroup struct {
	degreeID string
	window   CellSet
	subjects map[string]struct{}
}

type catalogIndex struct {
	subjects map[string]models.Subject
	teachers map[string]indexedTeacher
	groups   map[string]indexedGroup
}

// newCatalogIndex tolerates unknown shift or subject references: they
// become empty windows or unmatched ids and are reported per entry.
func newCatalogIndex(catalog models.Catalog) (*catalogIndex, error) {
	ix := &catalogIndex{
		subjects: make(map[string]models.Subject, len(catalog.Subjects)),
		teachers: make(map[string]indexedTeacher, len(catalog.Teachers)),
		groups:   make(map[string]indexedGroup, len(catalog.Groups)),
	}
	for _, s := range catalog.Subjects {
		if err := claimID(ix.subjects, s.ID, s, "subject"); err != nil {
			return nil, err
		}
	}
	windows := make(map[string]CellSet, len(catalog.Shifts))
	for _, sh := range catalog.Shifts {
		if _, dup := windows[sh.ID]; dup {
			return nil, inputError(KindDuplicateID, "shift", "id used more than once", sh.ID)
		}
		set, err := ShiftWindow(sh)
		if err != nil {
			return nil, err
		}
		windows[sh.ID] = set
	}
	for _, t := range catalog.Teachers {
		set, err := Normalize(t.Availability)
		if err != nil {
			return nil, attribute(err, "teacher", t.ID)
		}
		it := indexedTeacher{availability: set, canTeach: toSet(t.CanTeach)}
		if err := claimID(ix.teachers, t.ID, it, "teacher"); err != nil {
			return nil, err
		}
	}
	for _, g := range catalog.Groups {
		ig := indexedGroup{degreeID: g.DegreeID, window: windows[g.ShiftID], subjects: toSet(g.Subjects)}
		if err := claimID(ix.groups, g.ID, ig, "group"); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func addCell(m map[string]map[int][]int, id string, idx, entry int) {
	cells, ok := m[id]
	if !ok {
		cells = map[int][]int{}
		m[id] = cells
	}
	cells[idx] = append(cells[idx], entry)
}

func sortedCells(m map[int][]int) []int {
	out := make([]int, 0, len(m))
	for idx := range m {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func missingRefs(okS, okT, okG bool, e models.ScheduleEntry) string {
	var missing []string
	if !okS {
		missing = append(missing, "unknown subject "+e.SubjectID)
	}
	if !okT {
		missing = append(missing, "unknown teacher "+e.TeacherID)
	}
	if !okG {
		missing = append(missing, "unknown group "+e.GroupID)
	}
	return strings.Join(missing, ", ")
}
