package engine

import (
	"sort"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// DemandUnit is one required hour of instruction for a (group, subject) pair.
type DemandUnit struct {
	GroupID            string   `json:"groupId"`
	SubjectID          string   `json:"subjectId"`
	EligibleTeacherIDs []string `json:"eligibleTeacherIds"`
	Sequence           int      `json:"sequence"`
}

// pair groups the interchangeable units of one (group, subject) pairing.
type pair struct {
	groupID   string
	subjectID string
	group     int
	need      int
	// teachers holds teacher indices in ascending id order; base[k] is the
	// cells teachers[k] may teach this pair in (availability within the shift).
	teachers []int
	base     []CellSet
}

// Problem is a compiled, immutable snapshot ready for search.
type Problem struct {
	teacherIDs []string
	groupIDs   []string
	windows    []CellSet
	pairs      []*pair
	blocked    []*pair
	units      int
}

// Compile checks the snapshot structurally and expands it into demand.
// The caller's catalog is never modified. Entities are indexed and walked
// in id order, so input order cannot influence the outcome.
func Compile(catalog models.Catalog) (*Problem, error) {
	degrees := make(map[string]models.Degree, len(catalog.Degrees))
	for _, d := range catalog.Degrees {
		if err := claimID(degrees, d.ID, d, "degree"); err != nil {
			return nil, err
		}
	}
	shifts := make(map[string]models.Shift, len(catalog.Shifts))
	for _, s := range catalog.Shifts {
		if err := claimID(shifts, s.ID, s, "shift"); err != nil {
			return nil, err
		}
	}
	teachers := make(map[string]models.Teacher, len(catalog.Teachers))
	for _, t := range catalog.Teachers {
		if err := claimID(teachers, t.ID, t, "teacher"); err != nil {
			return nil, err
		}
	}
	subjects := make(map[string]models.Subject, len(catalog.Subjects))
	for _, s := range catalog.Subjects {
		if err := claimID(subjects, s.ID, s, "subject"); err != nil {
			return nil, err
		}
	}
	groups := make(map[string]models.Group, len(catalog.Groups))
	for _, g := range catalog.Groups {
		if err := claimID(groups, g.ID, g, "group"); err != nil {
			return nil, err
		}
	}

	teacherIDs := sortedKeys(teachers)
	teacherAvail := make([]CellSet, len(teacherIDs))
	for i, id := range teacherIDs {
		set, err := Normalize(teachers[id].Availability)
		if err != nil {
			return nil, attribute(err, "teacher", id)
		}
		teacherAvail[i] = set
	}
	windows := make(map[string]CellSet, len(shifts))
	for _, id := range sortedKeys(shifts) {
		set, err := ShiftWindow(shifts[id])
		if err != nil {
			return nil, err
		}
		windows[id] = set
	}

	for _, id := range sortedKeys(subjects) {
		s := subjects[id]
		if s.HoursPerWeek < 1 {
			return nil, inputError(KindInvalidSubject, "subject", "hoursPerWeek must be at least 1", id)
		}
		if s.Semester < 1 {
			return nil, inputError(KindInvalidSubject, "subject", "semester must be at least 1", id)
		}
		if _, ok := degrees[s.DegreeID]; !ok {
			return nil, inputError(KindUnknownReference, "subject", "unknown degree "+s.DegreeID, id)
		}
	}

	groupIDs := sortedKeys(groups)
	groupSubjects := make([][]string, len(groupIDs))
	for i, id := range groupIDs {
		g := groups[id]
		if _, ok := shifts[g.ShiftID]; !ok {
			return nil, inputError(KindUnknownReference, "group", "unknown shift "+g.ShiftID, id)
		}
		if _, ok := degrees[g.DegreeID]; !ok {
			return nil, inputError(KindUnknownReference, "group", "unknown degree "+g.DegreeID, id)
		}
		set := uniqueSorted(g.Subjects)
		for _, sid := range set {
			if _, ok := subjects[sid]; !ok {
				return nil, inputError(KindUnknownReference, "group", "unknown subject "+sid, id)
			}
		}
		groupSubjects[i] = set
	}
	for i, id := range groupIDs {
		g := groups[id]
		for _, sid := range groupSubjects[i] {
			if subjects[sid].DegreeID != g.DegreeID {
				return nil, inputError(KindDegreeMismatch, "group",
					"subject belongs to degree "+subjects[sid].DegreeID+", group to "+g.DegreeID, id, sid)
			}
		}
	}

	// E(s): teachers whose canTeach names s. Unknown subject ids are ignored.
	eligible := make(map[string][]int, len(subjects))
	for ti, tid := range teacherIDs {
		for _, sid := range uniqueSorted(teachers[tid].CanTeach) {
			if _, ok := subjects[sid]; ok {
				eligible[sid] = append(eligible[sid], ti)
			}
		}
	}

	p := &Problem{
		teacherIDs: teacherIDs,
		groupIDs:   groupIDs,
		windows:    make([]CellSet, len(groupIDs)),
	}
	for gi, gid := range groupIDs {
		window := windows[groups[gid].ShiftID]
		p.windows[gi] = window
		for _, sid := range groupSubjects[gi] {
			pr := &pair{
				groupID:   gid,
				subjectID: sid,
				group:     gi,
				need:      subjects[sid].HoursPerWeek,
			}
			for _, ti := range eligible[sid] {
				cells := teacherAvail[ti].And(window)
				if cells.Empty() {
					continue
				}
				pr.teachers = append(pr.teachers, ti)
				pr.base = append(pr.base, cells)
			}
			p.units += pr.need
			if len(pr.teachers) == 0 {
				p.blocked = append(p.blocked, pr)
				continue
			}
			p.pairs = append(p.pairs, pr)
		}
	}
	return p, nil
}

// Units lists every demand unit of the problem, blocked pairs included,
// ordered by group id, subject id and sequence.
func (p *Problem) Units() []DemandUnit {
	all := make([]*pair, 0, len(p.pairs)+len(p.blocked))
	all = append(all, p.pairs...)
	all = append(all, p.blocked...)
	sort.Slice(all, func(i, j int) bool {
		if all[i].groupID != all[j].groupID {
			return all[i].groupID < all[j].groupID
		}
		return all[i].subjectID < all[j].subjectID
	})
	units := make([]DemandUnit, 0, p.units)
	for _, pr := range all {
		ids := make([]string, len(pr.teachers))
		for k, ti := range pr.teachers {
			ids[k] = p.teacherIDs[ti]
		}
		for seq := 0; seq < pr.need; seq++ {
			units = append(units, DemandUnit{
				GroupID:            pr.groupID,
				SubjectID:          pr.subjectID,
				EligibleTeacherIDs: ids,
				Sequence:           seq,
			})
		}
	}
	return units
}

// NoEligibleTeacher lists the pairs no teacher can serve inside the group's shift.
func (p *Problem) NoEligibleTeacher() []models.Unsatisfied {
	out := make([]models.Unsatisfied, 0, len(p.blocked))
	for _, pr := range p.blocked {
		out = append(out, models.Unsatisfied{
			GroupID:          pr.groupID,
			SubjectID:        pr.subjectID,
			UnitsStillNeeded: pr.need,
			Reason:           models.ReasonNoEligibleTeacher,
		})
	}
	return out
}

// Expand compiles the catalog and returns its demand units together with
// the pairs that have no eligible teacher.
func Expand(catalog models.Catalog) ([]DemandUnit, []models.Unsatisfied, error) {
	p, err := Compile(catalog)
	if err != nil {
		return nil, nil, err
	}
	return p.Units(), p.NoEligibleTeacher(), nil
}

func claimID[T any](seen map[string]T, id string, v T, entity string) error {
	if id == "" {
		return inputError(KindDuplicateID, entity, "empty id")
	}
	if _, dup := seen[id]; dup {
		return inputError(KindDuplicateID, entity, "id used more than once", id)
	}
	seen[id] = v
	return nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func uniqueSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
