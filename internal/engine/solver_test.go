package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

func entry(group, subject, teacher string, day models.Day, hour int) models.ScheduleEntry {
	return models.ScheduleEntry{
		SubjectID: subject,
		TeacherID: teacher,
		GroupID:   group,
		Day:       day,
		Start:     models.At(hour),
		End:       models.At(hour + 1),
	}
}

func TestSchedulePicksEarliestCellsFirst(t *testing.T) {
	result, err := Schedule(context.Background(), basicCatalog(), Config{})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusSolved, result.Status)
	assert.Equal(t, []models.ScheduleEntry{
		entry("G1", "SUB1", "T1", models.Monday, 7),
		entry("G1", "SUB1", "T1", models.Monday, 8),
	}, result.Entries)
	assert.Empty(t, result.Unsatisfied)
	assert.Empty(t, result.Violations)
	assert.Equal(t, 1, result.Stats.Components)
	assert.Equal(t, 2, result.Stats.Units)
	assert.Equal(t, int64(2), result.Stats.Nodes)
	assert.Equal(t, 2, result.Stats.MaxDepth)
}

func TestScheduleSolvesSharedResources(t *testing.T) {
	catalog := sharedCatalog()
	result, err := Schedule(context.Background(), catalog, Config{})
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSolved, result.Status)
	assert.Len(t, result.Entries, 11)

	perPair := map[[2]string]int{}
	for _, e := range result.Entries {
		perPair[[2]string{e.GroupID, e.SubjectID}]++
	}
	assert.Equal(t, map[[2]string]int{
		{"G1", "SA"}: 3, {"G1", "SB"}: 3,
		{"G2", "SA"}: 3, {"G2", "SC"}: 2,
	}, perPair)

	violations, err := Validate(result.Entries, catalog)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestScheduleIsDeterministic(t *testing.T) {
	first, err := Schedule(context.Background(), sharedCatalog(), Config{Workers: 1})
	require.NoError(t, err)
	second, err := Schedule(context.Background(), reversed(sharedCatalog()), Config{Workers: 4})
	require.NoError(t, err)

	a, err := json.Marshal(first.Entries)
	require.NoError(t, err)
	b, err := json.Marshal(second.Entries)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, a, b)
}

func TestScheduleReportsInfeasibleWhenWindowTooSmall(t *testing.T) {
	catalog := basicCatalog()
	catalog.Shifts[0].Days = []models.Day{models.Monday}
	catalog.Subjects[0].HoursPerWeek = 3

	result, err := Schedule(context.Background(), catalog, Config{})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusInfeasible, result.Status)
	assert.Empty(t, result.Entries)
	assert.Equal(t, []models.Unsatisfied{{
		GroupID: "G1", SubjectID: "SUB1", UnitsStillNeeded: 3, Reason: models.ReasonSearchExhausted,
	}}, result.Unsatisfied)
}

func TestScheduleConflictForcedListsEveryShortfall(t *testing.T) {
	monday := []models.Day{models.Monday}
	catalog := models.Catalog{
		Degrees: []models.Degree{{ID: "D1"}},
		Shifts:  []models.Shift{{ID: "S1", Start: models.At(7), End: models.At(9), Days: monday}},
		Teachers: []models.Teacher{
			{ID: "T1", Availability: span(monday, 7, 9), CanTeach: []string{"A", "B"}},
		},
		Subjects: []models.Subject{
			{ID: "A", HoursPerWeek: 2, DegreeID: "D1", Semester: 1},
			{ID: "B", HoursPerWeek: 1, DegreeID: "D1", Semester: 1},
		},
		Groups: []models.Group{
			{ID: "G1", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"A"}},
			{ID: "G2", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"B"}},
		},
	}

	result, err := Schedule(context.Background(), catalog, Config{})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusInfeasible, result.Status)
	assert.Equal(t, []models.Unsatisfied{
		{GroupID: "G1", SubjectID: "A", UnitsStillNeeded: 2, Reason: models.ReasonSearchExhausted},
		{GroupID: "G2", SubjectID: "B", UnitsStillNeeded: 1, Reason: models.ReasonSearchExhausted},
	}, result.Unsatisfied)
}

func TestScheduleOrdersMostConstrainedPairFirst(t *testing.T) {
	// G1 may use T1 on Monday 07:00 or T2 on Monday 08:00; G2 can only have
	// T1 at 07:00, so G2 is placed first and G1 moves to 08:00.
	monday := []models.Day{models.Monday}
	catalog := models.Catalog{
		Degrees: []models.Degree{{ID: "D1"}},
		Shifts:  []models.Shift{{ID: "S1", Start: models.At(7), End: models.At(9), Days: monday}},
		Teachers: []models.Teacher{
			{ID: "T1", Availability: []models.TimeSlot{slot(models.Monday, 7, 8)}, CanTeach: []string{"A", "B"}},
			{ID: "T2", Availability: []models.TimeSlot{slot(models.Monday, 8, 9)}, CanTeach: []string{"A"}},
		},
		Subjects: []models.Subject{
			{ID: "A", HoursPerWeek: 1, DegreeID: "D1", Semester: 1},
			{ID: "B", HoursPerWeek: 1, DegreeID: "D1", Semester: 1},
		},
		Groups: []models.Group{
			{ID: "G1", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"A"}},
			{ID: "G2", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"B"}},
		},
	}

	result, err := Schedule(context.Background(), catalog, Config{})
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSolved, result.Status)
	assert.Equal(t, []models.ScheduleEntry{
		entry("G2", "B", "T1", models.Monday, 7),
		entry("G1", "A", "T2", models.Monday, 8),
	}, result.Entries)
	assert.Zero(t, result.Stats.Backtracks)
}

func TestScheduleKeepsSearchingAroundUnservablePairs(t *testing.T) {
	catalog := sharedCatalog()
	catalog.Subjects = append(catalog.Subjects, models.Subject{ID: "SZ", HoursPerWeek: 2, DegreeID: "D1", Semester: 2})
	catalog.Groups = append(catalog.Groups, models.Group{ID: "G3", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"SZ"}})

	result, err := Schedule(context.Background(), catalog, Config{})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusInfeasible, result.Status)
	assert.Len(t, result.Entries, 11)
	assert.Equal(t, []models.Unsatisfied{{
		GroupID: "G3", SubjectID: "SZ", UnitsStillNeeded: 2, Reason: models.ReasonNoEligibleTeacher,
	}}, result.Unsatisfied)
	assert.Equal(t, 1, result.Stats.Components)
	assert.Equal(t, 13, result.Stats.Units)
}

func TestScheduleNodeBudgetKeepsDeepestPartial(t *testing.T) {
	result, err := Schedule(context.Background(), basicCatalog(), Config{NodeBudget: 1})
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusBudgetExceeded, result.Status)
	assert.Equal(t, []models.ScheduleEntry{entry("G1", "SUB1", "T1", models.Monday, 7)}, result.Entries)
	assert.Equal(t, []models.Unsatisfied{{
		GroupID: "G1", SubjectID: "SUB1", UnitsStillNeeded: 1, Reason: models.ReasonBudgetExceeded,
	}}, result.Unsatisfied)
}

func TestScheduleStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Schedule(ctx, basicCatalog(), Config{TimeBudget: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusBudgetExceeded, result.Status)
	assert.Empty(t, result.Entries)
	require.Len(t, result.Unsatisfied, 1)
	assert.Equal(t, 2, result.Unsatisfied[0].UnitsStillNeeded)
}

func TestScheduleReturnsInputErrorsBeforeSearch(t *testing.T) {
	catalog := basicCatalog()
	catalog.Shifts[0].End = models.At(6)

	result, err := Schedule(context.Background(), catalog, Config{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMalformedInterval)
}

func TestScheduleEmptyCatalogIsSolved(t *testing.T) {
	result, err := Schedule(context.Background(), models.Catalog{}, Config{})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSolved, result.Status)
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
}

func TestPartitionSplitsIndependentPairs(t *testing.T) {
	p, err := Compile(sharedCatalog())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, partition(p.pairs))

	catalog := basicCatalog()
	catalog.Teachers = append(catalog.Teachers, models.Teacher{ID: "T2", Availability: span(weekdays, 7, 9), CanTeach: []string{"SUB2"}})
	catalog.Subjects = append(catalog.Subjects, models.Subject{ID: "SUB2", HoursPerWeek: 1, DegreeID: "D1", Semester: 1})
	catalog.Groups = append(catalog.Groups, models.Group{ID: "G2", ShiftID: "S1", DegreeID: "D1", Subjects: []string{"SUB2"}})
	p, err = Compile(catalog)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1}}, partition(p.pairs))
}

func TestUnitStateString(t *testing.T) {
	assert.Equal(t, "Unassigned", Unassigned.String())
	assert.Equal(t, "TentativelyAssigned", TentativelyAssigned.String())
	assert.Equal(t, "Committed", Committed.String())
}
