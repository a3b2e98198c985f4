package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

func kinds(violations []models.Violation) []models.ViolationKind {
	out := make([]models.ViolationKind, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Kind)
	}
	return out
}

func TestValidateAcceptsValidSchedule(t *testing.T) {
	violations, err := Validate([]models.ScheduleEntry{
		entry("G1", "SUB1", "T1", models.Tuesday, 8),
		entry("G1", "SUB1", "T1", models.Friday, 7),
	}, basicCatalog())
	require.NoError(t, err)
	assert.Empty(t, violations)
	assert.NotNil(t, violations)
}

func TestValidateReportsDoubleBookingWithEveryEntry(t *testing.T) {
	catalog := sharedCatalog()
	entries := []models.ScheduleEntry{
		entry("G1", "SA", "T1", models.Monday, 7),
		entry("G2", "SA", "T1", models.Monday, 7),
		entry("G1", "SB", "T2", models.Monday, 7),
	}

	violations, err := Validate(entries, catalog)
	require.NoError(t, err)

	var teacherHits, groupHits *models.Violation
	for i := range violations {
		switch violations[i].Kind {
		case models.ViolationTeacherDoubleBooked:
			teacherHits = &violations[i]
		case models.ViolationGroupDoubleBooked:
			groupHits = &violations[i]
		}
	}
	require.NotNil(t, teacherHits)
	assert.Equal(t, []int{0, 1}, teacherHits.Entries)
	assert.Equal(t, "T1", teacherHits.TeacherID)
	assert.Equal(t, &models.Cell{Day: models.Monday, Hour: 7}, teacherHits.Cell)

	require.NotNil(t, groupHits)
	assert.Equal(t, []int{0, 2}, groupHits.Entries)
	assert.Equal(t, "G1", groupHits.GroupID)
}

func TestValidateReportsEveryRule(t *testing.T) {
	catalog := basicCatalog()
	catalog.Degrees = append(catalog.Degrees, models.Degree{ID: "D2"})
	catalog.Subjects = append(catalog.Subjects, models.Subject{ID: "ART", HoursPerWeek: 1, DegreeID: "D2", Semester: 1})
	catalog.Teachers = append(catalog.Teachers, models.Teacher{ID: "T2", Availability: span(weekdays, 7, 9), CanTeach: []string{"ART"}})

	entries := []models.ScheduleEntry{
		entry("G1", "SUB1", "T1", models.Monday, 7),
		entry("G1", "SUB1", "T1", models.Monday, 12),
		entry("G1", "SUB1", "T2", models.Tuesday, 7),
		{SubjectID: "SUB1", TeacherID: "T1", GroupID: "G1", Day: models.Wednesday, Start: models.At(7), End: models.At(9)},
		entry("G1", "ART", "T2", models.Thursday, 8),
		entry("G9", "SUB1", "T1", models.Friday, 7),
	}

	violations, err := Validate(entries, catalog)
	require.NoError(t, err)

	got := kinds(violations)
	assert.Contains(t, got, models.ViolationOutsideAvailability)
	assert.Contains(t, got, models.ViolationOutsideShift)
	assert.Contains(t, got, models.ViolationTeacherNotEligible)
	assert.Contains(t, got, models.ViolationInvalidDuration)
	assert.Contains(t, got, models.ViolationSubjectNotInGroup)
	assert.Contains(t, got, models.ViolationDegreeMismatch)
	assert.Contains(t, got, models.ViolationUnknownReference)
	assert.Contains(t, got, models.ViolationHoursMismatch)

	for _, v := range violations {
		switch v.Kind {
		case models.ViolationOutsideShift, models.ViolationOutsideAvailability:
			assert.Equal(t, []int{1}, v.Entries)
		case models.ViolationTeacherNotEligible:
			assert.Equal(t, []int{2}, v.Entries)
		case models.ViolationInvalidDuration:
			assert.Equal(t, []int{3}, v.Entries)
		case models.ViolationUnknownReference:
			assert.Equal(t, []int{5}, v.Entries)
		case models.ViolationHoursMismatch:
			require.NotNil(t, v.Expected)
			require.NotNil(t, v.Actual)
			assert.Equal(t, 2, *v.Expected)
			assert.Equal(t, 4, *v.Actual)
			assert.Equal(t, []int{0, 1, 2, 3}, v.Entries)
		}
	}
}

func TestValidateFlagsMissingHours(t *testing.T) {
	violations, err := Validate([]models.ScheduleEntry{entry("G1", "SUB1", "T1", models.Monday, 7)}, basicCatalog())
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, models.ViolationHoursMismatch, violations[0].Kind)
	assert.Equal(t, 1, *violations[0].Actual)
}

func TestValidateMultiHourEntryCountsEveryCoveredHour(t *testing.T) {
	entries := []models.ScheduleEntry{
		{SubjectID: "SUB1", TeacherID: "T1", GroupID: "G1", Day: models.Monday, Start: models.At(7), End: models.At(9)},
		entry("G1", "SUB1", "T1", models.Monday, 8),
	}
	violations, err := Validate(entries, basicCatalog())
	require.NoError(t, err)

	got := kinds(violations)
	assert.Contains(t, got, models.ViolationInvalidDuration)
	assert.Contains(t, got, models.ViolationTeacherDoubleBooked)
	assert.Contains(t, got, models.ViolationGroupDoubleBooked)
}

func TestValidateRejectsMalformedCatalog(t *testing.T) {
	catalog := basicCatalog()
	catalog.Teachers[0].Availability = []models.TimeSlot{slot(models.Monday, 9, 8)}

	_, err := Validate(nil, catalog)
	assert.ErrorIs(t, err, ErrMalformedInterval)
}
