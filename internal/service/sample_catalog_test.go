package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

func TestSampleCatalogReturnsIndependentCopies(t *testing.T) {
	first := SampleCatalog()
	first.Shifts[0].Days[0] = models.Saturday

	second := SampleCatalog()
	assert.Equal(t, models.Monday, second.Shifts[0].Days[0])
	assert.Equal(t, models.Monday, weekdays[0])
	assert.Len(t, second.Groups, 3)
	assert.Len(t, second.Subjects, 7)
}
