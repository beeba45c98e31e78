package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestComputeFinalMeanOfPresentComponents(t *testing.T) {
	final, remarks := ComputeFinal(f(70), f(80), nil)
	require.NotNil(t, final)
	assert.Equal(t, 75.0, *final)
	assert.Equal(t, RemarksPassed, remarks)
}

func TestComputeFinalAllComponents(t *testing.T) {
	final, remarks := ComputeFinal(f(80), f(85), f(90))
	require.NotNil(t, final)
	assert.Equal(t, 85.0, *final)
	assert.Equal(t, RemarksPassed, remarks)
}

func TestComputeFinalBelowThresholdFails(t *testing.T) {
	final, remarks := ComputeFinal(f(70), f(74), f(75))
	require.NotNil(t, final)
	assert.Equal(t, 73.0, *final)
	assert.Equal(t, RemarksFailed, remarks)
}

func TestComputeFinalExactThresholdPasses(t *testing.T) {
	final, remarks := ComputeFinal(f(75), nil, nil)
	require.NotNil(t, final)
	assert.Equal(t, 75.0, *final)
	assert.Equal(t, RemarksPassed, remarks)
}

func TestComputeFinalNoComponentsIncomplete(t *testing.T) {
	final, remarks := ComputeFinal(nil, nil, nil)
	assert.Nil(t, final)
	assert.Equal(t, RemarksIncomplete, remarks)
}

func TestComputeFinalRoundsToTwoDecimals(t *testing.T) {
	final, _ := ComputeFinal(f(76), f(77), f(77))
	require.NotNil(t, final)
	assert.Equal(t, 76.67, *final)
}

func TestRecalculateRefreshesDerivedColumns(t *testing.T) {
	g := Grade{Prelim: f(60), Midterm: f(65)}
	g.Recalculate()
	require.NotNil(t, g.FinalGrade)
	assert.Equal(t, 62.5, *g.FinalGrade)
	assert.Equal(t, RemarksFailed, g.Remarks)
}
