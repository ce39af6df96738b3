package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

func compressedPlan() TaskPlan {
	return TaskPlan{
		Enabled:         true,
		TargetDuration:  270,
		DisplayDuration: 1.0,
		ISI:             1.0,
		TimeCompression: true,
	}
}

func TestProgressiveTimingsFirstBlockUsesBase(t *testing.T) {
	tm := ProgressiveTimings(models.Spatial, compressedPlan(), 0)
	assert.Equal(t, 1.0, tm.Display)
	assert.Equal(t, 1.0, tm.ISI)
}

func TestProgressiveTimingsReducePerBlock(t *testing.T) {
	tm := ProgressiveTimings(models.Spatial, compressedPlan(), 2)
	assert.InDelta(t, 0.94, tm.Display, 1e-9)
	assert.InDelta(t, 0.90, tm.ISI, 1e-9)
}

func TestProgressiveTimingsCap(t *testing.T) {
	spa := ProgressiveTimings(models.Spatial, compressedPlan(), 50)
	assert.InDelta(t, 0.85, spa.Display, 1e-9)
	assert.InDelta(t, 0.775, spa.ISI, 1e-9)

	// Dual has a tighter ISI cap than Spatial.
	dual := ProgressiveTimings(models.Dual, compressedPlan(), 50)
	assert.InDelta(t, 0.85, dual.Display, 1e-9)
	assert.InDelta(t, 0.85, dual.ISI, 1e-9)
}

func TestProgressiveTimingsDisabled(t *testing.T) {
	p := compressedPlan()
	p.TimeCompression = false
	tm := ProgressiveTimings(models.Spatial, p, 10)
	assert.Equal(t, Timings{Display: 1.0, ISI: 1.0}, tm)

	// Sequential never compresses, even with the flag set.
	tm = ProgressiveTimings(models.Sequential, compressedPlan(), 10)
	assert.Equal(t, Timings{Display: 1.0, ISI: 1.0}, tm)
}

func TestSubBlockTrials(t *testing.T) {
	p := compressedPlan()
	n := SubBlockTrials(p, 3, Timings{Display: 1.0, ISI: 1.0})
	assert.Equal(t, 45, n)

	// Compressed timings fit more trials in the same span.
	n = SubBlockTrials(p, 3, Timings{Display: 0.85, ISI: 0.775})
	assert.Equal(t, 55, n)
}

func TestSubBlockTrialsFallsBackToFixedCount(t *testing.T) {
	p := TaskPlan{TrialsPerBlock: 30}
	assert.Equal(t, 30, SubBlockTrials(p, 3, Timings{Display: 1.0, ISI: 1.0}))
	assert.Equal(t, 30, SubBlockTrials(TaskPlan{TrialsPerBlock: 30, TargetDuration: 270}, 3, Timings{}))
}
