package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

func plan(blocks int) TaskPlan {
	return TaskPlan{
		Enabled:         true,
		Blocks:          blocks,
		TrialsPerBlock:  30,
		TargetDuration:  270,
		DisplayDuration: 1.0,
		ISI:             1.0,
	}
}

func standardConfig() Config {
	return Config{
		Sequential:    plan(5),
		Spatial:       plan(4),
		Dual:          plan(4),
		StartLevel:    2,
		BreakDuration: 20 * time.Second,
	}
}

// kinds flattens a schedule into its kind sequence for order assertions.
func kinds(s models.Schedule) []models.BlockKind {
	out := make([]models.BlockKind, len(s))
	for i, b := range s {
		out[i] = b.Kind
	}
	return out
}

func firstCycleTasks(s models.Schedule) []models.TaskType {
	var tasks []models.TaskType
	for _, b := range s.TaskBlocks() {
		tasks = append(tasks, b.Task)
		if len(tasks) == 3 {
			break
		}
	}
	return tasks
}

func TestBuildStandardCounts(t *testing.T) {
	sched, err := Build(standardConfig())
	require.NoError(t, err)

	counts := sched.CountByTask()
	assert.Equal(t, 5, counts[models.Sequential])
	assert.Equal(t, 4, counts[models.Spatial])
	assert.Equal(t, 4, counts[models.Dual])

	byKind := sched.CountByKind()
	assert.Equal(t, 1, byKind[models.KindStart])
	assert.Equal(t, 1, byKind[models.KindEnd])
	assert.Equal(t, 13, byKind[models.KindTask])

	assert.Equal(t, models.KindStart, sched[0].Kind)
	assert.Equal(t, models.KindEnd, sched[len(sched)-1].Kind)

	// Ordinals are the positions in the full sequence.
	for i, b := range sched {
		assert.Equal(t, i, b.Ordinal)
	}
}

func TestBuildStandardCycleOrder(t *testing.T) {
	sched, err := Build(standardConfig())
	require.NoError(t, err)

	tasks := sched.TaskBlocks()
	require.Len(t, tasks, 13)

	// Cycle 1 leads with Spatial, cycle 2 alternates to Dual first.
	assert.Equal(t,
		[]models.TaskType{models.Sequential, models.Spatial, models.Dual},
		firstCycleTasks(sched))
	assert.Equal(t, models.Sequential, tasks[3].Task)
	assert.Equal(t, models.Dual, tasks[4].Task)
	assert.Equal(t, models.Spatial, tasks[5].Task)

	// Labels carry the per-task cycle number.
	assert.Equal(t, "SEQ Block 1", tasks[0].Label)
	assert.Equal(t, "SPA Block 1", tasks[1].Label)
	assert.Equal(t, "DUAL Block 2", tasks[4].Label)

	// Sequential is the fixed anchor; the others adapt.
	assert.False(t, tasks[0].Adaptive)
	assert.True(t, tasks[1].Adaptive)
	assert.True(t, tasks[2].Adaptive)
}

func TestBuildCounterbalanced(t *testing.T) {
	cfg := standardConfig()
	cfg.Counterbalance = true
	sched, err := Build(cfg)
	require.NoError(t, err)

	assert.Equal(t,
		[]models.TaskType{models.Sequential, models.Dual, models.Spatial},
		firstCycleTasks(sched))
}

func TestBuildBreaksAndMeasuresAtOrdinals(t *testing.T) {
	cfg := standardConfig()
	cfg.BreaksSchedule = []int{2, 4}
	cfg.MeasuresSchedule = []int{4}
	sched, err := Build(cfg)
	require.NoError(t, err)

	byKind := sched.CountByKind()
	assert.Equal(t, 2, byKind[models.KindBreak])
	assert.Equal(t, 1, byKind[models.KindMeasure])

	// Walk the sequence: the break follows immediately after the 2nd and 4th
	// task blocks, with the measure set before the break at ordinal 4.
	taskSeen := 0
	var after2, after4 []models.BlockKind
	for i, b := range sched {
		if b.Kind != models.KindTask {
			continue
		}
		taskSeen++
		switch taskSeen {
		case 2:
			after2 = kinds(sched[i+1 : i+2])
		case 4:
			after4 = kinds(sched[i+1 : i+3])
		}
	}
	assert.Equal(t, []models.BlockKind{models.KindBreak}, after2)
	assert.Equal(t, []models.BlockKind{models.KindMeasure, models.KindBreak}, after4)
}

func TestBuildDuplicatePositionsInsertExtraEvents(t *testing.T) {
	cfg := standardConfig()
	cfg.BreaksSchedule = []int{3, 3}
	sched, err := Build(cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, sched.CountByKind()[models.KindBreak])
}

func TestBuildSingleTaskType(t *testing.T) {
	cfg := standardConfig()
	cfg.Sequential.Enabled = false
	cfg.Spatial.Enabled = false
	cfg.Dual = plan(4)
	sched, err := Build(cfg)
	require.NoError(t, err)

	counts := sched.CountByTask()
	assert.Equal(t, 0, counts[models.Sequential])
	assert.Equal(t, 0, counts[models.Spatial])
	assert.Equal(t, 4, counts[models.Dual])

	byKind := sched.CountByKind()
	assert.Equal(t, 1, byKind[models.KindStart])
	assert.Equal(t, 1, byKind[models.KindEnd])
}

func TestBuildCustomOrderLiteral(t *testing.T) {
	cfg := standardConfig()
	cfg.CustomOrder = []string{TokenBreak, TokenSeq, TokenSeq, TokenMeasures, TokenSpa}
	sched, err := Build(cfg)
	require.NoError(t, err)

	assert.Equal(t, []models.BlockKind{
		models.KindStart,
		models.KindBreak,
		models.KindTask,
		models.KindTask,
		models.KindMeasure,
		models.KindTask,
		models.KindEnd,
	}, kinds(sched))

	tasks := sched.TaskBlocks()
	assert.Equal(t, "SEQ Block 1", tasks[0].Label)
	assert.Equal(t, "SEQ Block 2", tasks[1].Label)
	assert.Equal(t, "SPA Block 1", tasks[2].Label)
}

func TestBuildCustomOrderIgnoresMarkerTokens(t *testing.T) {
	cfg := standardConfig()
	cfg.CustomOrder = []string{TokenStart, TokenSeq, TokenEnd}
	sched, err := Build(cfg)
	require.NoError(t, err)

	// Exactly one Start and one End, both builder-supplied.
	byKind := sched.CountByKind()
	assert.Equal(t, 1, byKind[models.KindStart])
	assert.Equal(t, 1, byKind[models.KindEnd])
	assert.Equal(t, 1, byKind[models.KindTask])
}

func TestBuildDeterministic(t *testing.T) {
	cfg := standardConfig()
	cfg.BreaksSchedule = []int{2, 4}
	cfg.MeasuresSchedule = []int{2, 3, 4, 5}

	a, err := Build(cfg)
	require.NoError(t, err)
	b, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildValidation(t *testing.T) {
	t.Run("negative block count", func(t *testing.T) {
		cfg := standardConfig()
		cfg.Spatial.Blocks = -1
		_, err := Build(cfg)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "spatial.blocks", cerr.Field)
	})

	t.Run("break position out of range", func(t *testing.T) {
		cfg := standardConfig()
		cfg.BreaksSchedule = []int{14}
		_, err := Build(cfg)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "breaks_schedule", cerr.Field)
	})

	t.Run("measure position zero", func(t *testing.T) {
		cfg := standardConfig()
		cfg.MeasuresSchedule = []int{0}
		_, err := Build(cfg)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("events without task blocks", func(t *testing.T) {
		cfg := standardConfig()
		cfg.Sequential.Enabled = false
		cfg.Spatial.Enabled = false
		cfg.Dual.Enabled = false
		cfg.BreaksSchedule = []int{1}
		_, err := Build(cfg)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("custom token for disabled task", func(t *testing.T) {
		cfg := standardConfig()
		cfg.Dual.Enabled = false
		cfg.CustomOrder = []string{TokenSeq, TokenDual}
		_, err := Build(cfg)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "custom_block_order", cerr.Field)
	})

	t.Run("unknown custom token", func(t *testing.T) {
		cfg := standardConfig()
		cfg.CustomOrder = []string{TokenSeq, "coffee"}
		_, err := Build(cfg)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
	})
}
