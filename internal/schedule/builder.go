// Package schedule turns a declarative block configuration into an ordered,
// auditable execution sequence and runs it against a presenter.
package schedule

import (
	"fmt"
	"time"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

// Custom-order tokens, matching the Block Builder's block types.
const (
	TokenStart    = "start"
	TokenEnd      = "end"
	TokenSeq      = "seq"
	TokenSpa      = "spa"
	TokenDual     = "dual"
	TokenBreak    = "break"
	TokenMeasures = "measures"
)

// ConfigError reports an impossible schedule configuration. It is raised
// during construction, before any trial is presented.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("schedule: invalid configuration: %s: %s", e.Field, e.Reason)
}

// TaskPlan configures one task type.
type TaskPlan struct {
	Enabled          bool
	Blocks           int
	TrialsPerBlock   int     // fixed-length blocks (Sequential)
	TargetDuration   float64 // seconds per block; trial counts derived (adaptive tasks)
	DisplayDuration  float64 // seconds
	ISI              float64 // seconds
	TargetRate       float64
	MaxTargetRepeats int
	TimeCompression  bool
	Distractors      bool
}

// Config is the sole input to schedule construction.
type Config struct {
	Sequential TaskPlan
	Spatial    TaskPlan
	Dual       TaskPlan

	// StartLevel is the initial difficulty for every task block, normally
	// the calibrated level from the practice phase.
	StartLevel int

	// PracticeTrials is the scored trial count per calibration block.
	PracticeTrials int

	// Counterbalance swaps the first-occurrence order of Spatial and Dual.
	Counterbalance bool

	// CustomOrder, when non-empty, is a literal token sequence from the
	// Block Builder; it replaces the derived cycle order entirely.
	CustomOrder []string

	// BreaksSchedule and MeasuresSchedule list 1-based task-block ordinals
	// after which the event is inserted. Duplicates insert additional
	// events. Ignored in custom-order mode.
	BreaksSchedule   []int
	MeasuresSchedule []int

	BreakDuration time.Duration
}

// blockCount returns the effective block count for a plan.
func (p TaskPlan) blockCount() int {
	if !p.Enabled {
		return 0
	}
	return p.Blocks
}

// Build constructs the ordered block sequence for a configuration. It is
// deterministic: identical configurations yield identical schedules. The
// result always begins with a Start marker and ends with an End marker.
func Build(cfg Config) (models.Schedule, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if len(cfg.CustomOrder) > 0 {
		return buildCustom(cfg)
	}
	return buildStandard(cfg), nil
}

func validate(cfg Config) error {
	for _, tc := range []struct {
		name string
		plan TaskPlan
	}{
		{"sequential.blocks", cfg.Sequential},
		{"spatial.blocks", cfg.Spatial},
		{"dual.blocks", cfg.Dual},
	} {
		if tc.plan.Blocks < 0 {
			return &ConfigError{Field: tc.name, Reason: "negative block count"}
		}
	}

	if len(cfg.CustomOrder) > 0 {
		return validateCustom(cfg)
	}

	total := cfg.Sequential.blockCount() + cfg.Spatial.blockCount() + cfg.Dual.blockCount()
	if total == 0 && (len(cfg.BreaksSchedule) > 0 || len(cfg.MeasuresSchedule) > 0) {
		return &ConfigError{Field: "breaks_schedule", Reason: "events scheduled but no task blocks enabled"}
	}
	for _, pos := range cfg.BreaksSchedule {
		if pos < 1 || pos > total {
			return &ConfigError{
				Field:  "breaks_schedule",
				Reason: fmt.Sprintf("position %d outside task-block range [1, %d]", pos, total),
			}
		}
	}
	for _, pos := range cfg.MeasuresSchedule {
		if pos < 1 || pos > total {
			return &ConfigError{
				Field:  "measures_schedule",
				Reason: fmt.Sprintf("position %d outside task-block range [1, %d]", pos, total),
			}
		}
	}
	return nil
}

func validateCustom(cfg Config) error {
	for i, tok := range cfg.CustomOrder {
		switch tok {
		case TokenStart, TokenEnd, TokenBreak, TokenMeasures:
		case TokenSeq:
			if !cfg.Sequential.Enabled {
				return &ConfigError{Field: "custom_block_order", Reason: "sequential block requested but task disabled"}
			}
		case TokenSpa:
			if !cfg.Spatial.Enabled {
				return &ConfigError{Field: "custom_block_order", Reason: "spatial block requested but task disabled"}
			}
		case TokenDual:
			if !cfg.Dual.Enabled {
				return &ConfigError{Field: "custom_block_order", Reason: "dual block requested but task disabled"}
			}
		default:
			return &ConfigError{
				Field:  "custom_block_order",
				Reason: fmt.Sprintf("unknown token %q at position %d", tok, i),
			}
		}
	}
	return nil
}

// buildStandard interleaves task types in the fixed cycle order: one
// Sequential block, then the Spatial/Dual pair, alternating the pair's
// internal order each cycle. Counterbalancing swaps which task leads.
// Breaks and measures attach to task-block ordinals.
func buildStandard(cfg Config) models.Schedule {
	seqCount := cfg.Sequential.blockCount()
	firstPlan, secondPlan := cfg.Spatial, cfg.Dual
	firstTask, secondTask := models.Spatial, models.Dual
	if cfg.Counterbalance {
		firstPlan, secondPlan = secondPlan, firstPlan
		firstTask, secondTask = secondTask, firstTask
	}

	breakAt := positionCounts(cfg.BreaksSchedule)
	measureAt := positionCounts(cfg.MeasuresSchedule)

	b := newSequenceBuilder(cfg)
	b.appendMarker(models.KindStart, "Start")

	maxCycle := seqCount
	if c := firstPlan.blockCount(); c > maxCycle {
		maxCycle = c
	}
	if c := secondPlan.blockCount(); c > maxCycle {
		maxCycle = c
	}

	emitTask := func(task models.TaskType) {
		b.appendTask(task)
		// Measures before breaks when both land on the same ordinal.
		for i := 0; i < measureAt[b.taskBlocks]; i++ {
			b.appendMarker(models.KindMeasure, "Sub_M")
		}
		for i := 0; i < breakAt[b.taskBlocks]; i++ {
			b.appendMarker(models.KindBreak, "Break")
		}
	}

	for cycle := 1; cycle <= maxCycle; cycle++ {
		if cycle <= seqCount {
			emitTask(models.Sequential)
		}

		// Alternate the pair order across cycles.
		pair := []struct {
			task models.TaskType
			plan TaskPlan
		}{
			{firstTask, firstPlan},
			{secondTask, secondPlan},
		}
		if cycle%2 == 0 {
			pair[0], pair[1] = pair[1], pair[0]
		}
		for _, p := range pair {
			if cycle <= p.plan.blockCount() {
				emitTask(p.task)
			}
		}
	}

	b.appendMarker(models.KindEnd, "End")
	return b.schedule
}

// buildCustom reproduces the configured token sequence literally. Events may
// precede the first task block, follow the last, or appear consecutively;
// none are reassigned to cycle boundaries.
func buildCustom(cfg Config) (models.Schedule, error) {
	b := newSequenceBuilder(cfg)
	b.appendMarker(models.KindStart, "Start")

	for _, tok := range cfg.CustomOrder {
		switch tok {
		case TokenStart, TokenEnd:
			// Markers are always supplied by the builder itself.
		case TokenSeq:
			b.appendTask(models.Sequential)
		case TokenSpa:
			b.appendTask(models.Spatial)
		case TokenDual:
			b.appendTask(models.Dual)
		case TokenBreak:
			b.appendMarker(models.KindBreak, "Break")
		case TokenMeasures:
			b.appendMarker(models.KindMeasure, "Sub_M")
		}
	}

	b.appendMarker(models.KindEnd, "End")
	return b.schedule, nil
}

// positionCounts turns a position list into occurrence counts, so duplicate
// positions yield additional events.
func positionCounts(positions []int) map[int]int {
	counts := make(map[int]int, len(positions))
	for _, p := range positions {
		counts[p]++
	}
	return counts
}

// sequenceBuilder accumulates descriptors with running ordinals and per-task
// cycle counters.
type sequenceBuilder struct {
	cfg        Config
	schedule   models.Schedule
	taskBlocks int
	cycles     map[models.TaskType]int
}

func newSequenceBuilder(cfg Config) *sequenceBuilder {
	return &sequenceBuilder{
		cfg:    cfg,
		cycles: make(map[models.TaskType]int),
	}
}

func (b *sequenceBuilder) appendMarker(kind models.BlockKind, label string) {
	b.schedule = append(b.schedule, models.BlockDescriptor{
		Ordinal: len(b.schedule),
		Kind:    kind,
		Label:   label,
	})
}

func (b *sequenceBuilder) appendTask(task models.TaskType) {
	b.taskBlocks++
	b.cycles[task]++
	plan := b.cfg.plan(task)
	b.schedule = append(b.schedule, models.BlockDescriptor{
		Ordinal:         len(b.schedule),
		Kind:            models.KindTask,
		Label:           fmt.Sprintf("%s Block %d", taskLabel(task), b.cycles[task]),
		Task:            task,
		Cycle:           b.cycles[task],
		Level:           b.cfg.StartLevel,
		Adaptive:        task != models.Sequential,
		TimeCompression: plan.TimeCompression && task != models.Sequential,
	})
}

func (c Config) plan(task models.TaskType) TaskPlan {
	switch task {
	case models.Spatial:
		return c.Spatial
	case models.Dual:
		return c.Dual
	default:
		return c.Sequential
	}
}

func taskLabel(task models.TaskType) string {
	switch task {
	case models.Sequential:
		return "SEQ"
	case models.Spatial:
		return "SPA"
	case models.Dual:
		return "DUAL"
	}
	return string(task)
}
