package adaptive

import (
	"go.uber.org/zap"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

// ControllerConfig holds the induction-phase adjustment thresholds.
type ControllerConfig struct {
	PromoteThreshold   float64 // sub-block accuracy at or above which the level rises
	DemoteThreshold    float64 // sub-block accuracy at or below which the level drops
	MinLevel           int
	MaxLevel           int
	SubBlocks          int // sub-blocks per task block
	MaxChangesPerBlock int // level changes allowed within one block
}

// DefaultControllerConfig returns the standard induction parameters.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		PromoteThreshold:   82,
		DemoteThreshold:    65,
		MinLevel:           2,
		MaxLevel:           4,
		SubBlocks:          3,
		MaxChangesPerBlock: 3,
	}
}

// Controller tracks one N-back level per adaptive task type and adjusts it
// after each sub-block, keeping the participant inside the 65-82% band.
// Sequential is excluded: its level stays fixed at the calibrated value so it
// can serve as the measurement anchor.
type Controller struct {
	cfg        ControllerConfig
	log        *zap.Logger
	fixedLevel int // Sequential anchor
	levels     map[models.TaskType]int
	changes    int // level changes applied in the current block
}

// NewController starts all adaptive task types at the calibrated level.
func NewController(cfg ControllerConfig, calibratedLevel int, log *zap.Logger) *Controller {
	start := calibratedLevel
	if start < cfg.MinLevel {
		start = cfg.MinLevel
	}
	if start > cfg.MaxLevel {
		start = cfg.MaxLevel
	}
	return &Controller{
		cfg:        cfg,
		log:        log,
		fixedLevel: calibratedLevel,
		levels: map[models.TaskType]int{
			models.Spatial: start,
			models.Dual:    start,
		},
	}
}

// SubBlocks returns the number of sub-blocks each adaptive block is split
// into.
func (c *Controller) SubBlocks() int { return c.cfg.SubBlocks }

// Level returns the current level for a task type. Levels persist across
// blocks within a task type.
func (c *Controller) Level(task models.TaskType) int {
	if task == models.Sequential {
		return c.fixedLevel
	}
	return c.levels[task]
}

// BeginBlock resets the per-block change budget.
func (c *Controller) BeginBlock(task models.TaskType) {
	c.changes = 0
}

// ObserveSubBlock evaluates one sub-block's accuracy and returns the level
// for the next sub-block. Once the per-block change budget is exhausted,
// later sub-blocks still evaluate but no further change is applied.
func (c *Controller) ObserveSubBlock(task models.TaskType, accuracy float64) (level int, changed bool) {
	if task == models.Sequential {
		return c.fixedLevel, false
	}

	level = c.levels[task]
	next := level
	switch {
	case accuracy >= c.cfg.PromoteThreshold && level < c.cfg.MaxLevel:
		next = level + 1
	case accuracy <= c.cfg.DemoteThreshold && level > c.cfg.MinLevel:
		next = level - 1
	}

	if next == level {
		return level, false
	}
	if c.changes >= c.cfg.MaxChangesPerBlock {
		c.log.Debug("Change budget exhausted, holding level",
			zap.String("task", string(task)),
			zap.Float64("accuracy", accuracy),
			zap.Int("level", level))
		return level, false
	}

	c.changes++
	c.levels[task] = next
	c.log.Info("Sub-block level change",
		zap.String("task", string(task)),
		zap.Float64("accuracy", accuracy),
		zap.Int("from", level),
		zap.Int("to", next))
	return next, true
}
