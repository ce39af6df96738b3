// Package adaptive adjusts N-back difficulty from block performance: a
// plateau detector for the practice/calibration phase and a sub-block
// controller for the induction phase.
package adaptive

import (
	"go.uber.org/zap"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

// PlateauState is the calibration state machine's current state.
type PlateauState int

const (
	Calibrating PlateauState = iota
	GracePeriod
	Plateaued
)

func (s PlateauState) String() string {
	switch s {
	case Calibrating:
		return "calibrating"
	case GracePeriod:
		return "grace"
	case Plateaued:
		return "plateaued"
	}
	return "unknown"
}

// PlateauConfig holds the calibration thresholds. The demotion threshold here
// applies only while at a promoted level and is configured independently of
// the induction demotion threshold.
type PlateauConfig struct {
	PromoteThreshold   float64 // rolling accuracy to promote a level
	DemoteThreshold    float64 // rolling accuracy below which a promoted level drops
	BaseProficiency    float64 // accuracy gate before adaptive cycling begins
	GateBlocks         int     // blocks that must clear BaseProficiency
	StabilityThreshold float64 // max deviation from window mean, in accuracy points
	StabilityWindow    int     // rolling window capacity
	StableBlocksNeeded int     // stable blocks required for plateau
	LevelWindow        int     // blocks in the promote/demote rolling mean
	MaxBlocks          int     // calibration budget, grace blocks included
	MinLevel           int
	MaxLevel           int
}

// DefaultPlateauConfig returns the standard calibration parameters.
func DefaultPlateauConfig() PlateauConfig {
	return PlateauConfig{
		PromoteThreshold:   82,
		DemoteThreshold:    70,
		BaseProficiency:    65,
		GateBlocks:         1,
		StabilityThreshold: 7,
		StabilityWindow:    5,
		StableBlocksNeeded: 3,
		LevelWindow:        2,
		MaxBlocks:          12,
		MinLevel:           2,
		MaxLevel:           3,
	}
}

// PlateauDecision is the detector's verdict after one completed block.
type PlateauDecision struct {
	State        PlateauState
	Level        int
	LevelChanged bool
	// GraceNext means the next block is a grace block: present it, but its
	// result is excluded from scoring and the stability window.
	GraceNext bool
	// Done means calibration is over, either by plateau or budget exhaustion.
	Done      bool
	Plateaued bool
	// Classification is "normal" or "high", set once Done.
	Classification string
}

type blockPoint struct {
	level    int
	accuracy float64
}

// PlateauDetector decides when practice performance has stabilised at a
// level. It consumes one BlockSummary per completed block.
type PlateauDetector struct {
	cfg   PlateauConfig
	log   *zap.Logger
	state PlateauState
	level int

	window      []blockPoint // bounded at cfg.StabilityWindow, oldest evicted
	totalBlocks int
	gatePassed  int
}

// NewPlateauDetector starts a detector at the given level.
func NewPlateauDetector(cfg PlateauConfig, startLevel int, log *zap.Logger) *PlateauDetector {
	if startLevel < cfg.MinLevel {
		startLevel = cfg.MinLevel
	}
	if startLevel > cfg.MaxLevel {
		startLevel = cfg.MaxLevel
	}
	return &PlateauDetector{
		cfg:   cfg,
		log:   log,
		state: Calibrating,
		level: startLevel,
	}
}

// Level returns the current N-back level.
func (d *PlateauDetector) Level() int { return d.level }

// State returns the current state.
func (d *PlateauDetector) State() PlateauState { return d.state }

// InGrace reports whether the next observed block is a grace block.
func (d *PlateauDetector) InGrace() bool { return d.state == GracePeriod }

// Observe records one completed block and returns the next step. Promotion
// takes priority over plateau termination: a participant who is both stable
// and high-performing is advanced, not stopped.
func (d *PlateauDetector) Observe(summary models.BlockSummary) PlateauDecision {
	if d.state == Plateaued {
		dec := d.decision(false)
		dec.Done = true
		dec.Classification = d.classification()
		return dec
	}

	d.totalBlocks++

	// A grace block is excluded from the window and from level decisions.
	if d.state == GracePeriod {
		d.state = Calibrating
		d.log.Info("Grace block completed, excluded from scoring",
			zap.Int("block", summary.BlockNumber),
			zap.Float64("accuracy", summary.Accuracy))
		return d.checkBudget(d.decision(false))
	}

	// Initial competency gate: adaptive cycling starts only once the
	// participant clears base proficiency at the starting level.
	if d.gatePassed < d.cfg.GateBlocks {
		if summary.Accuracy >= d.cfg.BaseProficiency {
			d.gatePassed++
		} else {
			d.log.Info("Below base proficiency, holding level",
				zap.Int("block", summary.BlockNumber),
				zap.Float64("accuracy", summary.Accuracy),
				zap.Float64("required", d.cfg.BaseProficiency))
			return d.checkBudget(d.decision(false))
		}
	}

	d.push(blockPoint{level: d.level, accuracy: summary.Accuracy})

	if mean, ok := d.rollingMean(); ok {
		// Promotion first, so a stable high performer advances instead of
		// plateauing at the current level.
		if mean >= d.cfg.PromoteThreshold && d.level < d.cfg.MaxLevel {
			d.level++
			d.state = GracePeriod
			d.log.Info("Level promoted, next block is a grace block",
				zap.Int("level", d.level),
				zap.Float64("rollingAccuracy", mean))
			dec := d.decision(true)
			dec.GraceNext = true
			return d.checkBudget(dec)
		}
		if mean < d.cfg.DemoteThreshold && d.level > d.cfg.MinLevel {
			d.level--
			d.window = d.window[:0]
			d.log.Info("Level demoted, stability window reset",
				zap.Int("level", d.level),
				zap.Float64("rollingAccuracy", mean))
			return d.checkBudget(d.decision(true))
		}
	}

	if d.isStable() {
		d.state = Plateaued
		d.log.Info("Plateau reached",
			zap.Int("level", d.level),
			zap.Int("blocks", d.totalBlocks))
		dec := d.decision(false)
		dec.Done = true
		dec.Plateaued = true
		dec.Classification = d.classification()
		return dec
	}

	return d.checkBudget(d.decision(false))
}

// push appends to the rolling window, evicting the oldest entry when full.
func (d *PlateauDetector) push(p blockPoint) {
	d.window = append(d.window, p)
	if len(d.window) > d.cfg.StabilityWindow {
		d.window = d.window[1:]
	}
}

// rollingMean is the mean accuracy over the last LevelWindow blocks.
func (d *PlateauDetector) rollingMean() (float64, bool) {
	if len(d.window) < d.cfg.LevelWindow {
		return 0, false
	}
	recent := d.window[len(d.window)-d.cfg.LevelWindow:]
	var sum float64
	for _, p := range recent {
		sum += p.accuracy
	}
	return sum / float64(len(recent)), true
}

// isStable reports whether the last StableBlocksNeeded blocks sit at the
// current level with accuracies within StabilityThreshold of their mean.
func (d *PlateauDetector) isStable() bool {
	n := d.cfg.StableBlocksNeeded
	if len(d.window) < n {
		return false
	}
	recent := d.window[len(d.window)-n:]
	var sum float64
	for _, p := range recent {
		if p.level != d.level {
			return false // level changed recently; not stabilised
		}
		sum += p.accuracy
	}
	mean := sum / float64(n)

	stable := 0
	for _, p := range recent {
		dev := p.accuracy - mean
		if dev < 0 {
			dev = -dev
		}
		if dev <= d.cfg.StabilityThreshold {
			stable++
		}
	}
	return stable >= n
}

// checkBudget terminates calibration when the block budget is exhausted.
func (d *PlateauDetector) checkBudget(dec PlateauDecision) PlateauDecision {
	if dec.Done || d.totalBlocks < d.cfg.MaxBlocks {
		return dec
	}
	d.state = Plateaued
	d.log.Warn("Calibration block budget exhausted without plateau",
		zap.Int("blocks", d.totalBlocks),
		zap.Int("level", d.level))
	dec.State = Plateaued
	dec.Done = true
	dec.Classification = d.classification()
	return dec
}

func (d *PlateauDetector) decision(changed bool) PlateauDecision {
	return PlateauDecision{
		State:        d.state,
		Level:        d.level,
		LevelChanged: changed,
	}
}

func (d *PlateauDetector) classification() string {
	if d.level >= 3 {
		return "high"
	}
	return "normal"
}
