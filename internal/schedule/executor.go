package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/adaptive"
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/metrics"
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

// PresentRequest asks the presentation collaborator for one (sub-)block of
// trials. The collaborator decides pacing; the core is purely reactive.
type PresentRequest struct {
	Block     models.BlockDescriptor
	Level     int
	SubBlock  int // 0-based
	SubBlocks int
	Trials    int
	Timings   Timings
}

// Presenter is the external presentation collaborator. All calls block until
// the collaborator is done; cancellation is cooperative via the context.
type Presenter interface {
	// Transition reports a Start or End marker.
	Transition(ctx context.Context, block models.BlockDescriptor) error
	// Break yields control for a rest period.
	Break(ctx context.Context, block models.BlockDescriptor, seconds float64) error
	// CollectMeasures presents the subjective measure items.
	CollectMeasures(ctx context.Context, block models.BlockDescriptor, items []models.MeasureItem) ([]models.MeasureResponse, error)
	// PresentBlock runs one (sub-)block and returns its trial records.
	PresentBlock(ctx context.Context, req PresentRequest) ([]models.TrialRecord, error)
}

// RunResult is the aggregate record for one induction run.
type RunResult struct {
	RunID       string                   `json:"runId"`
	Schedule    models.Schedule          `json:"schedule"`
	Summaries   []models.BlockSummary    `json:"summaries"`
	Measures    []models.MeasureResponse `json:"measures"`
	FinalLevels map[models.TaskType]int  `json:"finalLevels"`
	Completed   bool                     `json:"completed"`
}

// Executor walks a built schedule strictly block-by-block, scoring each task
// block and feeding results to the difficulty controller.
type Executor struct {
	schedule   models.Schedule
	cfg        Config
	presenter  Presenter
	controller *adaptive.Controller
	measures   []models.MeasureItem
	log        *zap.Logger

	// onSummary, when set, receives each BlockSummary as soon as it is
	// computed, so completed results survive a mid-run abort.
	onSummary func(models.BlockSummary)
}

// NewExecutor wires an executor for a built schedule.
func NewExecutor(sched models.Schedule, cfg Config, presenter Presenter, controller *adaptive.Controller, measures []models.MeasureItem, log *zap.Logger) *Executor {
	return &Executor{
		schedule:   sched,
		cfg:        cfg,
		presenter:  presenter,
		controller: controller,
		measures:   measures,
		log:        log,
	}
}

// OnSummary registers a sink invoked for every completed BlockSummary.
func (e *Executor) OnSummary(fn func(models.BlockSummary)) {
	e.onSummary = fn
}

// Run executes the schedule in order. The fully resolved sequence is logged
// before any trial is presented. An abort via ctx takes effect after the
// in-flight block; all previously completed summaries remain in the result.
func (e *Executor) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:    uuid.NewString(),
		Schedule: append(models.Schedule(nil), e.schedule...),
	}

	e.logResolvedSequence(result.RunID)

	taskBlock := 0
	for _, block := range e.schedule {
		if err := ctx.Err(); err != nil {
			e.log.Warn("Run aborted", zap.String("runId", result.RunID), zap.Int("ordinal", block.Ordinal))
			return result, err
		}

		switch block.Kind {
		case models.KindStart, models.KindEnd:
			if err := e.presenter.Transition(ctx, block); err != nil {
				return result, fmt.Errorf("transition at ordinal %d: %w", block.Ordinal, err)
			}

		case models.KindBreak:
			e.log.Info("Break", zap.Int("ordinal", block.Ordinal), zap.Duration("duration", e.cfg.BreakDuration))
			if err := e.presenter.Break(ctx, block, e.cfg.BreakDuration.Seconds()); err != nil {
				return result, fmt.Errorf("break at ordinal %d: %w", block.Ordinal, err)
			}

		case models.KindMeasure:
			responses, err := e.presenter.CollectMeasures(ctx, block, e.measures)
			if err != nil {
				return result, fmt.Errorf("measures at ordinal %d: %w", block.Ordinal, err)
			}
			for i := range responses {
				responses[i].Point = fmt.Sprintf("%s %d", block.Label, block.Ordinal)
			}
			result.Measures = append(result.Measures, responses...)

		case models.KindTask:
			taskBlock++
			summary, err := e.runTaskBlock(ctx, block, taskBlock)
			if err != nil {
				return result, err
			}
			result.Summaries = append(result.Summaries, summary)
			if e.onSummary != nil {
				e.onSummary(summary)
			}
		}
	}

	result.FinalLevels = map[models.TaskType]int{
		models.Sequential: e.controller.Level(models.Sequential),
		models.Spatial:    e.controller.Level(models.Spatial),
		models.Dual:       e.controller.Level(models.Dual),
	}
	result.Completed = true
	return result, nil
}

// logResolvedSequence emits the auditable block order before execution: the
// realized order must be verifiable before any trial is presented.
func (e *Executor) logResolvedSequence(runID string) {
	e.log.Info("Resolved block sequence",
		zap.String("runId", runID),
		zap.Int("blocks", len(e.schedule)))
	for _, b := range e.schedule {
		e.log.Info("Scheduled block",
			zap.String("runId", runID),
			zap.Int("ordinal", b.Ordinal),
			zap.String("label", b.Label),
			zap.String("kind", string(b.Kind)),
			zap.Int("level", b.Level))
	}
}

// runTaskBlock presents one task block, scoring sub-blocks for adaptive
// tasks. Data errors degrade to "hold level, mark block incomplete"; only
// presenter failures abort the run.
func (e *Executor) runTaskBlock(ctx context.Context, block models.BlockDescriptor, blockNumber int) (models.BlockSummary, error) {
	plan := e.cfg.plan(block.Task)
	levelAtStart := e.controller.Level(block.Task)
	timings := ProgressiveTimings(block.Task, plan, block.Cycle-1)

	subBlocks := 1
	if block.Adaptive {
		subBlocks = e.controller.SubBlocks()
		e.controller.BeginBlock(block.Task)
	}

	var trials []models.TrialRecord
	incomplete := false

	for sub := 0; sub < subBlocks; sub++ {
		req := PresentRequest{
			Block:     block,
			Level:     e.controller.Level(block.Task),
			SubBlock:  sub,
			SubBlocks: subBlocks,
			Timings:   timings,
		}
		if block.Adaptive {
			req.Trials = SubBlockTrials(plan, subBlocks, timings)
		} else {
			req.Trials = plan.TrialsPerBlock
		}

		records, err := e.presenter.PresentBlock(ctx, req)
		if err != nil {
			return models.BlockSummary{}, fmt.Errorf("present %s sub-block %d: %w", block.Label, sub, err)
		}

		if err := metrics.ValidateTrials(records); err != nil {
			// Malformed stream aborts scoring for this block only.
			e.log.Error("Malformed trial record, block marked incomplete",
				zap.String("block", block.Label),
				zap.Error(err))
			incomplete = true
			break
		}

		trials = append(trials, renumber(records, len(trials))...)

		if block.Adaptive {
			accuracy, _, err := metrics.AccuracyAndMeanRT(records)
			if err != nil {
				// No scoreable trials: hold the current level.
				e.log.Warn("Sub-block had no scoreable trials, holding level",
					zap.String("block", block.Label),
					zap.Int("subBlock", sub))
				continue
			}
			e.controller.ObserveSubBlock(block.Task, accuracy)
		}
	}

	summary, err := metrics.Summarize(blockNumber, block.Task, levelAtStart, trials)
	if err != nil {
		if errors.Is(err, metrics.ErrInsufficientData) || errors.Is(err, metrics.ErrMalformedTrial) {
			summary.Incomplete = true
			e.log.Warn("Block could not be fully scored",
				zap.String("block", block.Label),
				zap.Error(err))
			return summary, nil
		}
		return summary, err
	}
	summary.Incomplete = summary.Incomplete || incomplete

	e.log.Info("Block complete",
		zap.String("block", block.Label),
		zap.Float64("accuracy", summary.Accuracy),
		zap.Float64("dPrime", summary.DPrime),
		zap.Int("nextLevel", e.controller.Level(block.Task)))
	return summary, nil
}

// renumber shifts per-sub-block trial indices so they continue across the
// whole block.
func renumber(records []models.TrialRecord, offset int) []models.TrialRecord {
	if offset == 0 {
		return records
	}
	out := make([]models.TrialRecord, len(records))
	for i, r := range records {
		r.Trial += offset
		out[i] = r
	}
	return out
}
