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

// CalibrationResult is the practice phase's terminal output: a single
// calibrated level plus classification, handed to the induction phase.
type CalibrationResult struct {
	RunID          string                `json:"runId"`
	Level          int                   `json:"level"`
	Classification string                `json:"classification"` // "normal" or "high"
	Plateaued      bool                  `json:"plateaued"`      // false when the block budget ran out
	Blocks         []models.BlockSummary `json:"blocks"`
}

// RunCalibration presents Sequential practice blocks until the plateau
// detector terminates. Grace blocks are presented and summarised but the
// detector excludes them from scoring. A malformed block is marked
// incomplete and the level held; the session continues.
func RunCalibration(ctx context.Context, cfg Config, detector *adaptive.PlateauDetector, presenter Presenter, log *zap.Logger) (*CalibrationResult, error) {
	result := &CalibrationResult{RunID: uuid.NewString()}

	plan := cfg.Sequential
	timings := Timings{Display: plan.DisplayDuration, ISI: plan.ISI}

	// Unscoreable blocks never reach the detector and so never consume its
	// block budget; bound them separately so a broken presenter cannot loop
	// the practice phase forever.
	const maxConsecutiveUnscored = 3
	unscored := 0

	for blockNumber := 1; ; blockNumber++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		block := models.BlockDescriptor{
			Kind:  models.KindTask,
			Label: fmt.Sprintf("SEQ Practice %d", blockNumber),
			Task:  models.Sequential,
			Cycle: blockNumber,
			Level: detector.Level(),
		}
		grace := detector.InGrace()
		if grace {
			log.Info("Presenting grace block", zap.Int("block", blockNumber))
		}

		records, err := presenter.PresentBlock(ctx, PresentRequest{
			Block:     block,
			Level:     detector.Level(),
			SubBlocks: 1,
			Trials:    cfg.PracticeTrials,
			Timings:   timings,
		})
		if err != nil {
			return result, fmt.Errorf("present practice block %d: %w", blockNumber, err)
		}

		summary, err := metrics.Summarize(blockNumber, models.Sequential, detector.Level(), records)
		if err != nil {
			if errors.Is(err, metrics.ErrInsufficientData) || errors.Is(err, metrics.ErrMalformedTrial) {
				summary.Incomplete = true
				result.Blocks = append(result.Blocks, summary)
				log.Warn("Practice block could not be scored, holding level",
					zap.Int("block", blockNumber), zap.Error(err))
				unscored++
				if unscored >= maxConsecutiveUnscored {
					return result, fmt.Errorf("calibration: %d consecutive unscoreable blocks: %w", unscored, err)
				}
				continue
			}
			return result, err
		}
		unscored = 0
		result.Blocks = append(result.Blocks, summary)

		decision := detector.Observe(summary)
		if decision.Done {
			result.Level = decision.Level
			result.Classification = decision.Classification
			result.Plateaued = decision.Plateaued
			log.Info("Calibration finished",
				zap.Int("level", result.Level),
				zap.String("classification", result.Classification),
				zap.Bool("plateaued", result.Plateaued),
				zap.Int("blocks", blockNumber))
			return result, nil
		}
	}
}
