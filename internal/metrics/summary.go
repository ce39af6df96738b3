package metrics

import (
	"errors"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

// Summarize computes the full BlockSummary for one task block. Two calls with
// the same trial sequence produce identical summaries.
//
// A malformed trial aborts scoring and returns an Incomplete summary together
// with the wrapped ErrMalformedTrial; an empty trial stream returns
// ErrInsufficientData. Single-class blocks (all targets or all non-targets)
// are scored for accuracy and RT, with the signal-detection fields left zero.
func Summarize(blockNumber int, task models.TaskType, level int, trials []models.TrialRecord) (models.BlockSummary, error) {
	summary := models.BlockSummary{
		BlockNumber: blockNumber,
		Task:        task,
		Level:       level,
	}

	if err := ValidateTrials(trials); err != nil {
		summary.Incomplete = true
		return summary, err
	}

	accuracy, meanRT, err := AccuracyAndMeanRT(trials)
	if err != nil {
		summary.Incomplete = true
		return summary, err
	}
	summary.Accuracy = accuracy
	summary.AvgReactionTime = meanRT
	summary.Correct, summary.Incorrect, summary.Lapses = CountResponses(trials)

	sdt, err := CalculateSDT(trials)
	if err != nil && !errors.Is(err, ErrInsufficientData) {
		summary.Incomplete = true
		return summary, err
	}
	summary.Hits = sdt.Hits
	summary.Misses = sdt.Misses
	summary.FalseAlarms = sdt.FalseAlarms
	summary.CorrectRejections = sdt.CorrectRejections
	summary.HitRate = sdt.HitRate
	summary.FARate = sdt.FARate
	summary.DPrime = sdt.DPrime
	summary.Criterion = sdt.Criterion

	if ap, err := APrime(trials); err == nil {
		summary.APrime = ap
	}

	if d := PrePostDistractor(trials); d.Applicable {
		summary.Distractor = &d
	}

	return summary, nil
}
