// Package metrics scores N-back trial data: accuracy, reaction times and
// signal-detection statistics (d', A', criterion) with log-linear correction.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

var (
	// ErrInsufficientData means there were no scoreable trials. Callers must
	// hold the current difficulty level rather than act on a zero score.
	ErrInsufficientData = errors.New("metrics: no scoreable trials")

	// ErrMalformedTrial means a trial record is missing required fields.
	// Scoring for the block is aborted; the run continues.
	ErrMalformedTrial = errors.New("metrics: malformed trial record")
)

// SDT holds signal-detection counts and derived statistics for a block.
// HitRate and FARate carry the log-linear (Hautus) correction, so DPrime and
// Criterion stay finite even for perfect performance.
type SDT struct {
	Hits              int
	Misses            int
	FalseAlarms       int
	CorrectRejections int
	HitRate           float64
	FARate            float64
	DPrime            float64
	Criterion         float64
}

// ValidateTrials checks that every record carries the fields scoring needs.
func ValidateTrials(trials []models.TrialRecord) error {
	for i, t := range trials {
		if t.Trial <= 0 {
			return fmt.Errorf("%w: trial at index %d has no trial number", ErrMalformedTrial, i)
		}
		switch t.Response {
		case models.ResponseMatch, models.ResponseNonMatch, models.ResponseLapse:
		default:
			return fmt.Errorf("%w: trial %d has response %q", ErrMalformedTrial, t.Trial, t.Response)
		}
		if t.Response == models.ResponseLapse && t.ReactionTime != nil {
			return fmt.Errorf("%w: trial %d is a lapse but has a reaction time", ErrMalformedTrial, t.Trial)
		}
	}
	return nil
}

// AccuracyAndMeanRT returns accuracy in percent and the mean reaction time.
// Lapses count as incorrect for accuracy but are excluded from the RT mean.
func AccuracyAndMeanRT(trials []models.TrialRecord) (accuracy, meanRT float64, err error) {
	if len(trials) == 0 {
		return 0, 0, ErrInsufficientData
	}

	correct := 0
	var rtSum float64
	rtCount := 0
	for _, t := range trials {
		if t.Correct {
			correct++
		}
		if t.ReactionTime != nil {
			rtSum += *t.ReactionTime
			rtCount++
		}
	}

	accuracy = float64(correct) / float64(len(trials)) * 100
	if rtCount > 0 {
		meanRT = rtSum / float64(rtCount)
	}
	return accuracy, meanRT, nil
}

// CountResponses returns the correct/incorrect/lapse triple for a block.
func CountResponses(trials []models.TrialRecord) (correct, incorrect, lapses int) {
	for _, t := range trials {
		switch {
		case t.Correct:
			correct++
		case t.Response == models.ResponseLapse:
			lapses++
		default:
			incorrect++
		}
	}
	return correct, incorrect, lapses
}

// sdtCounts partitions trials into the four signal-detection outcomes. A
// lapse on a target trial is a miss; a lapse on a non-target trial counts as
// a correct rejection (the participant never claimed a match).
func sdtCounts(trials []models.TrialRecord) (hits, misses, falseAlarms, correctRejections int) {
	for _, t := range trials {
		saidMatch := t.Response == models.ResponseMatch
		switch {
		case t.IsTarget && saidMatch:
			hits++
		case t.IsTarget && !saidMatch:
			misses++
		case !t.IsTarget && saidMatch:
			falseAlarms++
		default:
			correctRejections++
		}
	}
	return hits, misses, falseAlarms, correctRejections
}

// CalculateSDT computes the full set of signal-detection statistics for a
// block, with d' and criterion derived from log-linear corrected rates.
func CalculateSDT(trials []models.TrialRecord) (SDT, error) {
	var s SDT
	if len(trials) == 0 {
		return s, ErrInsufficientData
	}

	s.Hits, s.Misses, s.FalseAlarms, s.CorrectRejections = sdtCounts(trials)

	targets := s.Hits + s.Misses
	nonTargets := s.FalseAlarms + s.CorrectRejections
	if targets == 0 || nonTargets == 0 {
		return s, fmt.Errorf("%w: need both target and non-target trials", ErrInsufficientData)
	}

	s.HitRate, s.FARate = correctedRates(s.Hits, targets, s.FalseAlarms, nonTargets)
	s.DPrime = zScore(s.HitRate) - zScore(s.FARate)
	s.Criterion = -0.5 * (zScore(s.HitRate) + zScore(s.FARate))
	return s, nil
}

// DPrime computes d' from raw counts with log-linear correction applied.
func DPrime(hits, misses, falseAlarms, correctRejections int) float64 {
	hr, fr := correctedRates(hits, hits+misses, falseAlarms, falseAlarms+correctRejections)
	return zScore(hr) - zScore(fr)
}

// CriterionC computes the response bias c from raw counts, using the same
// corrected rates as DPrime.
func CriterionC(hits, misses, falseAlarms, correctRejections int) float64 {
	hr, fr := correctedRates(hits, hits+misses, falseAlarms, falseAlarms+correctRejections)
	return -0.5 * (zScore(hr) + zScore(fr))
}

// APrime computes the nonparametric sensitivity index A', bounded in [0, 1].
// Raw rates are clipped to [0.0001, 0.9999] before branching on whether the
// hit rate exceeds the false-alarm rate.
func APrime(trials []models.TrialRecord) (float64, error) {
	if len(trials) == 0 {
		return 0, ErrInsufficientData
	}

	hits, misses, falseAlarms, correctRejections := sdtCounts(trials)
	targets := hits + misses
	nonTargets := falseAlarms + correctRejections
	if targets == 0 || nonTargets == 0 {
		return 0, fmt.Errorf("%w: need both target and non-target trials", ErrInsufficientData)
	}

	hitRate := clip(float64(hits)/float64(targets), 0.0001, 0.9999)
	faRate := clip(float64(falseAlarms)/float64(nonTargets), 0.0001, 0.9999)

	if hitRate >= faRate {
		return 0.5 + ((hitRate-faRate)*(1+hitRate-faRate))/(4*hitRate*(1-faRate)), nil
	}
	return 0.5 - ((faRate-hitRate)*(1+faRate-hitRate))/(4*faRate*(1-hitRate)), nil
}

// correctedRates applies the log-linear correction: +0.5 to each count and +1
// to each denominator.
func correctedRates(hits, targets, falseAlarms, nonTargets int) (hitRate, faRate float64) {
	hitRate = (float64(hits) + 0.5) / (float64(targets) + 1)
	faRate = (float64(falseAlarms) + 0.5) / (float64(nonTargets) + 1)
	return hitRate, faRate
}

// zScore is the standard normal inverse CDF.
func zScore(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
