package metrics

import (
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

// distractorWindow is the number of trials on each side of a distractor used
// for the pre/post comparison.
const distractorWindow = 3

// PrePostDistractor compares accuracy, reaction time and A' in the trials
// immediately before and after each distractor-flagged trial. The flagged
// trial itself belongs to neither window. Blocks without distractors return
// Applicable=false rather than zeroed windows.
func PrePostDistractor(trials []models.TrialRecord) models.DistractorSummary {
	total := len(trials)
	preIdx := make(map[int]bool)
	postIdx := make(map[int]bool)

	found := false
	for _, t := range trials {
		if !t.AfterDistractor {
			continue
		}
		found = true
		for j := t.Trial - distractorWindow; j < t.Trial; j++ {
			if j >= 1 && j <= total {
				preIdx[j] = true
			}
		}
		for j := t.Trial + 1; j <= t.Trial+distractorWindow; j++ {
			if j >= 1 && j <= total {
				postIdx[j] = true
			}
		}
	}

	if !found {
		return models.DistractorSummary{Applicable: false}
	}

	pre := windowSummary(filterByTrial(trials, preIdx))
	post := windowSummary(filterByTrial(trials, postIdx))

	summary := models.DistractorSummary{
		Applicable: true,
		Pre:        pre,
		Post:       post,
	}
	if pre != nil && post != nil {
		summary.AccuracyDelta = post.Accuracy - pre.Accuracy
	}
	return summary
}

func filterByTrial(trials []models.TrialRecord, keep map[int]bool) []models.TrialRecord {
	var out []models.TrialRecord
	for _, t := range trials {
		if keep[t.Trial] {
			out = append(out, t)
		}
	}
	return out
}

// windowSummary scores a subset of trials; nil if the window is empty.
func windowSummary(trials []models.TrialRecord) *models.WindowSummary {
	acc, rt, err := AccuracyAndMeanRT(trials)
	if err != nil {
		return nil
	}
	w := &models.WindowSummary{
		Trials:          len(trials),
		Accuracy:        acc,
		AvgReactionTime: rt,
	}
	// A' needs both trial classes in the window; leave zero if it cannot be
	// computed for this subset.
	if ap, err := APrime(trials); err == nil {
		w.APrime = ap
	}
	return w
}
