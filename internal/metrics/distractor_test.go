package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

func TestPrePostDistractor(t *testing.T) {
	// Trials 1-4 correct, trial 5 flagged, trials 6-8 incorrect. The pre
	// window is 2-4, the post window 6-8; the flagged trial is in neither.
	trials := make([]models.TrialRecord, 8)
	for i := range trials {
		correct := i < 4
		resp := models.ResponseMatch
		target := true
		if i%2 == 1 {
			target = false
			resp = models.ResponseNonMatch
		}
		if !correct {
			if resp == models.ResponseMatch {
				resp = models.ResponseNonMatch
			} else {
				resp = models.ResponseMatch
			}
		}
		trials[i] = models.TrialRecord{
			Trial:        i + 1,
			Stimulus:     "s",
			IsTarget:     target,
			Response:     resp,
			Correct:      correct,
			ReactionTime: rt(0.5),
		}
	}
	trials[4].AfterDistractor = true

	summary := PrePostDistractor(trials)
	require.True(t, summary.Applicable)
	require.NotNil(t, summary.Pre)
	require.NotNil(t, summary.Post)

	assert.Equal(t, 3, summary.Pre.Trials)
	assert.Equal(t, 3, summary.Post.Trials)
	assert.Equal(t, 100.0, summary.Pre.Accuracy)
	assert.Equal(t, 0.0, summary.Post.Accuracy)
	assert.Equal(t, -100.0, summary.AccuracyDelta)
}

func TestPrePostDistractorWindowsClampToBlock(t *testing.T) {
	// Distractor on the second trial: only one pre trial exists.
	trials := []models.TrialRecord{
		{Trial: 1, IsTarget: true, Response: models.ResponseMatch, Correct: true, ReactionTime: rt(0.4)},
		{Trial: 2, IsTarget: false, Response: models.ResponseNonMatch, Correct: true, ReactionTime: rt(0.4), AfterDistractor: true},
		{Trial: 3, IsTarget: true, Response: models.ResponseMatch, Correct: true, ReactionTime: rt(0.4)},
		{Trial: 4, IsTarget: false, Response: models.ResponseNonMatch, Correct: true, ReactionTime: rt(0.4)},
	}

	summary := PrePostDistractor(trials)
	require.True(t, summary.Applicable)
	require.NotNil(t, summary.Pre)
	assert.Equal(t, 1, summary.Pre.Trials)
	assert.Equal(t, 2, summary.Post.Trials)
}

func TestPrePostDistractorNotApplicable(t *testing.T) {
	summary := PrePostDistractor(perfectTrials(3, 3))
	assert.False(t, summary.Applicable)
	assert.Nil(t, summary.Pre)
	assert.Nil(t, summary.Post)
}
