package main

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/schedule"
)

// simPresenter is a synthetic participant for dry runs. Response accuracy
// degrades with N-back level so the adaptive loops have something to track.
type simPresenter struct {
	rng *rand.Rand
	log *zap.Logger
}

func newSimPresenter(seed int64, log *zap.Logger) *simPresenter {
	return &simPresenter{rng: rand.New(rand.NewSource(seed)), log: log}
}

func (p *simPresenter) Transition(ctx context.Context, block models.BlockDescriptor) error {
	p.log.Info("Transition", zap.String("label", block.Label))
	return nil
}

func (p *simPresenter) Break(ctx context.Context, block models.BlockDescriptor, seconds float64) error {
	p.log.Info("Simulated break", zap.Float64("seconds", seconds))
	return nil
}

func (p *simPresenter) CollectMeasures(ctx context.Context, block models.BlockDescriptor, items []models.MeasureItem) ([]models.MeasureResponse, error) {
	responses := make([]models.MeasureResponse, 0, len(items))
	for _, item := range items {
		span := item.Max - item.Min
		if span <= 0 {
			span = 1
		}
		responses = append(responses, models.MeasureResponse{
			ItemID: item.ID,
			Value:  float64(item.Min + p.rng.Intn(span+1)),
		})
	}
	return responses, nil
}

func (p *simPresenter) PresentBlock(ctx context.Context, req schedule.PresentRequest) ([]models.TrialRecord, error) {
	n := req.Trials
	if n <= 0 {
		n = 20
	}

	// Correct-response probability drops with level.
	pCorrect := 0.92 - 0.12*float64(req.Level-2)
	if pCorrect < 0.3 {
		pCorrect = 0.3
	}

	trials := make([]models.TrialRecord, 0, n)
	for i := 1; i <= n; i++ {
		isTarget := p.rng.Float64() < 0.5
		correct := p.rng.Float64() < pCorrect
		lapse := p.rng.Float64() < 0.03

		var response models.Response
		var rt *float64
		switch {
		case lapse:
			response = models.ResponseLapse
			correct = false
		case isTarget == correct:
			response = models.ResponseMatch
		default:
			response = models.ResponseNonMatch
		}
		if !lapse {
			v := 0.4 + p.rng.Float64()*0.4
			rt = &v
		}

		trials = append(trials, models.TrialRecord{
			Trial:           i,
			Stimulus:        fmt.Sprintf("stim-%02d", p.rng.Intn(12)+1),
			IsTarget:        isTarget,
			Response:        response,
			Correct:         correct,
			ReactionTime:    rt,
			AfterDistractor: req.Block.Task == models.Sequential && i%30 == 15,
		})
	}
	return trials, nil
}
