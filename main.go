package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/adaptive"
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/config"
	logger "github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/logging"
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/schedule"
)

// main runs a full simulated session: calibration to plateau, then the
// induction schedule, using a synthetic participant in place of the
// presentation collaborator.
func main() {
	log, err := logger.Init(logger.Options{})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	cfg, err := config.Load(".", log)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Reopen with the configured rotation settings.
	if cfgLog, err := logger.Init(logger.Options{
		Directory:  cfg.Logging.Directory,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		log.Warn("Could not apply configured log settings", zap.Error(err))
	} else {
		log = cfgLog
	}
	defer log.Sync()

	measures, err := models.LoadMeasures(cfg.Study.MeasuresFile)
	if err != nil {
		log.Warn("No subjective measures file, continuing without", zap.Error(err))
		measures = &models.MeasureSet{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	seed := cfg.Study.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	presenter := newSimPresenter(seed, log)

	// Practice phase: calibrate working-memory capacity.
	detector := adaptive.NewPlateauDetector(cfg.PlateauSpec(), cfg.Practice.StartLevel, log)
	calSpec := cfg.ScheduleSpec(cfg.Practice.StartLevel)
	calibration, err := schedule.RunCalibration(ctx, calSpec, detector, presenter, log)
	if err != nil {
		log.Fatal("Calibration failed", zap.Error(err))
	}
	log.Info("Calibrated capacity",
		zap.Int("level", calibration.Level),
		zap.String("classification", calibration.Classification))

	// Induction phase: build and execute the block schedule.
	spec := cfg.ScheduleSpec(calibration.Level)
	sched, err := schedule.Build(spec)
	if err != nil {
		log.Fatal("Schedule construction failed", zap.Error(err))
	}

	controller := adaptive.NewController(cfg.ControllerSpec(), calibration.Level, log)
	executor := schedule.NewExecutor(sched, spec, presenter, controller, measures.Items, log)
	executor.OnSummary(func(s models.BlockSummary) {
		log.Info("Summary row",
			zap.Int("block", s.BlockNumber),
			zap.String("task", string(s.Task)),
			zap.Int("level", s.Level),
			zap.Float64("accuracy", s.Accuracy),
			zap.Float64("avgRT", s.AvgReactionTime),
			zap.Float64("dPrime", s.DPrime),
			zap.Float64("aPrime", s.APrime),
			zap.Float64("criterion", s.Criterion),
			zap.Bool("incomplete", s.Incomplete))
	})

	result, err := executor.Run(ctx)
	if err != nil {
		log.Error("Run ended early", zap.Error(err), zap.Int("completedBlocks", len(result.Summaries)))
		return
	}
	log.Info("Run complete",
		zap.String("runId", result.RunID),
		zap.Int("blocks", len(result.Summaries)),
		zap.Any("finalLevels", result.FinalLevels))
}
