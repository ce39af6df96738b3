package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/adaptive"
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/schedule"
)

// Config is the top-level run configuration. It is constructed once at load
// time, validated, and passed by value into component constructors.
type Config struct {
	Study      StudyConfig     `mapstructure:"study"`
	Sequential TaskConfig      `mapstructure:"sequential"`
	Spatial    TaskConfig      `mapstructure:"spatial"`
	Dual       TaskConfig      `mapstructure:"dual"`
	Practice   PracticeConfig  `mapstructure:"practice"`
	Induction  InductionConfig `mapstructure:"induction"`
	Schedule   ScheduleConfig  `mapstructure:"schedule"`
	Logging    LoggingConfig   `mapstructure:"logging"`
}

// StudyConfig holds run metadata.
type StudyConfig struct {
	Name         string `mapstructure:"name"`
	MeasuresFile string `mapstructure:"measures_file"`
	Seed         int64  `mapstructure:"seed"` // 0 means unseeded
}

// TaskConfig holds per-task presentation settings.
type TaskConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Blocks           int     `mapstructure:"blocks"`
	TrialsPerBlock   int     `mapstructure:"trials_per_block"`
	TargetDuration   float64 `mapstructure:"target_duration"` // seconds per adaptive block
	DisplayDuration  float64 `mapstructure:"display_duration"`
	ISI              float64 `mapstructure:"isi"`
	TargetRate       float64 `mapstructure:"target_rate"`
	MaxTargetRepeats int     `mapstructure:"max_target_repeats"`
	TimeCompression  bool    `mapstructure:"time_compression"`
	Distractors      bool    `mapstructure:"distractors"`
}

// PracticeConfig holds the calibration thresholds.
type PracticeConfig struct {
	PromoteThreshold    float64 `mapstructure:"promote_threshold"`
	DemoteHighThreshold float64 `mapstructure:"demote_high_threshold"`
	BaseProficiency     float64 `mapstructure:"base_proficiency"`
	GateBlocks          int     `mapstructure:"gate_blocks"`
	StabilityThreshold  float64 `mapstructure:"stability_threshold"`
	StabilityWindow     int     `mapstructure:"stability_window"`
	StableBlocksNeeded  int     `mapstructure:"stable_blocks_needed"`
	LevelWindow         int     `mapstructure:"level_window"`
	MaxBlocks           int     `mapstructure:"max_blocks"`
	MinLevel            int     `mapstructure:"min_level"`
	MaxLevel            int     `mapstructure:"max_level"`
	Trials              int     `mapstructure:"trials"`
	StartLevel          int     `mapstructure:"start_level"`
}

// InductionConfig holds the sub-block adjustment thresholds.
type InductionConfig struct {
	PromoteThreshold   float64 `mapstructure:"promote_threshold"`
	DemoteThreshold    float64 `mapstructure:"demote_threshold"`
	MinLevel           int     `mapstructure:"min_level"`
	MaxLevel           int     `mapstructure:"max_level"`
	SubBlocks          int     `mapstructure:"sub_blocks"`
	MaxChangesPerBlock int     `mapstructure:"max_changes_per_block"`
}

// ScheduleConfig holds block ordering and event placement.
type ScheduleConfig struct {
	Counterbalance   bool     `mapstructure:"counterbalance"`
	CustomOrder      []string `mapstructure:"custom_block_order"`
	BreaksSchedule   []int    `mapstructure:"breaks_schedule"`
	MeasuresSchedule []int    `mapstructure:"measures_schedule"`
	BreakDuration    int      `mapstructure:"break_duration"` // seconds
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// setDefaults sets the documented default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("study.name", "WAND")
	v.SetDefault("study.measures_file", "config/measures.yaml")
	v.SetDefault("study.seed", 0)

	// Sequential anchor task
	v.SetDefault("sequential.enabled", true)
	v.SetDefault("sequential.blocks", 5)
	v.SetDefault("sequential.trials_per_block", 164)
	v.SetDefault("sequential.display_duration", 0.8)
	v.SetDefault("sequential.isi", 1.0)
	v.SetDefault("sequential.target_rate", 0.5)
	v.SetDefault("sequential.max_target_repeats", 3)
	v.SetDefault("sequential.time_compression", false)
	v.SetDefault("sequential.distractors", true)

	// Spatial
	v.SetDefault("spatial.enabled", true)
	v.SetDefault("spatial.blocks", 4)
	v.SetDefault("spatial.target_duration", 270)
	v.SetDefault("spatial.display_duration", 1.0)
	v.SetDefault("spatial.isi", 1.0)
	v.SetDefault("spatial.target_rate", 0.5)
	v.SetDefault("spatial.max_target_repeats", 3)
	v.SetDefault("spatial.time_compression", true)
	v.SetDefault("spatial.distractors", false)

	// Dual
	v.SetDefault("dual.enabled", true)
	v.SetDefault("dual.blocks", 4)
	v.SetDefault("dual.target_duration", 270)
	v.SetDefault("dual.display_duration", 1.0)
	v.SetDefault("dual.isi", 1.2)
	v.SetDefault("dual.target_rate", 0.5)
	v.SetDefault("dual.max_target_repeats", 3)
	v.SetDefault("dual.time_compression", true)
	v.SetDefault("dual.distractors", false)

	// Practice / calibration
	v.SetDefault("practice.promote_threshold", 82)
	v.SetDefault("practice.demote_high_threshold", 70)
	v.SetDefault("practice.base_proficiency", 65)
	v.SetDefault("practice.gate_blocks", 1)
	v.SetDefault("practice.stability_threshold", 7)
	v.SetDefault("practice.stability_window", 5)
	v.SetDefault("practice.stable_blocks_needed", 3)
	v.SetDefault("practice.level_window", 2)
	v.SetDefault("practice.max_blocks", 12)
	v.SetDefault("practice.min_level", 2)
	v.SetDefault("practice.max_level", 3)
	v.SetDefault("practice.trials", 90)
	v.SetDefault("practice.start_level", 2)

	// Induction
	v.SetDefault("induction.promote_threshold", 82)
	v.SetDefault("induction.demote_threshold", 65)
	v.SetDefault("induction.min_level", 2)
	v.SetDefault("induction.max_level", 4)
	v.SetDefault("induction.sub_blocks", 3)
	v.SetDefault("induction.max_changes_per_block", 3)

	// Schedule
	v.SetDefault("schedule.counterbalance", false)
	v.SetDefault("schedule.breaks_schedule", []int{2, 4})
	v.SetDefault("schedule.measures_schedule", []int{2, 3, 4, 5})
	v.SetDefault("schedule.break_duration", 20)

	// Logging
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs
}

// Load reads the configuration with Viper: defaults, then an optional
// config.yaml under <projectRoot>/config, then WAND_* environment variables.
// Unknown keys are ignored; missing keys take defaults. The returned value
// is validated and stays fixed for the rest of the run; a file change after
// load is logged but never applied mid-session.
func Load(projectRoot string, log *zap.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("WAND") // e.g., WAND_PRACTICE_MAX_BLOCKS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars are used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Session parameters stay fixed once a run has started; a changed file
	// is only reported so the operator can restart deliberately.
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Warn("Configuration file changed; restart to apply", zap.String("file", e.Name))
	})

	log.Info("Configuration loaded successfully")
	return &cfg, nil
}

// Validate checks threshold ordering and level bounds once at load time.
func (c *Config) Validate() error {
	if c.Practice.DemoteHighThreshold >= c.Practice.PromoteThreshold {
		return fmt.Errorf("config: practice demote_high_threshold (%.0f) must be below promote_threshold (%.0f)",
			c.Practice.DemoteHighThreshold, c.Practice.PromoteThreshold)
	}
	if c.Induction.DemoteThreshold >= c.Induction.PromoteThreshold {
		return fmt.Errorf("config: induction demote_threshold (%.0f) must be below promote_threshold (%.0f)",
			c.Induction.DemoteThreshold, c.Induction.PromoteThreshold)
	}
	if c.Practice.MinLevel > c.Practice.MaxLevel {
		return fmt.Errorf("config: practice min_level %d above max_level %d", c.Practice.MinLevel, c.Practice.MaxLevel)
	}
	if c.Induction.MinLevel > c.Induction.MaxLevel {
		return fmt.Errorf("config: induction min_level %d above max_level %d", c.Induction.MinLevel, c.Induction.MaxLevel)
	}
	if c.Practice.StabilityWindow < c.Practice.StableBlocksNeeded {
		return fmt.Errorf("config: stability_window %d smaller than stable_blocks_needed %d",
			c.Practice.StabilityWindow, c.Practice.StableBlocksNeeded)
	}
	if c.Induction.SubBlocks < 1 {
		return fmt.Errorf("config: induction sub_blocks must be at least 1")
	}
	return nil
}

// ScheduleSpec assembles the builder input from the loaded configuration.
func (c *Config) ScheduleSpec(startLevel int) schedule.Config {
	return schedule.Config{
		Sequential:       taskPlan(c.Sequential),
		Spatial:          taskPlan(c.Spatial),
		Dual:             taskPlan(c.Dual),
		StartLevel:       startLevel,
		PracticeTrials:   c.Practice.Trials,
		Counterbalance:   c.Schedule.Counterbalance,
		CustomOrder:      c.Schedule.CustomOrder,
		BreaksSchedule:   c.Schedule.BreaksSchedule,
		MeasuresSchedule: c.Schedule.MeasuresSchedule,
		BreakDuration:    time.Duration(c.Schedule.BreakDuration) * time.Second,
	}
}

// PlateauSpec assembles the plateau detector configuration.
func (c *Config) PlateauSpec() adaptive.PlateauConfig {
	return adaptive.PlateauConfig{
		PromoteThreshold:   c.Practice.PromoteThreshold,
		DemoteThreshold:    c.Practice.DemoteHighThreshold,
		BaseProficiency:    c.Practice.BaseProficiency,
		GateBlocks:         c.Practice.GateBlocks,
		StabilityThreshold: c.Practice.StabilityThreshold,
		StabilityWindow:    c.Practice.StabilityWindow,
		StableBlocksNeeded: c.Practice.StableBlocksNeeded,
		LevelWindow:        c.Practice.LevelWindow,
		MaxBlocks:          c.Practice.MaxBlocks,
		MinLevel:           c.Practice.MinLevel,
		MaxLevel:           c.Practice.MaxLevel,
	}
}

// ControllerSpec assembles the induction controller configuration.
func (c *Config) ControllerSpec() adaptive.ControllerConfig {
	return adaptive.ControllerConfig{
		PromoteThreshold:   c.Induction.PromoteThreshold,
		DemoteThreshold:    c.Induction.DemoteThreshold,
		MinLevel:           c.Induction.MinLevel,
		MaxLevel:           c.Induction.MaxLevel,
		SubBlocks:          c.Induction.SubBlocks,
		MaxChangesPerBlock: c.Induction.MaxChangesPerBlock,
	}
}

func taskPlan(t TaskConfig) schedule.TaskPlan {
	return schedule.TaskPlan{
		Enabled:          t.Enabled,
		Blocks:           t.Blocks,
		TrialsPerBlock:   t.TrialsPerBlock,
		TargetDuration:   t.TargetDuration,
		DisplayDuration:  t.DisplayDuration,
		ISI:              t.ISI,
		TargetRate:       t.TargetRate,
		MaxTargetRepeats: t.MaxTargetRepeats,
		TimeCompression:  t.TimeCompression,
		Distractors:      t.Distractors,
	}
}
