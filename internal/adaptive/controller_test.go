package adaptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

func TestControllerBand(t *testing.T) {
	c := NewController(DefaultControllerConfig(), 3, zap.NewNop())

	c.BeginBlock(models.Spatial)
	level, changed := c.ObserveSubBlock(models.Spatial, 90)
	assert.True(t, changed)
	assert.Equal(t, 4, level)

	// In-band accuracy holds the level.
	level, changed = c.ObserveSubBlock(models.Spatial, 75)
	assert.False(t, changed)
	assert.Equal(t, 4, level)

	level, changed = c.ObserveSubBlock(models.Spatial, 60)
	assert.True(t, changed)
	assert.Equal(t, 3, level)
}

func TestControllerBoundaryAccuracies(t *testing.T) {
	c := NewController(DefaultControllerConfig(), 3, zap.NewNop())
	c.BeginBlock(models.Dual)

	// Exactly at threshold: 82 promotes, 65 demotes.
	level, changed := c.ObserveSubBlock(models.Dual, 82)
	assert.True(t, changed)
	assert.Equal(t, 4, level)

	level, changed = c.ObserveSubBlock(models.Dual, 65)
	assert.True(t, changed)
	assert.Equal(t, 3, level)
}

func TestControllerLevelClamps(t *testing.T) {
	c := NewController(DefaultControllerConfig(), 4, zap.NewNop())
	c.BeginBlock(models.Spatial)

	level, changed := c.ObserveSubBlock(models.Spatial, 95)
	assert.False(t, changed, "already at the ceiling")
	assert.Equal(t, 4, level)

	c2 := NewController(DefaultControllerConfig(), 2, zap.NewNop())
	c2.BeginBlock(models.Spatial)
	level, changed = c2.ObserveSubBlock(models.Spatial, 40)
	assert.False(t, changed, "already at the floor")
	assert.Equal(t, 2, level)
}

func TestControllerChangeBudget(t *testing.T) {
	cfg := DefaultControllerConfig()
	cfg.MaxLevel = 8
	c := NewController(cfg, 2, zap.NewNop())
	c.BeginBlock(models.Spatial)

	for i := 0; i < cfg.MaxChangesPerBlock; i++ {
		_, changed := c.ObserveSubBlock(models.Spatial, 95)
		assert.True(t, changed)
	}

	// Budget exhausted: still evaluated, not applied.
	level, changed := c.ObserveSubBlock(models.Spatial, 95)
	assert.False(t, changed)
	assert.Equal(t, 2+cfg.MaxChangesPerBlock, level)

	// A new block restores the budget.
	c.BeginBlock(models.Spatial)
	level, changed = c.ObserveSubBlock(models.Spatial, 95)
	assert.True(t, changed)
	assert.Equal(t, 3+cfg.MaxChangesPerBlock, level)
}

func TestControllerSequentialAnchor(t *testing.T) {
	c := NewController(DefaultControllerConfig(), 3, zap.NewNop())
	c.BeginBlock(models.Sequential)

	level, changed := c.ObserveSubBlock(models.Sequential, 100)
	assert.False(t, changed)
	assert.Equal(t, 3, level)

	level, changed = c.ObserveSubBlock(models.Sequential, 0)
	assert.False(t, changed)
	assert.Equal(t, 3, level)
	assert.Equal(t, 3, c.Level(models.Sequential))
}

func TestControllerLevelsPersistAcrossBlocks(t *testing.T) {
	c := NewController(DefaultControllerConfig(), 2, zap.NewNop())

	c.BeginBlock(models.Spatial)
	c.ObserveSubBlock(models.Spatial, 90)
	c.ObserveSubBlock(models.Dual, 50)

	c.BeginBlock(models.Spatial)
	assert.Equal(t, 3, c.Level(models.Spatial))
	assert.Equal(t, 2, c.Level(models.Dual), "dual was already at the floor")
}

func TestControllerStartClamped(t *testing.T) {
	c := NewController(DefaultControllerConfig(), 9, zap.NewNop())
	assert.Equal(t, 4, c.Level(models.Spatial))
	// The sequential anchor keeps the calibrated value even out of range.
	assert.Equal(t, 9, c.Level(models.Sequential))
}
