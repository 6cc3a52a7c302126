package quake_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quakecraft.ai/internal/sim/quake"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
	"quakecraft.ai/internal/sim/worldtest"
)

func normalized(mut func(*tuning.Config)) tuning.Config {
	cfg := tuning.Defaults()
	if mut != nil {
		mut(&cfg)
	}
	cfg.Normalize()
	return cfg
}

func isCarvable(b voxel.BlockType) bool { return quake.IsCarvable(b) }

func TestIsCarvable(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	for code, want := range map[string]bool{
		"rock-granite":          true,
		"gravel-basalt":         true,
		"ore-gold-granite":      true,
		"soil-medium-normal":    true,
		"sand-limestone":        true,
		"water-still-7":         true,
		"log-grown-oak-ud":      false,
		"leaves-grown-oak":      false,
		"glass-plain":           false,
		"snowblock":             false,
		"tallgrass-medium-free": false,
	} {
		b, ok := h.Cats.BlockByCode(code)
		require.True(t, ok, code)
		assert.Equal(t, want, quake.IsCarvable(b), code)
	}
	assert.False(t, quake.IsCarvable(voxel.BlockType{}))
}

func TestWindowDepthClamp(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	cfg := normalized(nil)
	c := h.Center(0, 0)

	strong := quake.FaultPlan{Center: c, Depth: quake.Depth(9), Magnitude: 9}
	bottom, top := strong.Window(h.Grid, cfg)
	assert.Equal(t, 111, top)
	assert.Equal(t, 41, bottom)

	weak := quake.FaultPlan{Center: c, Depth: quake.Depth(3), Magnitude: 3}
	bottom, _ = weak.Window(h.Grid, cfg)
	assert.Equal(t, 80, bottom, "sea level 100 minus offset 20")

	deep := quake.FaultPlan{Center: voxel.Vec3i{Y: 4}, Depth: 60, Magnitude: 9}
	bottom, top = deep.Window(h.Grid, cfg)
	assert.Equal(t, 14, top)
	assert.Equal(t, 2, bottom)
}

func TestCarveStepSweepsOutward(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	cfg := normalized(nil)
	c := h.Center(0, 0)
	plan := quake.FaultPlan{Center: c, Angle: 0, Radius: 40, Depth: 60, Width: 1, Jitter: 0, Magnitude: 9}
	bottom, top := plan.Window(h.Grid, cfg)
	n := 10

	for step := 0; step < n-1; step++ {
		quake.CarveStep(h.Grid, h.Rand, cfg, plan, step, n)
	}
	assert.Equal(t, "soil-medium-normal", h.Code(voxel.Vec3i{X: 39, Y: 100, Z: 0}), "edge untouched before last step")

	quake.CarveStep(h.Grid, h.Rand, cfg, plan, n-1, n)
	for d := 0; d < 40; d++ {
		left := h.Count(voxel.Vec3i{X: d, Y: bottom, Z: 0}, voxel.Vec3i{X: d, Y: top, Z: 0}, isCarvable)
		require.Zero(t, left, "column %d still has carvable blocks", d)
	}
	assert.Equal(t, "soil-medium-normal", h.Code(voxel.Vec3i{X: 41, Y: 100, Z: 0}))
	assert.Equal(t, "rock-granite", h.Code(voxel.Vec3i{X: 10, Y: bottom - 1, Z: 0}), "nothing below the window")
	assert.Equal(t, "air", h.Code(voxel.Vec3i{X: 10, Y: 100, Z: 1}), "disk of width 1")
	assert.Equal(t, "soil-medium-normal", h.Code(voxel.Vec3i{X: 10, Y: 100, Z: 2}))
}

func TestHintCutIsShallow(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	c := voxel.Vec3i{X: 0, Y: 100, Z: 0}

	carved := quake.HintCut(h.Grid, h.Rand, c, 9)
	assert.Greater(t, carved, 0)
	assert.Equal(t, "air", h.Code(c))
	assert.Equal(t, "rock-granite", h.Code(c.Add(0, -2, 0)), "fissures are at most 2 deep")

	far := h.Count(voxel.Vec3i{X: -40, Y: 99, Z: -40}, voxel.Vec3i{X: 40, Y: 100, Z: 40}, func(b voxel.BlockType) bool { return b.IsAir() })
	assert.Equal(t, carved, far, "every removed cell lies in the top two layers")
}

func TestCleanupFloaters(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	rules := quake.CompileRules(normalized(nil))
	c := h.Center(0, 0)

	h.SetBlock(voxel.Vec3i{X: 1, Y: 110, Z: 1}, "rock-granite")
	h.SetBlock(voxel.Vec3i{X: 2, Y: 110, Z: 1}, "leaves-grown-birch")
	h.SetBlock(voxel.Vec3i{X: 3, Y: 110, Z: 1}, "glass-plain")
	h.SetBlock(voxel.Vec3i{X: 4, Y: 110, Z: 1}, "planks-oak-ud")
	h.SetBlock(voxel.Vec3i{X: 5, Y: 101, Z: 1}, "tallgrass-medium-free")
	h.SetBlock(voxel.Vec3i{X: 50, Y: 110, Z: 1}, "rock-granite")

	removed := quake.CleanupFloaters(h.Grid, rules, c, 10)
	assert.Equal(t, 2, removed)
	assert.Equal(t, "air", h.Code(voxel.Vec3i{X: 1, Y: 110, Z: 1}))
	assert.Equal(t, "air", h.Code(voxel.Vec3i{X: 2, Y: 110, Z: 1}))
	assert.Equal(t, "glass-plain", h.Code(voxel.Vec3i{X: 3, Y: 110, Z: 1}))
	assert.Equal(t, "planks-oak-ud", h.Code(voxel.Vec3i{X: 4, Y: 110, Z: 1}), "wood material without a listed name fragment stays")
	assert.Equal(t, "tallgrass-medium-free", h.Code(voxel.Vec3i{X: 5, Y: 101, Z: 1}), "supported")
	assert.Equal(t, "rock-granite", h.Code(voxel.Vec3i{X: 50, Y: 110, Z: 1}), "outside radius")
}

func TestFloaterRulesAreConfigurable(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	rules := quake.CompileRules(normalized(func(c *tuning.Config) {
		c.Floaters.SolidMaterials = nil
		c.Floaters.VegetationNames = []string{"planks"}
	}))
	h.SetBlock(voxel.Vec3i{X: 1, Y: 110, Z: 1}, "rock-granite")
	h.SetBlock(voxel.Vec3i{X: 2, Y: 110, Z: 1}, "planks-oak-ud")

	assert.Equal(t, 1, quake.CleanupFloaters(h.Grid, rules, h.Center(0, 0), 5))
	assert.Equal(t, "rock-granite", h.Code(voxel.Vec3i{X: 1, Y: 110, Z: 1}))
}

func TestGravelHalo(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	placed := quake.GravelHalo(h.Grid, h.Cats, h, h.Rand, h.Center(0, 0), 30)
	assert.Equal(t, 30, placed, "every try lands on open ground")
	require.Len(t, h.Spawns, 30)
	assert.Equal(t, "gravel-granite", h.Spawns[0].Item.Code)

	gravel := h.Count(voxel.Vec3i{X: -31, Y: 101, Z: -31}, voxel.Vec3i{X: 31, Y: 120, Z: 31}, func(b voxel.BlockType) bool {
		return b.Code == "gravel-granite"
	})
	assert.Equal(t, 30, gravel)
	inner := h.Count(voxel.Vec3i{X: -5, Y: 101, Z: -5}, voxel.Vec3i{X: 5, Y: 120, Z: 5}, func(b voxel.BlockType) bool { return !b.IsAir() })
	assert.Zero(t, inner, "halo starts at max(6, r/3)")
}

type noBlocks struct{}

func (noBlocks) BlockByCode(string) (voxel.BlockType, bool) { return voxel.BlockType{}, false }

func TestGravelHaloWithoutGravelIsNoop(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	assert.Zero(t, quake.GravelHalo(h.Grid, noBlocks{}, h, h.Rand, h.Center(0, 0), 30))
	assert.Empty(t, h.Spawns)
}

func TestLowerShards(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	cfg := normalized(func(c *tuning.Config) {
		c.ShardPatchCount = 9
		c.ShardLowerMin, c.ShardLowerMax = 3, 3
		c.ShardPatchRadiusMin, c.ShardPatchRadiusMax = 6, 4
	})
	c := h.Center(0, 0)
	isSoil := func(b voxel.BlockType) bool { return b.Code == "soil-medium-normal" }
	before := h.Count(voxel.Vec3i{X: -60, Y: 100, Z: -60}, voxel.Vec3i{X: 60, Y: 100, Z: 60}, isSoil)

	moved := quake.LowerShards(h.Grid, h.Rand, cfg, c, 60, 9)
	assert.Greater(t, moved, 0)

	after := h.Count(voxel.Vec3i{X: -60, Y: 100, Z: -60}, voxel.Vec3i{X: 60, Y: 100, Z: 60}, isSoil)
	sunk := h.Count(voxel.Vec3i{X: -60, Y: 97, Z: -60}, voxel.Vec3i{X: 60, Y: 97, Z: 60}, isSoil)
	assert.Less(t, after, before)
	assert.Greater(t, sunk, 0, "lowered columns keep their soil cap 3 blocks down")
	assert.LessOrEqual(t, sunk, before-after, "overlapping patches sink a column twice")
	assert.Zero(t, h.Count(voxel.Vec3i{X: -60, Y: 101, Z: -60}, voxel.Vec3i{X: 60, Y: 140, Z: 60}, func(b voxel.BlockType) bool { return !b.IsAir() }))
}

func TestLowerShardsNeverBelowFloor(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{Surface: 4, SeaLevel: 4})
	cfg := normalized(func(c *tuning.Config) {
		c.ShardLowerMin, c.ShardLowerMax = 8, 8
	})
	quake.LowerShards(h.Grid, h.Rand, cfg, h.Center(0, 0), 40, 9)
	assert.Equal(t, "rock-granite", h.Code(voxel.Vec3i{X: 0, Y: 1, Z: 0}))
	assert.Equal(t, "rock-granite", h.Code(voxel.Vec3i{X: 0, Y: 0, Z: 0}))
}

func TestCollapseTrees(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	rules := quake.CompileRules(normalized(nil))
	c := h.Center(0, 0)

	trunk := voxel.Vec3i{X: 3, Y: 101, Z: 3}
	h.Fill(trunk, trunk.Add(0, 24, 0), "log-grown-oak-ud")
	h.Fill(trunk.Add(0, 25, 0), trunk.Add(0, 27, 0), "leaves-grown-oak")

	removed := quake.CollapseTrees(h.Grid, rules, c, 10)
	assert.Equal(t, 8, removed, "run from the search start (y=121) through the canopy")
	assert.Equal(t, "air", h.Code(voxel.Vec3i{X: 3, Y: 121, Z: 3}))
	assert.Equal(t, "air", h.Code(voxel.Vec3i{X: 3, Y: 128, Z: 3}))
	assert.Equal(t, "log-grown-oak-ud", h.Code(voxel.Vec3i{X: 3, Y: 120, Z: 3}))
	assert.Equal(t, "soil-medium-normal", h.Code(voxel.Vec3i{X: 0, Y: 100, Z: 0}), "bare ground is untouched")
}
