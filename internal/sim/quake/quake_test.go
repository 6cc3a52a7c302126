package quake_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/effects"
	"quakecraft.ai/internal/sim/loot"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/quake"
	"quakecraft.ai/internal/sim/scheduler"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
	"quakecraft.ai/internal/sim/worldtest"
)

// fastConfig runs a main shock in whole-second ticks without shard lowering so
// the flat test world stays cheap to scan.
func fastConfig() tuning.Config {
	return normalized(func(c *tuning.Config) {
		c.TickSeconds = 1
		c.ShardLoweringEnabled = false
	})
}

func newEnv(h *worldtest.Harness, cfg tuning.Config) *quake.Env {
	return &quake.Env{
		World:  h.Grid,
		Blocks: h.Cats,
		Loot: &loot.Emitter{
			World: h.Grid, Resolver: h.Cats, Spawner: h, Rand: h.Rand, Tables: loot.DefaultTables(),
		},
		Effects: &effects.Emitter{
			World: h.Grid, Particles: h, Sounds: h, Players: h, Rand: h.Rand,
			InteriorScanHeight: cfg.InteriorScanHeight,
		},
		Spawner: h,
		Notify:  h,
		Rand:    h.Rand,
		Cfg:     cfg,
		Rules:   quake.CompileRules(cfg),
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", quake.StateInit.String())
	assert.Equal(t, "carving", quake.StateCarving.String())
	assert.Equal(t, "complete", quake.StateComplete.String())
	assert.Equal(t, "unknown", quake.State(9).String())
}

func TestNewQuakeClampsMagnitude(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	env := newEnv(h, fastConfig())

	q := quake.NewQuake(env, h.Center(0, 0), 15, false)
	assert.Equal(t, 9, q.Magnitude())
	assert.Equal(t, 84, q.Radius())
	assert.Equal(t, 16, q.Steps())

	q = quake.NewQuake(env, h.Center(0, 0), -3, false)
	assert.Equal(t, 1, q.Magnitude())
}

func TestQuakeInitScattersAllLoot(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	cfg := fastConfig()
	q := quake.NewQuake(newEnv(h, cfg), h.Center(0, 0), 9, false)

	q.Init()
	assert.Equal(t, quake.StateCarving, q.State())
	assert.Len(t, q.Plans(), 5)
	r := q.Report()
	assert.Equal(t, cfg.GoodiesPerEventMin+8*9, r.LootAttempts)
	assert.Equal(t, r.LootSpawned, len(h.Spawns))
	assert.NotEmpty(t, h.SoundsOf(effects.SoundExterior))
	assert.Empty(t, h.Broadcasts)

	q.Init()
	assert.Equal(t, r.LootAttempts, q.Report().LootAttempts, "init runs once")
}

func TestQuakeWithoutBroadcastStaysQuiet(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	q := quake.NewQuake(newEnv(h, fastConfig()), h.Center(0, 0), 2, false)

	for !q.Advance() {
	}
	assert.Equal(t, quake.StateComplete, q.State())
	assert.Equal(t, q.Steps(), q.Step())
	assert.Empty(t, h.Broadcasts)
	assert.True(t, q.Advance(), "complete quakes stay complete")
	assert.Equal(t, q.Steps(), q.Step())
}

func TestForeshockSteps(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	cfg := fastConfig()
	f := quake.NewForeshock(newEnv(h, cfg), h.Center(0, 0), 0, true)
	assert.Equal(t, 1, f.Magnitude())
	assert.Equal(t, 12, f.Steps())

	n := 0
	for !f.Advance() {
		n++
	}
	assert.Equal(t, 11, n)
	assert.True(t, f.Done())
	assert.NotEmpty(t, h.Spawns)
	assert.LessOrEqual(t, len(h.Spawns), 12*(cfg.GoodiesPerEventMin/2))
	assert.NotEmpty(t, h.Particles)
	open := h.Count(voxel.Vec3i{X: -20, Y: 100, Z: -20}, voxel.Vec3i{X: 20, Y: 100, Z: 20}, func(b voxel.BlockType) bool { return b.IsAir() })
	assert.Greater(t, open, 0, "fissures cut into the surface layer")
}

// trenchOpen reports whether some column near the fault line at distance d has
// no fault-carvable block left in the window. Gravel dropped back by the halo
// pass does not count.
func trenchOpen(h *worldtest.Harness, cfg tuning.Config, p quake.FaultPlan, d int) bool {
	bottom, top := p.Window(h.Grid, cfg)
	solid := func(b voxel.BlockType) bool {
		return quake.IsCarvable(b) && b.Material != voxel.MaterialGravel
	}
	for k := -10; k <= 10; k++ {
		ox, oz := mathx.Polar(p.Angle+float64(k)*p.Jitter/20, d)
		x, z := p.Center.X+ox, p.Center.Z+oz
		if h.Count(voxel.Vec3i{X: x, Y: bottom, Z: z}, voxel.Vec3i{X: x, Y: top, Z: z}, solid) == 0 {
			return true
		}
	}
	return false
}

func TestForeshockThenMainShockEndToEnd(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	cfg := fastConfig()
	sched := scheduler.New(nil)
	launcher := quake.NewLauncher(newEnv(h, cfg), sched, nil)

	var main *quake.Quake
	var reports []quake.Report
	launcher.OnMainShock(func(q *quake.Quake) { main = q })
	launcher.OnComplete(func(r quake.Report) { reports = append(reports, r) })

	center := h.Center(0, 0)
	launcher.StartForeshock(center, 9, true)
	require.Equal(t, 1, launcher.InFlight())
	require.Len(t, h.SoundsOf(effects.SoundForeshock), 1)

	// 12 foreshock steps at 5s, then 16 main shock ticks at 1s.
	sched.Advance(59 * time.Second)
	assert.Nil(t, main)
	sched.Advance(time.Second)
	require.NotNil(t, main)
	assert.Equal(t, quake.StateCarving, main.State())

	sched.Advance(20 * time.Second)
	require.Len(t, reports, 1)
	assert.Zero(t, launcher.InFlight())
	assert.Zero(t, sched.Active())

	r := reports[0]
	assert.Equal(t, 9, r.Magnitude)
	assert.Equal(t, 16, r.Steps)
	assert.Equal(t, 5, r.Faults)
	assert.True(t, r.Broadcast)
	assert.Greater(t, r.Fissures, 0)
	assert.Greater(t, r.Carved, 0)
	assert.Zero(t, r.Shards)
	assert.Equal(t, cfg.GoodiesPerEventMin+8*9+12*(cfg.GoodiesPerEventMin/2), r.LootAttempts)

	require.Len(t, h.Broadcasts, 1)
	assert.Equal(t, protocol.Complete(9, 1), h.Broadcasts[0])

	for _, p := range main.Plans() {
		for d := 0; d < p.Radius; d++ {
			require.True(t, trenchOpen(h, cfg, p, d), "fault at angle %.2f closed at distance %d", p.Angle, d)
		}
	}
}

func TestTriggerMainShockDirect(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	cfg := fastConfig()
	sched := scheduler.New(nil)
	launcher := quake.NewLauncher(newEnv(h, cfg), sched, nil)

	var reports []quake.Report
	launcher.OnComplete(func(r quake.Report) { reports = append(reports, r) })

	q := launcher.TriggerMainShock(h.Center(0, 0), 3, false)
	assert.Equal(t, quake.StateCarving, q.State())
	assert.Equal(t, 1, launcher.InFlight())

	sched.Advance(time.Duration(q.Steps()) * time.Second)
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Magnitude)
	assert.Zero(t, reports[0].Fissures)
	assert.Empty(t, h.Broadcasts)
	assert.Zero(t, launcher.InFlight())
}

func TestConcurrentQuakesAreIndependent(t *testing.T) {
	h := worldtest.New(t, worldtest.Options{})
	sched := scheduler.New(nil)
	launcher := quake.NewLauncher(newEnv(h, fastConfig()), sched, nil)

	var done int
	launcher.OnComplete(func(quake.Report) { done++ })
	launcher.TriggerMainShock(h.Center(-200, 0), 2, true)
	launcher.TriggerMainShock(h.Center(200, 0), 4, true)
	assert.Equal(t, 2, launcher.InFlight())

	sched.Advance(time.Minute)
	assert.Equal(t, 2, done)
	assert.Len(t, h.Broadcasts, 2)
}
