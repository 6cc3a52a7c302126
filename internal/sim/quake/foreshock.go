package quake

import (
	"quakecraft.ai/internal/metrics"
	"quakecraft.ai/internal/sim/loot"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

// Foreshock is the stepped lead-in to a main shock: shallow fissures, a
// trickle of loot and light particles on every step.
type Foreshock struct {
	env *Env

	center    voxel.Vec3i
	magnitude int
	broadcast bool
	step      int
	steps     int

	fissures     int
	lootAttempts int
	lootSpawned  int
}

func NewForeshock(env *Env, center voxel.Vec3i, magnitude int, broadcastOnFinish bool) *Foreshock {
	steps := env.Cfg.ForeshockSteps
	if steps <= 0 {
		steps = 12
	}
	return &Foreshock{
		env:       env,
		center:    center,
		magnitude: tuning.ClampMagnitude(magnitude),
		broadcast: broadcastOnFinish,
		steps:     steps,
	}
}

func (f *Foreshock) Step() int      { return f.step }
func (f *Foreshock) Steps() int     { return f.steps }
func (f *Foreshock) Magnitude() int { return f.magnitude }
func (f *Foreshock) Done() bool     { return f.step >= f.steps }

// Advance runs one foreshock step and reports whether the sequence is finished.
func (f *Foreshock) Advance() bool {
	if f.Done() {
		return true
	}
	env := f.env
	m := f.magnitude

	n := HintCut(env.World, env.Rand, f.center, m)
	f.fissures += n
	metrics.RecordBlocks(metrics.StageFissure, n)

	if env.Loot != nil {
		radius := max(12, env.Cfg.EventNearPlayerRadius/10)
		res := env.Loot.SpawnFromTable(loot.PreshockTable(m), f.center, radius, env.Cfg.GoodiesPerEventMin/2)
		f.lootAttempts += res.Attempts
		f.lootSpawned += res.Spawned
	}
	if env.Effects != nil {
		env.Effects.SpawnQuakeParticles(f.center, 28+4*m, m, 0.4, true)
	}

	f.step++
	return f.Done()
}
