package quake

import (
	"math/rand/v2"

	"quakecraft.ai/internal/metrics"
	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/effects"
	"quakecraft.ai/internal/sim/loot"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

type Broadcaster interface {
	Broadcast(n protocol.Notification)
}

// Env is everything a quake touches. One Env is shared by every quake in
// flight; all of them run on the scheduler goroutine.
type Env struct {
	World   voxel.BlockAccessor
	Blocks  BlockLookup
	Loot    *loot.Emitter
	Effects *effects.Emitter
	Spawner loot.Spawner
	Notify  Broadcaster
	Rand    *rand.Rand
	Cfg     tuning.Config
	Rules   Rules
}

type State int

const (
	StateInit State = iota
	StateCarving
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateCarving:
		return "carving"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Report summarizes one finished quake instance.
type Report struct {
	Center       voxel.Vec3i `json:"center"`
	Magnitude    int         `json:"magnitude"`
	Radius       int         `json:"radius"`
	Depth        int         `json:"depth"`
	Steps        int         `json:"steps"`
	Faults       int         `json:"faults"`
	Broadcast    bool        `json:"broadcast"`
	Fissures     int         `json:"fissures"`
	Carved       int         `json:"carved"`
	Floaters     int         `json:"floaters"`
	Gravel       int         `json:"gravel"`
	Shards       int         `json:"shards"`
	Trees        int         `json:"trees"`
	LootAttempts int         `json:"loot_attempts"`
	LootSpawned  int         `json:"loot_spawned"`
}

// Quake is the main-shock state machine: Init, then Steps carving ticks, then Complete.
type Quake struct {
	env *Env

	center    voxel.Vec3i
	magnitude int
	radius    int
	depth     int
	steps     int
	broadcast bool

	plans  []FaultPlan
	step   int
	state  State
	report Report
}

// NewQuake sizes a main shock. The magnitude is clamped to [1,9].
func NewQuake(env *Env, center voxel.Vec3i, magnitude int, broadcastOnFinish bool) *Quake {
	m := tuning.ClampMagnitude(magnitude)
	q := &Quake{
		env:       env,
		center:    center,
		magnitude: m,
		radius:    Radius(m),
		depth:     Depth(m),
		steps:     Steps(m, env.Cfg.Tick()),
		broadcast: broadcastOnFinish,
	}
	q.report = Report{Center: center, Magnitude: m, Radius: q.radius, Depth: q.depth, Steps: q.steps, Broadcast: broadcastOnFinish}
	return q
}

func (q *Quake) State() State        { return q.state }
func (q *Quake) Step() int           { return q.step }
func (q *Quake) Steps() int          { return q.steps }
func (q *Quake) Radius() int         { return q.radius }
func (q *Quake) Magnitude() int      { return q.magnitude }
func (q *Quake) Plans() []FaultPlan  { return q.plans }
func (q *Quake) Report() Report      { return q.report }
func (q *Quake) Center() voxel.Vec3i { return q.center }

// Init scatters the quake loot, plays the exterior ambience and lays out the
// fault plans. Interior loops for indoor players near the center start here too.
func (q *Quake) Init() {
	if q.state != StateInit {
		return
	}
	env := q.env
	m := q.magnitude

	// Loot is split evenly over the loot points; the remainder goes to the first points.
	if env.Loot != nil {
		table := loot.QuakeTable(m)
		total := env.Cfg.GoodiesPerEventMin + 8*m
		points := max(3, q.radius/20)
		per, extra := total/points, total%points
		for i := 0; i < points; i++ {
			count := per
			if i < extra {
				count++
			}
			ox, oz := mathx.Polar(mathx.Angle(env.Rand), mathx.IntRange(env.Rand, 6, max(12, q.radius)))
			p := voxel.Vec3i{X: q.center.X + ox, Y: q.center.Y, Z: q.center.Z + oz}
			res := env.Loot.SpawnFromTable(table, p, 16, count)
			q.report.LootAttempts += res.Attempts
			q.report.LootSpawned += res.Spawned
		}
	}

	if env.Cfg.SoundsEnabled && env.Effects != nil {
		env.Effects.PlayExteriorSounds(q.center, q.radius, m)
	}

	q.plans = NewFaultPlans(env.Rand, q.center, m)
	q.report.Faults = len(q.plans)

	if env.Cfg.SoundsEnabled && env.Effects != nil {
		env.Effects.PlayInteriorLoops(q.center, q.radius)
	}
	q.state = StateCarving
	metrics.RecordQuakeStarted(metrics.PhaseMain)
}

// Advance runs one carving tick and reports whether the quake is complete.
// Even ticks also run the floater, gravel, shard and tree passes.
func (q *Quake) Advance() bool {
	switch q.state {
	case StateInit:
		q.Init()
	case StateComplete:
		return true
	}
	env := q.env
	m := q.magnitude

	carved := 0
	for _, p := range q.plans {
		carved += CarveStep(env.World, env.Rand, env.Cfg, p, q.step, q.steps)
	}
	q.report.Carved += carved
	metrics.RecordBlocks(metrics.StageFault, carved)

	if env.Effects != nil {
		env.Effects.SpawnQuakeParticles(q.center, int(float64(q.radius)*0.6), m, 1, false)
	}

	if q.step%2 == 0 {
		n := CleanupFloaters(env.World, env.Rules, q.center, int(float64(q.radius)*0.9))
		q.report.Floaters += n
		metrics.RecordBlocks(metrics.StageFloater, n)

		if env.Blocks != nil {
			n = GravelHalo(env.World, env.Blocks, env.Spawner, env.Rand, q.center, int(float64(q.radius)*(0.6+0.04*float64(m))))
			q.report.Gravel += n
			metrics.RecordBlocks(metrics.StageGravelAdd, n)
		}

		if env.Cfg.ShardLoweringEnabled {
			n = LowerShards(env.World, env.Rand, env.Cfg, q.center, q.radius, m)
			q.report.Shards += n
			metrics.RecordBlocks(metrics.StageShard, n)
		}

		n = CollapseTrees(env.World, env.Rules, q.center, q.radius)
		q.report.Trees += n
		metrics.RecordBlocks(metrics.StageTree, n)
	}

	q.step++
	if q.step < q.steps {
		return false
	}
	q.state = StateComplete
	metrics.RecordSequenceSteps(q.steps)
	if q.broadcast && env.Notify != nil {
		env.Notify.Broadcast(protocol.Complete(m, 1))
		metrics.RecordNotification(protocol.NotifyComplete, true)
	}
	return true
}
