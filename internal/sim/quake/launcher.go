package quake

import (
	"io"
	"log"
	"time"

	"quakecraft.ai/internal/metrics"
	"quakecraft.ai/internal/sim/scheduler"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

// Timer registers periodic callbacks on the simulation goroutine.
type Timer interface {
	Every(interval time.Duration, fn func()) scheduler.ListenerID
	Cancel(id scheduler.ListenerID)
}

// Launcher runs each quake instance as its own timer. Instances never talk to
// each other; they only share the world and the read-only config.
type Launcher struct {
	env   *Env
	timer Timer
	log   *log.Logger

	inFlight   int
	onStart    []func(*Quake)
	onComplete []func(Report)
}

func NewLauncher(env *Env, timer Timer, logger *log.Logger) *Launcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Launcher{env: env, timer: timer, log: logger}
}

// OnComplete registers fn to receive the report of every finished main shock.
func (l *Launcher) OnComplete(fn func(Report)) {
	l.onComplete = append(l.onComplete, fn)
}

// OnMainShock registers fn to run right after a main shock initializes.
func (l *Launcher) OnMainShock(fn func(*Quake)) {
	l.onStart = append(l.onStart, fn)
}

// InFlight is the number of foreshock or main shock timers still running.
func (l *Launcher) InFlight() int { return l.inFlight }

// StartForeshock plays the foreshock rumble and starts the stepped foreshock
// timer; its last step triggers the main shock at the same center.
func (l *Launcher) StartForeshock(center voxel.Vec3i, magnitude int, broadcastOnFinish bool) *Foreshock {
	f := NewForeshock(l.env, center, magnitude, broadcastOnFinish)
	if l.env.Cfg.SoundsEnabled && l.env.Effects != nil {
		l.env.Effects.PlayForeshock(center, f.magnitude)
	}
	metrics.RecordQuakeStarted(metrics.PhaseForeshock)
	l.log.Printf("quake: foreshock m=%d at %d,%d,%d broadcast=%v", f.magnitude, center.X, center.Y, center.Z, broadcastOnFinish)

	l.inFlight++
	var id scheduler.ListenerID
	id = l.timer.Every(l.env.Cfg.ForeshockInterval(), func() {
		if !f.Advance() {
			return
		}
		l.timer.Cancel(id)
		l.inFlight--
		q := l.TriggerMainShock(f.center, f.magnitude, f.broadcast)
		q.report.Fissures = f.fissures
		q.report.LootAttempts += f.lootAttempts
		q.report.LootSpawned += f.lootSpawned
	})
	return f
}

// TriggerMainShock initializes a quake immediately and steps it every tick
// until complete. The timer unregisters itself on the final step.
func (l *Launcher) TriggerMainShock(center voxel.Vec3i, magnitude int, broadcastOnFinish bool) *Quake {
	q := NewQuake(l.env, center, tuning.ClampMagnitude(magnitude), broadcastOnFinish)
	q.Init()
	l.log.Printf("quake: main shock m=%d radius=%d depth=%d steps=%d faults=%d", q.magnitude, q.radius, q.depth, q.steps, len(q.plans))
	for _, fn := range l.onStart {
		fn(q)
	}

	l.inFlight++
	var id scheduler.ListenerID
	id = l.timer.Every(l.env.Cfg.Tick(), func() {
		if !q.Advance() {
			return
		}
		l.timer.Cancel(id)
		l.inFlight--
		r := q.Report()
		l.log.Printf("quake: complete m=%d carved=%d floaters=%d shards=%d trees=%d loot=%d/%d",
			r.Magnitude, r.Carved, r.Floaters, r.Shards, r.Trees, r.LootSpawned, r.LootAttempts)
		for _, fn := range l.onComplete {
			fn(r)
		}
	})
	return q
}
