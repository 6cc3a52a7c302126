// Package director owns the scheduled-earthquake lifecycle: it keeps the
// yearly schedule current, issues warnings, fires due events at online players
// and exposes the operator entry points behind the /earthquake command.
package director

import (
	"io"
	"log"
	"math/rand/v2"

	"quakecraft.ai/internal/metrics"
	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/calendar"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/quake"
	"quakecraft.ai/internal/sim/schedule"
	"quakecraft.ai/internal/sim/scheduler"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
	"quakecraft.ai/internal/sim/warning"
)

// Launcher starts foreshock sequences; *quake.Launcher implements it.
type Launcher interface {
	StartForeshock(center voxel.Vec3i, magnitude int, broadcastOnFinish bool) *quake.Foreshock
}

type Config struct {
	Tuning   tuning.Config
	Calendar calendar.Adapter
	Store    *schedule.Store
	Launcher Launcher
	Players  entity.Roster
	Notify   warning.Notifier
	Rand     *rand.Rand
	Logger   *log.Logger
}

// Director is the single owner of the warned-stamp set and the last-triggered
// stamp. Every method runs on the scheduler goroutine.
type Director struct {
	cfg      tuning.Config
	cal      calendar.Adapter
	store    *schedule.Store
	warnings *warning.Engine
	launcher Launcher
	players  entity.Roster
	notify   warning.Notifier
	rng      *rand.Rand
	log      *log.Logger

	lastTriggered string
	pollID        scheduler.ListenerID
}

func New(c Config) *Director {
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(1, 2))
	}
	d := &Director{
		cfg:      c.Tuning,
		cal:      c.Calendar,
		store:    c.Store,
		warnings: warning.New(c.Calendar, c.Tuning.WarningDaysBefore, c.Notify),
		launcher: c.Launcher,
		players:  c.Players,
		notify:   c.Notify,
		rng:      c.Rand,
		log:      c.Logger,
	}
	// A fresh schedule starts with no warnings sent and may fire this very hour.
	c.Store.OnRegenerate(func(*schedule.Schedule) {
		d.warnings.Reset()
		d.lastTriggered = ""
	})
	return d
}

// Start loads or generates the schedule and registers the poll on timer.
func (d *Director) Start(timer quake.Timer) scheduler.ListenerID {
	d.store.EnsureCurrent()
	d.pollID = timer.Every(d.cfg.PollInterval(), func() { d.Tick() })
	return d.pollID
}

func (d *Director) Schedule() *schedule.Schedule { return d.store.Current() }

func (d *Director) Warnings() *warning.Engine { return d.warnings }

// LastTriggered is the calendar stamp of the last hour an event fired, "" if none.
func (d *Director) LastTriggered() string { return d.lastTriggered }

// Tick is one poll: refresh the schedule, send any due warning, then fire the
// event scheduled for the current hour. It returns the number of foreshock
// sequences launched.
func (d *Director) Tick() int {
	if !d.cal.Available() {
		return 0
	}
	d.store.EnsureCurrent()
	now := d.cal.Now()
	s := d.store.Current()

	d.warnings.CheckForUpcomingWarnings(s, now)

	stamp := now.Stamp()
	if stamp == d.lastTriggered {
		return 0
	}
	ev, ok := s.At(now.Month, now.Day, now.Hour)
	if !ok {
		return 0
	}
	var players []entity.Player
	if d.players != nil {
		players = d.players.OnlinePlayers()
	}
	if len(players) == 0 {
		return 0
	}
	d.lastTriggered = stamp

	count := mathx.ClampInt(1+len(players)/10, d.cfg.QuakesPerEventMin, d.cfg.QuakesPerEventMax)
	d.rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	chosen := min(count, len(players))

	d.broadcast(protocol.Foreshock(ev.FirstMagnitude()))
	mags := ev.Magnitudes
	if len(mags) == 0 {
		mags = []int{ev.FirstMagnitude()}
	}
	for _, p := range players[:chosen] {
		m := tuning.ClampMagnitude(mathx.Pick(d.rng, mags))
		d.log.Printf("director: event %s m=%d at player %s", stamp, m, p.ID)
		d.launcher.StartForeshock(p.Pos, m, true)
	}
	return chosen
}

// PlayerJoined sends the joining player the current heads-up, if any, even when
// the broadcast for it already went out.
func (d *Director) PlayerJoined(p entity.Player) bool {
	if !d.cal.Available() {
		return false
	}
	if s := d.store.Current(); s == nil || len(s.Events) == 0 {
		return false
	}
	d.store.EnsureCurrent()
	return d.warnings.OnPlayerJoin(d.store.Current(), d.cal.Now(), p.ID)
}

// ShowDates returns the current year's events ordered by month, day, hour.
func (d *Director) ShowDates() (int, []schedule.ScheduledEvent) {
	d.store.EnsureCurrent()
	s := d.store.Current()
	if s == nil {
		return d.cal.Year(), nil
	}
	return s.Year, s.Sorted()
}

// GenDates forces a new schedule for the current year and returns that year.
func (d *Director) GenDates() int {
	d.store.Generate(true)
	return d.store.Current().Year
}

// TestQuake warns everyone of an immediate quake and starts a foreshock at pos
// outside the scheduled path. The main shock does not broadcast completion.
func (d *Director) TestQuake(pos voxel.Vec3i, magnitude int) int {
	m := tuning.ClampMagnitude(magnitude)
	d.broadcast(protocol.Warning(m, 0))
	d.log.Printf("director: test quake m=%d at %d,%d,%d", m, pos.X, pos.Y, pos.Z)
	d.launcher.StartForeshock(pos, m, false)
	return m
}

func (d *Director) broadcast(n protocol.Notification) {
	if d.notify != nil {
		d.notify.Broadcast(n)
	}
	metrics.RecordNotification(n.Type, true)
}
