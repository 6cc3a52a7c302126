// Package warning issues earthquake heads-up notifications ahead of scheduled events.
package warning

import (
	"fmt"

	"quakecraft.ai/internal/metrics"
	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/calendar"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/schedule"
)

type Notifier interface {
	Broadcast(n protocol.Notification)
	Send(playerID string, n protocol.Notification)
}

// Engine broadcasts at most one warning per (year, month, day, daysUntil) stamp.
// It is not safe for concurrent use; it runs on the simulation timeline.
type Engine struct {
	cal       calendar.Adapter
	lookahead int
	notify    Notifier

	warned map[string]struct{}
}

func New(cal calendar.Adapter, warningDaysBefore int, notify Notifier) *Engine {
	return &Engine{
		cal:       cal,
		lookahead: mathx.ClampInt(warningDaysBefore, 1, 4),
		notify:    notify,
		warned:    map[string]struct{}{},
	}
}

// StampKey identifies one lookahead warning.
func StampKey(year, month, day, daysUntil int) string {
	return fmt.Sprintf("%04d-%02d-%02d-D%d", year, month, day, daysUntil)
}

// Reset forgets every warned stamp. Called when a new schedule is generated.
func (e *Engine) Reset() {
	clear(e.warned)
}

func (e *Engine) Warned(stamp string) bool {
	_, ok := e.warned[stamp]
	return ok
}

// FindUpcoming returns the nearest event within the lookahead window. On the
// current day an event only matches if its hour has not passed yet.
func (e *Engine) FindUpcoming(s *schedule.Schedule, month, day, hour int) (schedule.ScheduledEvent, int, bool) {
	if s == nil || len(s.Events) == 0 {
		return schedule.ScheduledEvent{}, 0, false
	}
	for daysUntil := 0; daysUntil <= e.lookahead; daysUntil++ {
		m, d := e.cal.AddDays(month, day, daysUntil)
		ev, ok := s.OnDay(m, d)
		if !ok {
			continue
		}
		if daysUntil == 0 && ev.Hour < hour {
			continue
		}
		return ev, daysUntil, true
	}
	return schedule.ScheduledEvent{}, 0, false
}

// CheckForUpcomingWarnings broadcasts a warning for the nearest upcoming event
// unless that stamp was already broadcast. It reports whether a broadcast happened.
func (e *Engine) CheckForUpcomingWarnings(s *schedule.Schedule, now calendar.Date) bool {
	ev, daysUntil, ok := e.FindUpcoming(s, now.Month, now.Day, now.Hour)
	if !ok {
		return false
	}
	stamp := StampKey(s.Year, ev.Month, ev.Day, daysUntil)
	if e.Warned(stamp) {
		return false
	}
	if e.notify != nil {
		e.notify.Broadcast(protocol.Warning(ev.FirstMagnitude(), daysUntil))
	}
	metrics.RecordNotification(protocol.NotifyWarning, true)
	e.warned[stamp] = struct{}{}
	return true
}

// OnPlayerJoin sends the joining player the current warning directly,
// regardless of what has already been broadcast.
func (e *Engine) OnPlayerJoin(s *schedule.Schedule, now calendar.Date, playerID string) bool {
	ev, daysUntil, ok := e.FindUpcoming(s, now.Month, now.Day, now.Hour)
	if !ok {
		return false
	}
	if e.notify != nil {
		e.notify.Send(playerID, protocol.Warning(ev.FirstMagnitude(), daysUntil))
	}
	metrics.RecordNotification(protocol.NotifyWarning, false)
	return true
}
