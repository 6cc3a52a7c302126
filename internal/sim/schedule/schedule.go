package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"quakecraft.ai/internal/sim/tuning"
)

// ScheduledEvent is one calendar trigger point. Several magnitudes let one
// event dispatch different quakes to different players.
type ScheduledEvent struct {
	Month      int   `json:"month"`
	Day        int   `json:"day"`
	Hour       int   `json:"hour"`
	Magnitudes []int `json:"magnitudes"`
}

// FirstMagnitude is the magnitude announced in broadcasts (1 when none is set),
// clamped to [1,9].
func (e ScheduledEvent) FirstMagnitude() int {
	if len(e.Magnitudes) == 0 {
		return 1
	}
	return tuning.ClampMagnitude(e.Magnitudes[0])
}

func (e ScheduledEvent) String() string {
	mags := make([]string, len(e.Magnitudes))
	for i, m := range e.Magnitudes {
		mags[i] = strconv.Itoa(m)
	}
	return fmt.Sprintf("Month %d, Day %d @ %02d:00 - Magnitudes: %s", e.Month, e.Day, e.Hour, strings.Join(mags, ", "))
}

// Schedule is the year's event list; it is the only durable state of the system.
type Schedule struct {
	Year            int              `json:"year"`
	Events          []ScheduledEvent `json:"events"`
	LastCheckedTick int64            `json:"last_checked_tick"`
}

// CurrentFor reports whether the schedule can be kept for the given year.
func (s *Schedule) CurrentFor(year int) bool {
	return s != nil && s.Year == year && len(s.Events) > 0
}

// At returns the first event scheduled at exactly (month, day, hour).
func (s *Schedule) At(month, day, hour int) (ScheduledEvent, bool) {
	if s == nil {
		return ScheduledEvent{}, false
	}
	for _, e := range s.Events {
		if e.Month == month && e.Day == day && e.Hour == hour {
			return e, true
		}
	}
	return ScheduledEvent{}, false
}

// OnDay returns the first event in list order on (month, day).
func (s *Schedule) OnDay(month, day int) (ScheduledEvent, bool) {
	if s == nil {
		return ScheduledEvent{}, false
	}
	for _, e := range s.Events {
		if e.Month == month && e.Day == day {
			return e, true
		}
	}
	return ScheduledEvent{}, false
}

// Sorted returns a copy of the events ordered by month, day, hour.
func (s *Schedule) Sorted() []ScheduledEvent {
	if s == nil {
		return nil
	}
	out := append([]ScheduledEvent(nil), s.Events...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}

func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	c := &Schedule{Year: s.Year, LastCheckedTick: s.LastCheckedTick, Events: make([]ScheduledEvent, len(s.Events))}
	for i, e := range s.Events {
		e.Magnitudes = append([]int(nil), e.Magnitudes...)
		c.Events[i] = e
	}
	return c
}
