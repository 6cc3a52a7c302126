package warning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/calendar"
	"quakecraft.ai/internal/sim/schedule"
)

type sent struct {
	to string
	n  protocol.Notification
}

type recorder struct {
	broadcasts []protocol.Notification
	direct     []sent
}

func (r *recorder) Broadcast(n protocol.Notification)       { r.broadcasts = append(r.broadcasts, n) }
func (r *recorder) Send(id string, n protocol.Notification) { r.direct = append(r.direct, sent{id, n}) }

func testCalendar() calendar.Adapter {
	return calendar.New(&calendar.Fixed{Y: 5, MonthLengths: []int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}})
}

func TestFindUpcomingSameDay(t *testing.T) {
	e := New(testCalendar(), 3, nil)
	s := &schedule.Schedule{Year: 5, Events: []schedule.ScheduledEvent{{Month: 6, Day: 10, Hour: 14, Magnitudes: []int{5}}}}

	ev, days, ok := e.FindUpcoming(s, 6, 10, 10)
	require.True(t, ok)
	assert.Equal(t, 0, days)
	assert.Equal(t, 14, ev.Hour)

	_, _, ok = e.FindUpcoming(s, 6, 10, 16)
	assert.False(t, ok, "event hour already passed")

	_, _, ok = e.FindUpcoming(s, 6, 10, 14)
	assert.True(t, ok, "event at the current hour still matches")
}

func TestFindUpcomingWindow(t *testing.T) {
	e := New(testCalendar(), 3, nil)
	s := &schedule.Schedule{Year: 5, Events: []schedule.ScheduledEvent{{Month: 6, Day: 10, Hour: 0, Magnitudes: []int{5}}}}

	_, days, ok := e.FindUpcoming(s, 6, 7, 23)
	require.True(t, ok)
	assert.Equal(t, 3, days)

	_, _, ok = e.FindUpcoming(s, 6, 6, 0)
	assert.False(t, ok, "4 days out is beyond a 3 day window")
}

func TestFindUpcomingRollsOverMonthAndYear(t *testing.T) {
	e := New(testCalendar(), 4, nil)
	s := &schedule.Schedule{Year: 5, Events: []schedule.ScheduledEvent{
		{Month: 3, Day: 1, Hour: 3, Magnitudes: []int{2}},
		{Month: 1, Day: 2, Hour: 3, Magnitudes: []int{8}},
	}}

	_, days, ok := e.FindUpcoming(s, 2, 27, 0)
	require.True(t, ok)
	assert.Equal(t, 2, days, "february has 28 days")

	ev, days, ok := e.FindUpcoming(s, 12, 30, 0)
	require.True(t, ok)
	assert.Equal(t, 3, days)
	assert.Equal(t, 8, ev.FirstMagnitude())
}

func TestFindUpcomingNearestWins(t *testing.T) {
	e := New(testCalendar(), 4, nil)
	s := &schedule.Schedule{Year: 5, Events: []schedule.ScheduledEvent{
		{Month: 7, Day: 4, Hour: 1, Magnitudes: []int{9}},
		{Month: 7, Day: 2, Hour: 1, Magnitudes: []int{3}},
		{Month: 7, Day: 2, Hour: 20, Magnitudes: []int{4}},
	}}
	ev, days, ok := e.FindUpcoming(s, 7, 1, 5)
	require.True(t, ok)
	assert.Equal(t, 1, days)
	assert.Equal(t, 3, ev.FirstMagnitude(), "first same-day event in list order")
}

func TestWarnedStampDedup(t *testing.T) {
	rec := &recorder{}
	e := New(testCalendar(), 3, rec)
	s := &schedule.Schedule{Year: 5, Events: []schedule.ScheduledEvent{{Month: 6, Day: 10, Hour: 14, Magnitudes: []int{6, 2}}}}
	now := calendar.Date{Year: 5, Month: 6, Day: 8, Hour: 9}

	assert.True(t, e.CheckForUpcomingWarnings(s, now))
	assert.False(t, e.CheckForUpcomingWarnings(s, now))
	now.Hour = 20
	assert.False(t, e.CheckForUpcomingWarnings(s, now), "same daysUntil later that day")

	require.Len(t, rec.broadcasts, 1)
	assert.Equal(t, protocol.Warning(6, 2), rec.broadcasts[0])
	assert.True(t, e.Warned(StampKey(5, 6, 10, 2)))

	now.Day = 9
	assert.True(t, e.CheckForUpcomingWarnings(s, now), "a new daysUntil is a new stamp")

	e.Reset()
	assert.False(t, e.Warned(StampKey(5, 6, 10, 2)))
}

func TestJoinBypassesDedup(t *testing.T) {
	rec := &recorder{}
	e := New(testCalendar(), 3, rec)
	s := &schedule.Schedule{Year: 5, Events: []schedule.ScheduledEvent{{Month: 6, Day: 10, Hour: 14, Magnitudes: []int{7}}}}
	now := calendar.Date{Year: 5, Month: 6, Day: 10, Hour: 1}

	require.True(t, e.CheckForUpcomingWarnings(s, now))
	require.True(t, e.OnPlayerJoin(s, now, "late"))
	require.True(t, e.OnPlayerJoin(s, now, "later"))

	require.Len(t, rec.direct, 2)
	assert.Equal(t, "late", rec.direct[0].to)
	assert.Equal(t, protocol.Warning(7, 0), rec.direct[1].n)
	assert.Len(t, rec.broadcasts, 1)
}

func TestStampKey(t *testing.T) {
	assert.Equal(t, "0012-03-04-D2", StampKey(12, 3, 4, 2))
}
