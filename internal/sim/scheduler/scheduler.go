// Package scheduler runs every piece of simulation logic on one goroutine.
// Periodic listeners fire on virtual time which Run advances from a wall-clock
// ticker and tests advance directly.
package scheduler

import (
	"context"
	"io"
	"log"
	"sync/atomic"
	"time"
)

type ListenerID int64

type listener struct {
	id       ListenerID
	interval time.Duration
	next     time.Duration
	fn       func()
	canceled bool
}

type Scheduler struct {
	log *log.Logger

	now       atomic.Int64 // elapsed virtual time in ns
	nextID    ListenerID
	listeners map[ListenerID]*listener

	inbox chan func()
	stop  chan struct{}
}

func New(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{
		log:       logger,
		listeners: map[ListenerID]*listener{},
		inbox:     make(chan func(), 1024),
		stop:      make(chan struct{}),
	}
}

// Elapsed is the virtual time since the scheduler was created. Safe from any goroutine.
func (s *Scheduler) Elapsed() time.Duration { return time.Duration(s.now.Load()) }

func (s *Scheduler) ElapsedMillis() int64 { return s.Elapsed().Milliseconds() }

// Every registers fn to run every interval, first firing one interval from now.
// Must be called on the scheduler goroutine (or before Run).
func (s *Scheduler) Every(interval time.Duration, fn func()) ListenerID {
	if interval <= 0 {
		interval = time.Millisecond
	}
	s.nextID++
	l := &listener{id: s.nextID, interval: interval, next: s.Elapsed() + interval, fn: fn}
	s.listeners[l.id] = l
	return l.id
}

// Cancel unregisters a listener. Canceling from inside its own callback is allowed.
func (s *Scheduler) Cancel(id ListenerID) {
	if l, ok := s.listeners[id]; ok {
		l.canceled = true
		delete(s.listeners, id)
	}
}

func (s *Scheduler) Active() int { return len(s.listeners) }

// Post queues fn to run on the scheduler goroutine. Safe from any goroutine.
// It returns false once the scheduler has stopped.
func (s *Scheduler) Post(fn func()) bool {
	select {
	case <-s.stop:
		return false
	default:
	}
	select {
	case s.inbox <- fn:
		return true
	case <-s.stop:
		return false
	}
}

func (s *Scheduler) drain() {
	for {
		select {
		case fn := <-s.inbox:
			s.call(fn)
		default:
			return
		}
	}
}

func (s *Scheduler) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Printf("scheduler: callback panic: %v", r)
		}
	}()
	fn()
}

// due returns the earliest listener due at or before target; ties go to the
// listener registered first.
func (s *Scheduler) due(target time.Duration) *listener {
	var best *listener
	for _, l := range s.listeners {
		if l.next > target {
			continue
		}
		if best == nil || l.next < best.next || (l.next == best.next && l.id < best.id) {
			best = l
		}
	}
	return best
}

// Advance moves virtual time forward by d, firing every listener that falls due
// in order. Posted callbacks run before and after.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.Elapsed() + d
	s.drain()
	for {
		l := s.due(target)
		if l == nil {
			break
		}
		s.now.Store(int64(l.next))
		l.next += l.interval
		s.call(l.fn)
		s.drain()
	}
	s.now.Store(int64(target))
	s.drain()
}

// Run drives virtual time from the wall clock until ctx is done.
func (s *Scheduler) Run(ctx context.Context, resolution time.Duration) error {
	if resolution <= 0 {
		resolution = 50 * time.Millisecond
	}
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()
	defer close(s.stop)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.inbox:
			s.call(fn)
		case now := <-ticker.C:
			s.Advance(now.Sub(last))
			last = now
		}
	}
}
