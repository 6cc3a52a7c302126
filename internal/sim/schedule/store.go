package schedule

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"

	"quakecraft.ai/internal/sim/calendar"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/tuning"
)

// Key is the save-game key the schedule blob is stored under.
const Key = "earthquake_schedule"

// generatedYearStartMonth is the month random generation treats as the start of the year.
const generatedYearStartMonth = 5

// KV is the world-scoped blob store. A nil blob with a nil error means "absent".
type KV interface {
	GetData(key string) ([]byte, error)
	StoreData(key string, data []byte) error
}

type StoreConfig struct {
	KV       KV
	Tuning   tuning.Config
	Calendar calendar.Adapter
	Rand     *rand.Rand
	// ElapsedMillis stamps LastCheckedTick on generated schedules.
	ElapsedMillis func() int64
	Logger        *log.Logger
}

// Store owns the current year's schedule and is the only writer of the persisted blob.
type Store struct {
	kv      KV
	cfg     tuning.Config
	cal     calendar.Adapter
	rng     *rand.Rand
	elapsed func() int64
	log     *log.Logger

	current      *Schedule
	onRegenerate []func(*Schedule)
}

func NewStore(c StoreConfig) *Store {
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(1, 2))
	}
	if c.ElapsedMillis == nil {
		c.ElapsedMillis = func() int64 { return 0 }
	}
	return &Store{
		kv:      c.KV,
		cfg:     c.Tuning,
		cal:     c.Calendar,
		rng:     c.Rand,
		elapsed: c.ElapsedMillis,
		log:     c.Logger,
	}
}

// OnRegenerate registers fn to run after every newly generated schedule.
func (s *Store) OnRegenerate(fn func(*Schedule)) {
	s.onRegenerate = append(s.onRegenerate, fn)
}

// Current returns the in-memory schedule (nil before the first EnsureCurrent).
func (s *Store) Current() *Schedule { return s.current }

// EnsureCurrent keeps the in-memory or persisted schedule when it belongs to the
// current year and has events; otherwise it generates a new one. It reports
// whether a new schedule was generated.
func (s *Store) EnsureCurrent() bool {
	year := s.cal.Year()
	if s.current.CurrentFor(year) {
		return false
	}
	if loaded, err := s.load(); err != nil {
		s.log.Printf("schedule: load: %v (regenerating)", err)
	} else if loaded.CurrentFor(year) {
		s.current = loaded
		return false
	}
	return s.Generate(false)
}

func (s *Store) load() (*Schedule, error) {
	if s.kv == nil {
		return nil, nil
	}
	b, err := s.kv.GetData(Key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return Decode(b)
}

// Generate builds the schedule for the current year. Without force it is a
// no-op when the current schedule already matches the year.
func (s *Store) Generate(force bool) bool {
	year := s.cal.Year()
	if !force && s.current.CurrentFor(year) {
		return false
	}

	var events []ScheduledEvent
	if s.cfg.UsesUserSchedule() {
		events = s.fromUserSchedule()
	} else {
		events = s.random()
	}
	s.current = &Schedule{Year: year, Events: events, LastCheckedTick: s.elapsed()}

	if err := s.persist(s.current); err != nil {
		s.log.Printf("schedule: persist year=%d: %v (kept in memory)", year, err)
	}
	s.log.Printf("schedule: generated year=%d events=%d", year, len(events))
	for _, fn := range s.onRegenerate {
		fn(s.current)
	}
	return true
}

func (s *Store) persist(sch *Schedule) error {
	if s.kv == nil {
		return nil
	}
	b, err := Encode(sch)
	if err != nil {
		return err
	}
	return s.kv.StoreData(Key, b)
}

func (s *Store) fromUserSchedule() []ScheduledEvent {
	out := make([]ScheduledEvent, 0, len(s.cfg.UserSchedule))
	for _, u := range s.cfg.UserSchedule {
		out = append(out, ScheduledEvent{
			Month:      u.Month,
			Day:        u.Day,
			Hour:       u.Hour,
			Magnitudes: tuning.ClampMagnitudes(u.Magnitudes),
		})
	}
	return out
}

// random samples distinct days starting the year at month 5. Collisions are
// retried up to 10x the target count; fewer events are accepted if attempts run out.
func (s *Store) random() []ScheduledEvent {
	months := s.cal.MonthsPerYear()
	want := mathx.ClampInt(s.cfg.EventsPerYear, 1, 3)

	type md struct{ month, day int }
	picked := make([]md, 0, want)
	seen := map[string]struct{}{}
	for attempts := 0; len(picked) < want && attempts < want*10; attempts++ {
		month := mathx.Mod(generatedYearStartMonth-1+s.rng.IntN(months), months) + 1
		day := 1 + s.rng.IntN(s.cal.DaysInMonth(month))
		key := fmt.Sprintf("%02d-%02d", month, day)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		picked = append(picked, md{month, day})
	}

	hours := s.cal.HoursPerDay()
	lo, hi := s.cfg.MagnitudeMin, s.cfg.MagnitudeMax
	events := make([]ScheduledEvent, 0, len(picked))
	for _, p := range picked {
		n := 1 + s.rng.IntN(4)
		mags := make([]int, n)
		for i := range mags {
			mags[i] = lo + s.rng.IntN(hi-lo+1)
		}
		events = append(events, ScheduledEvent{Month: p.month, Day: p.day, Hour: s.rng.IntN(hours), Magnitudes: mags})
	}
	return events
}
