package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"quakecraft.ai/internal/persistence/kvstore"
	persistlog "quakecraft.ai/internal/persistence/log"
	"quakecraft.ai/internal/sim/calendar"
	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/command"
	"quakecraft.ai/internal/sim/director"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/quake"
	"quakecraft.ai/internal/sim/schedule"
	"quakecraft.ai/internal/sim/scheduler"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/warning"
	"quakecraft.ai/internal/sim/world"
)

const (
	dbFile      = "quakecraft.sqlite"
	calendarKey = "calendar"
)

// runtime is one world on one scheduler. open builds the parts that do not
// depend on the player hub; wire finishes it once the hub exists.
type runtime struct {
	opts   *options
	logger *log.Logger

	tune   tuning.Config
	cats   *catalogs.Catalogs
	world  *world.World
	sched  *scheduler.Scheduler
	db     *kvstore.SQLite
	cal    *calendar.TickCalendar
	store  *schedule.Store
	rng    *rand.Rand
	quakes *persistlog.QuakeLogger

	launcher *quake.Launcher
	director *director.Director
	cmd      *command.Earthquake
}

func openRuntime(opts *options, logger *log.Logger) (*runtime, error) {
	worldDir := opts.worldDir()
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		return nil, err
	}

	tune, err := tuning.LoadOrCreate(opts.tuningFile())
	if err != nil {
		return nil, err
	}

	cats, err := catalogs.Load(opts.configDir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Printf("catalogs not found in %s; using built-in palette", opts.configDir)
		cats, err = catalogs.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	db, err := kvstore.OpenSQLite(filepath.Join(worldDir, dbFile), logger)
	if err != nil {
		return nil, err
	}

	r := &runtime{
		opts:   opts,
		logger: logger,
		tune:   tune,
		cats:   cats,
		sched:  scheduler.New(logger),
		db:     db,
		rng:    rand.New(rand.NewPCG(uint64(opts.seed), uint64(opts.seed)^0x9e3779b97f4a7c15)),
		quakes: persistlog.NewQuakeLogger(worldDir),
	}
	r.world = world.New(world.WorldConfig{
		Height:    opts.height,
		Seed:      opts.seed,
		BoundaryR: opts.boundaryR,
	}, cats)

	r.cal = calendar.NewTickCalendar(calendar.TickConfig{
		StartYear:    opts.startYear,
		HourDuration: opts.hourDuration,
	}, r.sched.Elapsed)
	if err := r.restoreCalendar(); err != nil {
		logger.Printf("calendar: restore: %v (starting fresh)", err)
	}

	r.store = schedule.NewStore(schedule.StoreConfig{
		KV:            db,
		Tuning:        tune,
		Calendar:      calendar.New(r.cal),
		Rand:          r.rng,
		ElapsedMillis: r.sched.ElapsedMillis,
		Logger:        logger,
	})
	return r, nil
}

// wire builds the quake launcher, the director and the operator command on
// top of the given roster and notifier.
func (r *runtime) wire(players entity.Roster, notify warning.Notifier) {
	env := r.world.QuakeEnv(r.tune, r.rng, players, notify)
	r.launcher = quake.NewLauncher(env, r.sched, r.logger)
	r.launcher.OnComplete(func(rep quake.Report) {
		if err := r.quakes.WriteQuake(rep); err != nil {
			r.logger.Printf("quake journal: %v", err)
		}
		r.db.RecordQuake(rep)
	})

	r.director = director.New(director.Config{
		Tuning:   r.tune,
		Calendar: calendar.New(r.cal),
		Store:    r.store,
		Launcher: r.launcher,
		Players:  players,
		Notify:   notify,
		Rand:     r.rng,
		Logger:   r.logger,
	})
	r.cmd = command.NewEarthquake(r.director)
}

// Execute runs an operator command; it satisfies ws.Commands.
func (r *runtime) Execute(c command.Caller, line string) (string, error) {
	return r.cmd.Execute(c, line)
}

func (r *runtime) restoreCalendar() error {
	b, err := r.db.GetData(calendarKey)
	if err != nil || b == nil {
		return err
	}
	var d calendar.Date
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	r.cal.Seek(d)
	return nil
}

func (r *runtime) saveCalendar() {
	b, err := json.Marshal(calendar.New(r.cal).Now())
	if err != nil {
		return
	}
	if err := r.db.StoreData(calendarKey, b); err != nil {
		r.logger.Printf("calendar: save: %v", err)
	}
}

func (r *runtime) Close() error {
	err := r.quakes.Close()
	return errors.Join(err, r.db.Close())
}
