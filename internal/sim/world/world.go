// Package world is the server-side world the quakes run against: the voxel
// grid, the block palette and the sinks for dropped items, particles and sounds.
package world

import (
	"math/rand/v2"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/effects"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/loot"
	"quakecraft.ai/internal/sim/quake"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
	"quakecraft.ai/internal/sim/voxel/terrain"
)

type WorldConfig struct {
	Height    int
	SeaLevel  int
	Seed      int64
	BoundaryR int

	// MaxItems caps the dropped-item list; the oldest drops are evicted first.
	MaxItems int

	// Generator overrides the Perlin terrain.
	Generator voxel.ColumnGenerator
}

// World is single-threaded: it is accessed only from the scheduler goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	grid     *voxel.Grid

	items    []ItemEntity
	nextItem uint64
	evicted  int

	particles int
	sounds    []effects.Sound
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) *World {
	if cfg.Height <= 0 {
		cfg.Height = 256
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 4096
	}
	gen := cfg.Generator
	if gen == nil {
		p := terrain.DefaultParams(cfg.Seed)
		if cfg.SeaLevel > 0 {
			p.SeaLevel = cfg.SeaLevel
			p.BaseHeight = cfg.SeaLevel
		}
		gen = terrain.New(p, cats)
		if cfg.SeaLevel <= 0 {
			cfg.SeaLevel = p.SeaLevel
		}
	}
	return &World{
		cfg:      cfg,
		catalogs: cats,
		grid:     voxel.NewGrid(voxel.GridConfig{Height: cfg.Height, SeaLevel: cfg.SeaLevel, BoundaryR: cfg.BoundaryR}, cats, gen),
	}
}

func (w *World) Grid() *voxel.Grid            { return w.grid }
func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }
func (w *World) Config() WorldConfig          { return w.cfg }
func (w *World) SurfaceAt(x, z int) voxel.Vec3i {
	return voxel.Vec3i{X: x, Y: voxel.FindSurfaceY(w.grid, x, z, w.cfg.Height-2), Z: z}
}
func (w *World) Params() protocol.WorldParams {
	return protocol.WorldParams{Height: w.cfg.Height, SeaLevel: w.cfg.SeaLevel, Seed: w.cfg.Seed}
}

// QuakeEnv wires the world into the quake engine.
func (w *World) QuakeEnv(cfg tuning.Config, rng *rand.Rand, players entity.Roster, notify quake.Broadcaster) *quake.Env {
	return &quake.Env{
		World:  w.grid,
		Blocks: w.catalogs,
		Loot: &loot.Emitter{
			World:    w.grid,
			Resolver: w.catalogs,
			Spawner:  w,
			Rand:     rng,
			Tables:   loot.DefaultTables(),
		},
		Effects: &effects.Emitter{
			World:              w.grid,
			Particles:          w,
			Sounds:             w,
			Players:            players,
			Rand:               rng,
			InteriorScanHeight: cfg.InteriorScanHeight,
		},
		Spawner: w,
		Notify:  notify,
		Rand:    rng,
		Cfg:     cfg,
		Rules:   quake.CompileRules(cfg),
	}
}

func (w *World) SpawnParticles(effects.Particle) { w.particles++ }

func (w *World) PlaySound(s effects.Sound) {
	w.sounds = append(w.sounds, s)
	if len(w.sounds) > 256 {
		w.sounds = append(w.sounds[:0], w.sounds[len(w.sounds)-256:]...)
	}
}

// Stats summarizes what the world has emitted so far.
type Stats struct {
	Items       int    `json:"items"`
	Evicted     int    `json:"evicted"`
	Particles   int    `json:"particles"`
	Sounds      int    `json:"sounds"`
	GridWrites  uint64 `json:"grid_writes"`
	LoadedChunk int    `json:"loaded_chunks"`
}

func (w *World) Stats() Stats {
	return Stats{
		Items:       len(w.items),
		Evicted:     w.evicted,
		Particles:   w.particles,
		Sounds:      len(w.sounds),
		GridWrites:  w.grid.Writes(),
		LoadedChunk: len(w.grid.LoadedChunkKeys()),
	}
}
