// Package worldtest provides a deterministic flat world and recording
// collaborators for driving quake code in tests.
package worldtest

import (
	"math/rand/v2"
	"testing"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/effects"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/voxel"
)

type Options struct {
	Height   int    // map height (default 160)
	Surface  int    // y of the topmost solid layer (default 100)
	SeaLevel int    // default 100
	Rock     string // rock variant of the bedrock layers (default granite)
	Seed     uint64
}

// Spawn is one recorded item drop.
type Spawn struct {
	Item catalogs.Collectible
	Pos  voxel.Vec3d
	Vel  voxel.Vec3d
}

type Sent struct {
	PlayerID string
	Packet   protocol.Notification
}

// Harness is a black-box world: a layered grid (rock below, one soil layer on
// top) plus collaborators that record everything the simulation emits.
// It implements loot.Spawner, effects.ParticleEmitter, effects.SoundPlayer,
// entity.Roster and the notification sender interfaces.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	Grid *voxel.Grid
	Rand *rand.Rand
	Opts Options

	Spawns     []Spawn
	Particles  []effects.Particle
	Sounds     []effects.Sound
	Broadcasts []protocol.Notification
	Direct     []Sent

	players []entity.Player
}

type layered struct {
	surface int
	rock    uint16
	soil    uint16
}

func (l layered) GenerateColumn(x, z int, col []uint16) {
	for y := 0; y < l.surface && y < len(col); y++ {
		col[y] = l.rock
	}
	if l.surface < len(col) {
		col[l.surface] = l.soil
	}
}

func New(t *testing.T, opts Options) *Harness {
	t.Helper()
	if opts.Height <= 0 {
		opts.Height = 160
	}
	if opts.Surface <= 0 {
		opts.Surface = 100
	}
	if opts.SeaLevel <= 0 {
		opts.SeaLevel = 100
	}
	if opts.Rock == "" {
		opts.Rock = "granite"
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	cats := catalogs.Default()
	rock, ok := cats.BlockByCode("rock-" + opts.Rock)
	if !ok {
		t.Fatalf("unknown rock %q", opts.Rock)
	}
	gen := layered{surface: opts.Surface, rock: rock.ID, soil: cats.MustBlockID("soil-medium-normal")}
	return &Harness{
		T:    t,
		Cats: cats,
		Grid: voxel.NewGrid(voxel.GridConfig{Height: opts.Height, SeaLevel: opts.SeaLevel}, cats, gen),
		Rand: rand.New(rand.NewPCG(opts.Seed, opts.Seed*31+7)),
		Opts: opts,
	}
}

// Center is a ground-level position at (x, z): the first air cell above the surface.
func (h *Harness) Center(x, z int) voxel.Vec3i {
	return voxel.Vec3i{X: x, Y: h.Opts.Surface + 1, Z: z}
}

func (h *Harness) SetBlock(p voxel.Vec3i, code string) {
	h.T.Helper()
	if code == "air" {
		h.Grid.SetBlock(voxel.AirID, p)
		return
	}
	b, ok := h.Cats.BlockByCode(code)
	if !ok {
		h.T.Fatalf("unknown block %q", code)
	}
	h.Grid.SetBlock(b.ID, p)
}

// Fill sets every cell in the inclusive box.
func (h *Harness) Fill(a, b voxel.Vec3i, code string) {
	h.T.Helper()
	for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
		for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
			for z := min(a.Z, b.Z); z <= max(a.Z, b.Z); z++ {
				h.SetBlock(voxel.Vec3i{X: x, Y: y, Z: z}, code)
			}
		}
	}
}

func (h *Harness) Code(p voxel.Vec3i) string {
	b := h.Grid.GetBlock(p)
	if b.IsAir() {
		return "air"
	}
	return b.Code
}

// Count returns how many cells in the inclusive box satisfy pred.
func (h *Harness) Count(a, b voxel.Vec3i, pred func(voxel.BlockType) bool) int {
	n := 0
	for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
		for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
			for z := min(a.Z, b.Z); z <= max(a.Z, b.Z); z++ {
				if pred(h.Grid.GetBlock(voxel.Vec3i{X: x, Y: y, Z: z})) {
					n++
				}
			}
		}
	}
	return n
}

func (h *Harness) AddPlayer(id string, pos voxel.Vec3i) {
	h.players = append(h.players, entity.Player{ID: id, Name: id, Pos: pos})
}

func (h *Harness) OnlinePlayers() []entity.Player {
	return append([]entity.Player(nil), h.players...)
}

func (h *Harness) SpawnItem(c catalogs.Collectible, pos, vel voxel.Vec3d) {
	h.Spawns = append(h.Spawns, Spawn{Item: c, Pos: pos, Vel: vel})
}

func (h *Harness) SpawnParticles(p effects.Particle) { h.Particles = append(h.Particles, p) }

func (h *Harness) PlaySound(s effects.Sound) { h.Sounds = append(h.Sounds, s) }

func (h *Harness) Broadcast(n protocol.Notification) { h.Broadcasts = append(h.Broadcasts, n) }

func (h *Harness) Send(playerID string, n protocol.Notification) {
	h.Direct = append(h.Direct, Sent{PlayerID: playerID, Packet: n})
}

// SoundsOf returns the recorded sounds with the given asset.
func (h *Harness) SoundsOf(asset string) []effects.Sound {
	var out []effects.Sound
	for _, s := range h.Sounds {
		if s.Asset == asset {
			out = append(out, s)
		}
	}
	return out
}

func (h *Harness) ParticlesOf(kind string) int {
	n := 0
	for _, p := range h.Particles {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func (h *Harness) Reset() {
	h.Spawns = nil
	h.Particles = nil
	h.Sounds = nil
	h.Broadcasts = nil
	h.Direct = nil
}
