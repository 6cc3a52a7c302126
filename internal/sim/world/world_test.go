package world

import (
	"math/rand/v2"
	"testing"

	"quakecraft.ai/internal/protocol"
	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/effects"
	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/quake"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

type nobody struct{}

func (nobody) OnlinePlayers() []entity.Player { return nil }

type broadcasts struct{ got []protocol.Notification }

func (b *broadcasts) Broadcast(n protocol.Notification) { b.got = append(b.got, n) }

func TestSpawnItemEvictsOldest(t *testing.T) {
	w := New(WorldConfig{Seed: 1, MaxItems: 3}, catalogs.Default())
	c := catalogs.Collectible{Code: "flint", Kind: catalogs.KindItem}
	for i := 0; i < 5; i++ {
		w.SpawnItem(c, voxel.Vec3d{X: float64(i)}, voxel.Vec3d{})
	}
	items := w.items
	if len(items) != 3 || items[0].EntityID != "IT000003" || items[2].EntityID != "IT000005" {
		t.Fatalf("items: %+v", items)
	}
	if s := w.Stats(); s.Evicted != 2 || s.Items != 3 {
		t.Fatalf("stats: %+v", s)
	}
}

func TestEffectCounters(t *testing.T) {
	w := New(WorldConfig{Seed: 1}, catalogs.Default())
	for i := 0; i < 300; i++ {
		w.SpawnParticles(effects.Particle{})
		w.PlaySound(effects.Sound{Asset: "quake_rumble", Range: float64(i)})
	}
	s := w.Stats()
	if s.Particles != 300 || s.Sounds != 256 {
		t.Fatalf("stats: %+v", s)
	}
	if w.sounds[0].Range != 44 || w.sounds[255].Range != 299 {
		t.Fatalf("kept sounds %v..%v, want the newest 256", w.sounds[0].Range, w.sounds[255].Range)
	}
}

func TestQuakeEnvRunsAQuake(t *testing.T) {
	w := New(WorldConfig{Seed: 7, Height: 200}, catalogs.Default())
	cfg := tuning.Defaults()
	cfg.TickSeconds = 1
	cfg.ShardLoweringEnabled = false
	cfg.Normalize()
	b := &broadcasts{}
	env := w.QuakeEnv(cfg, rand.New(rand.NewPCG(3, 4)), nobody{}, b)

	center := w.SurfaceAt(0, 0)
	if center.Y <= 2 {
		t.Fatalf("no surface found: %+v", center)
	}
	q := quake.NewQuake(env, center, 3, true)
	for !q.Advance() {
	}

	s := w.Stats()
	if s.Items == 0 || s.Particles == 0 || s.Sounds == 0 {
		t.Fatalf("expected loot and effects, got %+v", s)
	}
	if s.GridWrites == 0 || q.Report().Carved == 0 {
		t.Fatalf("nothing carved: %+v %+v", s, q.Report())
	}
	if len(b.got) != 1 || b.got[0] != protocol.Complete(3, 1) {
		t.Fatalf("broadcasts: %+v", b.got)
	}
}

func TestParams(t *testing.T) {
	w := New(WorldConfig{Seed: 99, Height: 180, SeaLevel: 90}, catalogs.Default())
	p := w.Params()
	if p.Height != 180 || p.SeaLevel != 90 || p.Seed != 99 {
		t.Fatalf("params: %+v", p)
	}
	if w.Grid().SeaLevel() != 90 {
		t.Fatalf("grid sea level: %d", w.Grid().SeaLevel())
	}
}
