// Package effects emits the particle bursts and sounds that accompany a quake.
// Nothing here mutates terrain.
package effects

import (
	"math/rand/v2"

	"quakecraft.ai/internal/sim/entity"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/voxel"
)

// Particle kinds.
const (
	KindDust  = "dust"
	KindChips = "chips"
	KindSteam = "steam"
)

const (
	ModelQuad = "quad"
	ModelCube = "cube"
)

// Sound assets.
const (
	SoundExterior  = "earthquake:sounds/quakes/earthquake-exterior.ogg"
	SoundLarge     = "earthquake:sounds/quakes/earthquake-large.ogg"
	SoundInterior  = "earthquake:sounds/quakes/earthquake-interior.ogg"
	SoundForeshock = "earthquake:sounds/quakes/earthquake-foreshock.ogg"
)

const soundRange = 120

// Particle is one burst; the renderer spawns MinQuantity+rand(AddQuantity)
// particles within Pos..Pos+AddPos.
type Particle struct {
	Kind        string
	Pos         voxel.Vec3d
	AddPos      voxel.Vec3d
	MinVelocity voxel.Vec3d
	AddVelocity voxel.Vec3d
	MinQuantity int
	AddQuantity int
	Color       uint32 // ARGB
	LifeLength  float64
	Gravity     float64
	SizeEvolve  float64
	Model       string
}

type ParticleEmitter interface {
	SpawnParticles(p Particle)
}

// Sound plays at Pos, or follows PlayerID when set.
type Sound struct {
	Asset    string
	Pos      voxel.Vec3d
	PlayerID string
	Loop     bool
	Range    float64
	Volume   float64
}

type SoundPlayer interface {
	PlaySound(s Sound)
}

func ARGB(a, r, g, b int) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

var (
	dustColor  = ARGB(80, 120, 110, 100)
	chipsColor = ARGB(255, 255, 255, 255)
	steamColor = ARGB(80, 230, 230, 230)
)

type Emitter struct {
	World     voxel.BlockAccessor
	Particles ParticleEmitter
	Sounds    SoundPlayer
	Players   entity.Roster
	Rand      *rand.Rand

	// InteriorScanHeight is how many solid blocks above a player mark them as indoors.
	InteriorScanHeight int
}

func (e *Emitter) ringPoint(center voxel.Vec3i, lo, hi, lift int) voxel.Vec3i {
	dx, dz := mathx.Polar(mathx.Angle(e.Rand), mathx.IntRange(e.Rand, lo, hi))
	x, z := center.X+dx, center.Z+dz
	return voxel.Vec3i{X: x, Y: voxel.FindSurfaceY(e.World, x, z, center.Y+lift), Z: z}
}

// SpawnQuakeParticles emits the dust, rock chip and steam layers. Quantities
// scale with intensity and magnitude and are smaller for foreshocks. It returns
// the number of bursts emitted.
func (e *Emitter) SpawnQuakeParticles(center voxel.Vec3i, radius, magnitude int, intensity float64, foreshock bool) int {
	if e.Particles == nil {
		return 0
	}
	dustPer, chipsPer, steamBase := 3, 2, 3
	if foreshock {
		dustPer, chipsPer, steamBase = 1, 1, 1
	}
	emitted := 0

	for i, n := 0, int(40*intensity)+magnitude*dustPer; i < n; i++ {
		p := e.ringPoint(center, 6, max(12, radius), 8)
		e.Particles.SpawnParticles(Particle{
			Kind:        KindDust,
			Pos:         voxel.Vec3d{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.2, Z: float64(p.Z) + 0.5},
			AddPos:      voxel.Vec3d{X: 0.2, Y: 0.2, Z: 0.2},
			MinVelocity: voxel.Vec3d{X: -0.05, Y: 0.05, Z: -0.05},
			AddVelocity: voxel.Vec3d{X: 0.05, Y: 0.15, Z: 0.05},
			MinQuantity: 1,
			AddQuantity: 2,
			Color:       dustColor,
			LifeLength:  1.2,
			Gravity:     0.1,
			SizeEvolve:  -0.1,
			Model:       ModelQuad,
		})
		emitted++
	}

	for i, n := 0, int(18*intensity)+magnitude*chipsPer; i < n; i++ {
		p := e.ringPoint(center, 4, max(10, radius/2), 6)
		e.Particles.SpawnParticles(Particle{
			Kind:        KindChips,
			Pos:         voxel.Vec3d{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.6, Z: float64(p.Z) + 0.5},
			MinVelocity: voxel.Vec3d{X: -0.15, Y: 0.25, Z: -0.15},
			AddVelocity: voxel.Vec3d{X: 0.15, Y: 0.45, Z: 0.15},
			MinQuantity: 1,
			AddQuantity: 1,
			Color:       chipsColor,
			LifeLength:  0.9,
			Gravity:     0.2,
			Model:       ModelCube,
		})
		emitted++
	}

	for i, n := 0, steamBase+magnitude/3; i < n; i++ {
		p := e.ringPoint(center, 6, max(10, radius), 8)
		e.Particles.SpawnParticles(Particle{
			Kind:        KindSteam,
			Pos:         voxel.Vec3d{X: float64(p.X) + 0.5, Y: float64(p.Y) + 0.1, Z: float64(p.Z) + 0.5},
			AddPos:      voxel.Vec3d{X: 0.4, Y: 0.4, Z: 0.4},
			MinVelocity: voxel.Vec3d{Y: 0.05},
			AddVelocity: voxel.Vec3d{Y: 0.15},
			MinQuantity: 3,
			AddQuantity: 6,
			Color:       steamColor,
			LifeLength:  2.6,
			Gravity:     -0.01,
			Model:       ModelQuad,
		})
		emitted++
	}
	return emitted
}

// PlayExteriorSounds rings the quake with ambience on the half-radius circle,
// plus a heavier layer on the three-quarter circle from magnitude 7.
func (e *Emitter) PlayExteriorSounds(center voxel.Vec3i, radius, magnitude int) int {
	if e.Sounds == nil {
		return 0
	}
	played := 0
	ring := func(asset string, points, dist int, volume float64) {
		for i := 0; i < points; i++ {
			dx, dz := mathx.Polar(float64(i)/float64(points)*mathx.TwoPi, dist)
			e.Sounds.PlaySound(Sound{
				Asset:  asset,
				Pos:    voxel.Vec3d{X: float64(center.X + dx), Y: float64(center.Y), Z: float64(center.Z + dz)},
				Range:  soundRange,
				Volume: volume,
			})
			played++
		}
	}
	points := max(4, radius/16)
	ring(SoundExterior, points, radius/2, 1)
	if magnitude >= 7 {
		ring(SoundLarge, max(1, points/3), radius*3/4, 0.8)
	}
	return played
}

// IsLikelyInterior reports whether the height cells above pos are all solid.
func IsLikelyInterior(ba voxel.BlockAccessor, pos voxel.Vec3i, height int) bool {
	for i := 1; i <= max(1, height); i++ {
		if ba.GetBlockID(pos.Add(0, i, 0)) == voxel.AirID {
			return false
		}
	}
	return true
}

// PlayInteriorLoops attaches a looping rumble to every indoor player within radius.
func (e *Emitter) PlayInteriorLoops(center voxel.Vec3i, radius int) int {
	if e.Sounds == nil || e.Players == nil {
		return 0
	}
	played := 0
	for _, p := range e.Players.OnlinePlayers() {
		if p.Pos.DistanceTo(center) > float64(radius) {
			continue
		}
		if !IsLikelyInterior(e.World, p.Pos, e.InteriorScanHeight) {
			continue
		}
		e.Sounds.PlaySound(Sound{
			Asset:    SoundInterior,
			Pos:      p.Pos.Center(),
			PlayerID: p.ID,
			Loop:     true,
			Range:    soundRange,
			Volume:   0.8,
		})
		played++
	}
	return played
}

// PlayForeshock plays the one-shot rumble at the start of a foreshock sequence.
func (e *Emitter) PlayForeshock(center voxel.Vec3i, magnitude int) {
	if e.Sounds == nil {
		return
	}
	e.Sounds.PlaySound(Sound{
		Asset:  SoundForeshock,
		Pos:    voxel.Vec3d{X: float64(center.X), Y: float64(center.Y), Z: float64(center.Z)},
		Range:  soundRange,
		Volume: mathx.ClampFloat(float64(magnitude)/9, 0.05, 1),
	})
}
