// Package loot scatters drops from the quake loot tables onto the terrain surface.
package loot

import (
	"math/rand/v2"
	"strings"

	"quakecraft.ai/internal/metrics"
	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/voxel"
)

const DefaultRock = "granite"

type Resolver interface {
	Resolve(code string) (catalogs.Collectible, bool)
}

// Spawner drops a single collectible into the world as an item entity.
type Spawner interface {
	SpawnItem(c catalogs.Collectible, pos, vel voxel.Vec3d)
}

// NearbyRock returns the rock variant of the first block from 2 above to 8
// below pos that has one.
func NearbyRock(ba voxel.BlockAccessor, pos voxel.Vec3i) string {
	for dy := 2; dy >= -8; dy-- {
		if rock := ba.GetBlock(pos.Add(0, dy, 0)).VariantTag("rock"); rock != "" {
			return rock
		}
	}
	return DefaultRock
}

func ExpandRock(codes []string, rock string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = strings.ReplaceAll(c, RockPlaceholder, rock)
	}
	return out
}

// RandomSurfaceAround picks a surface cell at a random distance in
// [6, max(12, radius-2)) from center and returns its block centre.
func RandomSurfaceAround(ba voxel.BlockAccessor, r *rand.Rand, center voxel.Vec3i, radius int) voxel.Vec3d {
	ang := mathx.Angle(r)
	dist := mathx.IntRange(r, 6, max(12, radius-2))
	dx, dz := mathx.Polar(ang, dist)
	x, z := center.X+dx, center.Z+dz
	y := voxel.FindSurfaceY(ba, x, z, center.Y+16)
	return voxel.Vec3i{X: x, Y: y, Z: z}.Center()
}

type Emitter struct {
	World    voxel.BlockAccessor
	Resolver Resolver
	Spawner  Spawner
	Rand     *rand.Rand
	Tables   map[string][]string
}

type Result struct {
	Attempts int
	Spawned  int
}

// SpawnFromTable draws total codes with replacement from the table, with the
// rock placeholder filled from the terrain under center. Codes that do not
// resolve are skipped; a missing or empty table spawns nothing.
func (e *Emitter) SpawnFromTable(table string, center voxel.Vec3i, radius, total int) Result {
	var res Result
	codes := e.Tables[table]
	if len(codes) == 0 || total <= 0 {
		return res
	}
	expanded := ExpandRock(codes, NearbyRock(e.World, center))

	for i := 0; i < total; i++ {
		res.Attempts++
		c, ok := e.Resolver.Resolve(mathx.Pick(e.Rand, expanded))
		if !ok {
			continue
		}
		pos := RandomSurfaceAround(e.World, e.Rand, center, max(12, radius))
		vel := voxel.Vec3d{
			X: (e.Rand.Float64() - 0.5) * 0.2,
			Y: 0.25 + e.Rand.Float64()*0.15,
			Z: (e.Rand.Float64() - 0.5) * 0.2,
		}
		if e.Spawner != nil {
			e.Spawner.SpawnItem(c, pos, vel)
		}
		res.Spawned++
	}
	metrics.RecordLoot(table, res.Spawned)
	return res
}
