package quake

import (
	"math/rand/v2"

	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

// IsCarvable reports whether quake carving removes blocks of this type.
func IsCarvable(b voxel.BlockType) bool {
	switch b.Material {
	case voxel.MaterialStone, voxel.MaterialGravel, voxel.MaterialOre,
		voxel.MaterialSoil, voxel.MaterialSand, voxel.MaterialLiquid:
		return !b.IsAir()
	}
	return false
}

func carveAt(ba voxel.BlockAccessor, p voxel.Vec3i) bool {
	if !IsCarvable(ba.GetBlock(p)) {
		return false
	}
	ba.SetBlock(voxel.AirID, p)
	return true
}

// CarveStep removes carvable blocks along the plan for the annulus of step out
// of n. Each radial sample gets its own angle jitter; the fault is a disk of
// the plan's width swept through the vertical window. Returns the block count removed.
func CarveStep(ba voxel.BlockAccessor, r *rand.Rand, cfg tuning.Config, p FaultPlan, step, n int) int {
	r0, r1 := Annulus(p.Radius, step, n)
	bottomY, topY := p.Window(ba, cfg)
	w := p.Width
	carved := 0
	for dist := r0; dist < r1; dist++ {
		ang := p.Angle + (r.Float64()-0.5)*p.Jitter
		ox, oz := mathx.Polar(ang, dist)
		x, z := p.Center.X+ox, p.Center.Z+oz
		for dx := -w; dx <= w; dx++ {
			for dz := -w; dz <= w; dz++ {
				if dx*dx+dz*dz > w*w {
					continue
				}
				for y := topY; y >= bottomY; y-- {
					if carveAt(ba, voxel.Vec3i{X: x + dx, Y: y, Z: z + dz}) {
						carved++
					}
				}
			}
		}
	}
	return carved
}

// HintCut scratches shallow fissures out from the center during a foreshock.
func HintCut(ba voxel.BlockAccessor, r *rand.Rand, center voxel.Vec3i, magnitude int) int {
	rays := mathx.ClampInt(2+magnitude/3, 2, 6)
	carved := 0
	for i := 0; i < rays; i++ {
		ang := mathx.Angle(r)
		length := mathx.IntRange(r, 12, 18)
		depth := mathx.IntRange(r, 1, 3)
		for t := 0; t < length; t++ {
			ox, oz := mathx.Polar(ang, t)
			for d := 0; d < depth; d++ {
				if carveAt(ba, voxel.Vec3i{X: center.X + ox, Y: center.Y - d, Z: center.Z + oz}) {
					carved++
				}
			}
		}
	}
	return carved
}
