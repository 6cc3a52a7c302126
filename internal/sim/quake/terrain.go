package quake

import (
	"math/rand/v2"
	"strings"

	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/loot"
	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

// BlockLookup resolves block codes against the world palette.
type BlockLookup interface {
	BlockByCode(code string) (voxel.BlockType, bool)
}

// Gravel codes tried in order for the halo burst.
var GravelCodes = []string{"game:gravel-granite", "game:gravel-bauxite"}

type materialSet map[voxel.Material]bool

func newMaterialSet(names []string) materialSet {
	s := materialSet{}
	for _, n := range names {
		if m, ok := voxel.ParseMaterial(n); ok {
			s[m] = true
		}
	}
	return s
}

func containsAny(code string, parts []string) bool {
	for _, p := range parts {
		if p != "" && strings.Contains(code, p) {
			return true
		}
	}
	return false
}

// Rules are the compiled floater and tree tables.
type Rules struct {
	vegMaterials   materialSet
	vegNames       []string
	solidMaterials materialSet

	trunkNames   []string
	canopy       materialSet
	treeMaxH     int
	treeScanUp   int
	treeSearchDY int
}

func CompileRules(cfg tuning.Config) Rules {
	return Rules{
		vegMaterials:   newMaterialSet(cfg.Floaters.VegetationMaterials),
		vegNames:       cfg.Floaters.VegetationNames,
		solidMaterials: newMaterialSet(cfg.Floaters.SolidMaterials),
		trunkNames:     cfg.Trees.TrunkNames,
		canopy:         newMaterialSet(cfg.Trees.CanopyMaterials),
		treeMaxH:       cfg.Trees.MaxHeight,
		treeScanUp:     cfg.Trees.ScanUp,
		treeSearchDY:   cfg.Trees.SurfaceSearchDY,
	}
}

// RemoveFloater decides whether an unsupported block is deleted.
func (r Rules) RemoveFloater(b voxel.BlockType) bool {
	if r.vegMaterials[b.Material] || containsAny(b.Code, r.vegNames) {
		return true
	}
	return r.solidMaterials[b.Material]
}

func (r Rules) isTrunk(b voxel.BlockType) bool { return containsAny(b.Code, r.trunkNames) }

func (r Rules) isTreePart(b voxel.BlockType) bool { return r.isTrunk(b) || r.canopy[b.Material] }

// CleanupFloaters deletes blocks resting on air inside the square of the given
// radius, within 32 blocks of the center height.
func CleanupFloaters(ba voxel.BlockAccessor, rules Rules, center voxel.Vec3i, radius int) int {
	minY := max(2, center.Y-32)
	maxY := min(ba.MapSizeY()-3, center.Y+32)
	removed := 0
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			for y := maxY; y >= minY; y-- {
				p := voxel.Vec3i{X: x, Y: y, Z: z}
				b := ba.GetBlock(p)
				if b.IsAir() || ba.GetBlockID(p.Down()) != voxel.AirID {
					continue
				}
				if rules.RemoveFloater(b) {
					ba.SetBlock(voxel.AirID, p)
					removed++
				}
			}
		}
	}
	return removed
}

// GravelHalo drops loose gravel onto exposed surface cells in a ring and spawns
// a matching item for the visual burst. It is a no-op if no gravel block exists.
func GravelHalo(ba voxel.BlockAccessor, blocks BlockLookup, spawner loot.Spawner, r *rand.Rand, center voxel.Vec3i, radius int) int {
	var gravel voxel.BlockType
	found := false
	for _, code := range GravelCodes {
		if gravel, found = blocks.BlockByCode(code); found {
			break
		}
	}
	if !found {
		return 0
	}
	item := catalogs.Collectible{Code: gravel.Code, Kind: catalogs.KindBlock, BlockID: gravel.ID}

	placed := 0
	for i, tries := 0, max(20, radius); i < tries; i++ {
		ox, oz := mathx.Polar(mathx.Angle(r), mathx.IntRange(r, max(6, radius/3), radius))
		x, z := center.X+ox, center.Z+oz
		y := voxel.FindSurfaceY(ba, x, z, center.Y+12)
		p := voxel.Vec3i{X: x, Y: y, Z: z}
		if ba.GetBlockID(p) != voxel.AirID {
			continue
		}
		ba.SetBlock(gravel.ID, p)
		placed++
		if spawner != nil {
			spawner.SpawnItem(item,
				voxel.Vec3d{X: float64(x) + 0.5, Y: float64(y) + 1.5, Z: float64(z) + 0.5},
				voxel.Vec3d{X: (r.Float64() - 0.5) * 0.6, Y: 0.6 + r.Float64()*0.3, Z: (r.Float64() - 0.5) * 0.6})
		}
	}
	return placed
}

// LowerShards sinks random disk-shaped patches of terrain by a random drop.
// Blocks never move below y=2.
func LowerShards(ba voxel.BlockAccessor, r *rand.Rand, cfg tuning.Config, center voxel.Vec3i, radius, magnitude int) int {
	patches := max(2, cfg.ShardPatchCount*magnitude/9)
	minR, maxR := mathx.MinMax(cfg.ShardPatchRadiusMin, cfg.ShardPatchRadiusMax)
	lowMin, lowMax := mathx.MinMax(cfg.ShardLowerMin, cfg.ShardLowerMax)
	topY := min(center.Y+8, ba.MapSizeY()-3)
	bottomY := max(center.Y-10, 2)

	moved := 0
	for i := 0; i < patches; i++ {
		pr := mathx.IntRange(r, minR, maxR+1)
		ox, oz := mathx.Polar(mathx.Angle(r), mathx.IntRange(r, 6, radius-pr-2))
		cx, cz := center.X+ox, center.Z+oz
		drop := mathx.IntRange(r, lowMin, lowMax+1)
		if drop <= 0 {
			continue
		}
		for dx := -pr; dx <= pr; dx++ {
			for dz := -pr; dz <= pr; dz++ {
				if dx*dx+dz*dz > pr*pr {
					continue
				}
				for y := bottomY; y <= topY; y++ {
					from := voxel.Vec3i{X: cx + dx, Y: y, Z: cz + dz}
					id := ba.GetBlockID(from)
					if id == voxel.AirID {
						continue
					}
					ba.SetBlock(voxel.AirID, from)
					ba.SetBlock(id, voxel.Vec3i{X: from.X, Y: max(2, y-drop), Z: from.Z})
					moved++
				}
			}
		}
	}
	return moved
}

// CollapseTrees deletes every tree found in the square of the given radius. The
// column's top block is searched near the center height; from there the first
// trunk block upward starts a run of trunk and canopy blocks that is removed.
func CollapseTrees(ba voxel.BlockAccessor, rules Rules, center voxel.Vec3i, radius int) int {
	ceil := ba.MapSizeY() - 1
	removed := 0
	for x := center.X - radius; x <= center.X+radius; x++ {
		for z := center.Z - radius; z <= center.Z+radius; z++ {
			y := center.Y + rules.treeSearchDY
			for ; y > center.Y-rules.treeSearchDY; y-- {
				if ba.GetBlockID(voxel.Vec3i{X: x, Y: y, Z: z}) != voxel.AirID {
					break
				}
			}
			for scanY := y; scanY < min(y+rules.treeScanUp, ceil); scanY++ {
				b := ba.GetBlock(voxel.Vec3i{X: x, Y: scanY, Z: z})
				if b.IsAir() {
					break
				}
				if !rules.isTrunk(b) {
					continue
				}
				height := 0
				for h := scanY; h < min(scanY+rules.treeMaxH, ceil); h++ {
					tb := ba.GetBlock(voxel.Vec3i{X: x, Y: h, Z: z})
					if tb.IsAir() || !rules.isTreePart(tb) {
						break
					}
					height++
				}
				for h := 0; h < height; h++ {
					ba.SetBlock(voxel.AirID, voxel.Vec3i{X: x, Y: scanY + h, Z: z})
				}
				removed += height
				break
			}
		}
	}
	return removed
}
