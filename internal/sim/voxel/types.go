// Package voxel holds the block-level types shared by the simulation and the
// world accessor it mutates.
package voxel

import (
	"math"
	"strings"
)

type Vec3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (v Vec3i) Add(dx, dy, dz int) Vec3i {
	return Vec3i{X: v.X + dx, Y: v.Y + dy, Z: v.Z + dz}
}

func (v Vec3i) Down() Vec3i { return v.Add(0, -1, 0) }

func (v Vec3i) DistanceTo(o Vec3i) float64 {
	dx := float64(v.X - o.X)
	dy := float64(v.Y - o.Y)
	dz := float64(v.Z - o.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Center returns the middle of the block cell.
func (v Vec3i) Center() Vec3d {
	return Vec3d{X: float64(v.X) + 0.5, Y: float64(v.Y) + 0.5, Z: float64(v.Z) + 0.5}
}

type Vec3d struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Material uint8

const (
	MaterialAir Material = iota
	MaterialStone
	MaterialGravel
	MaterialOre
	MaterialSoil
	MaterialSand
	MaterialLiquid
	MaterialPlant
	MaterialLeaves
	MaterialWood
	MaterialSnow
	MaterialOther
)

var materialNames = []string{"air", "stone", "gravel", "ore", "soil", "sand", "liquid", "plant", "leaves", "wood", "snow", "other"}

func (m Material) String() string {
	if int(m) < len(materialNames) {
		return materialNames[m]
	}
	return "other"
}

func ParseMaterial(s string) (Material, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range materialNames {
		if n == s {
			return Material(i), true
		}
	}
	return MaterialOther, false
}

// AirID is the reserved block id of empty space.
const AirID uint16 = 0

type BlockType struct {
	ID       uint16
	Code     string
	Material Material
	Variant  map[string]string
}

func (b BlockType) IsAir() bool { return b.ID == AirID }

// VariantTag returns the named variant value, "" when absent.
func (b BlockType) VariantTag(name string) string {
	if b.Variant == nil {
		return ""
	}
	return b.Variant[name]
}

// BlockAccessor is the world storage the simulation reads and mutates. All
// calls happen on the scheduler goroutine.
type BlockAccessor interface {
	GetBlock(p Vec3i) BlockType
	GetBlockID(p Vec3i) uint16
	SetBlock(id uint16, p Vec3i)
	MapSizeY() int
	SeaLevel() int
}

// Palette resolves block ids to their definitions.
type Palette interface {
	BlockByID(id uint16) BlockType
}
