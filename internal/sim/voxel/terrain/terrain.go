// Package terrain generates rolling voxel terrain for the in-memory grid.
package terrain

import (
	"github.com/aquilax/go-perlin"

	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/mathx"
)

type Params struct {
	Seed       int64
	BaseHeight int
	Amplitude  float64
	Scale      float64 // noise frequency per block
	SeaLevel   int

	RockRegionSize int
	TreePermille   int
	OrePermille    int
	GrassPermille  int
}

func DefaultParams(seed int64) Params {
	return Params{
		Seed:           seed,
		BaseHeight:     110,
		Amplitude:      14,
		Scale:          1.0 / 96.0,
		SeaLevel:       110,
		RockRegionSize: 64,
		TreePermille:   12,
		OrePermille:    6,
		GrassPermille:  300,
	}
}

// Generator implements voxel.ColumnGenerator.
type Generator struct {
	p      Params
	noise  *perlin.Perlin
	detail *perlin.Perlin

	water, soil, grass, snow, log, leaves uint16
	rock, sand                            map[string]uint16
	ores                                  map[string][]uint16
}

var oreChoices = []string{"copper", "tin", "iron", "gold", "silver", "bituminouscoal"}

func New(p Params, cats *catalogs.Catalogs) *Generator {
	g := &Generator{
		p:      p,
		noise:  perlin.NewPerlin(2, 2, 3, p.Seed),
		detail: perlin.NewPerlin(2, 2, 2, p.Seed+1),
		water:  cats.MustBlockID("water-still-7"),
		soil:   cats.MustBlockID("soil-medium-normal"),
		grass:  cats.MustBlockID("tallgrass-medium-free"),
		snow:   cats.MustBlockID("snowblock"),
		log:    cats.MustBlockID("log-grown-oak-ud"),
		leaves: cats.MustBlockID("leaves-grown-oak"),
		rock:   map[string]uint16{},
		sand:   map[string]uint16{},
		ores:   map[string][]uint16{},
	}
	for _, r := range catalogs.Rocks {
		g.rock[r] = cats.MustBlockID("rock-" + r)
		g.sand[r] = cats.MustBlockID("sand-" + r)
		for _, o := range oreChoices {
			g.ores[r] = append(g.ores[r], cats.MustBlockID("ore-"+o+"-"+r))
		}
	}
	return g
}

// SurfaceHeight is the y of the topmost terrain block of a column.
func (g *Generator) SurfaceHeight(x, z int) int {
	n := g.noise.Noise2D(float64(x)*g.p.Scale, float64(z)*g.p.Scale)
	d := g.detail.Noise2D(float64(x)*g.p.Scale*4, float64(z)*g.p.Scale*4)
	return g.p.BaseHeight + int(n*g.p.Amplitude+d*3)
}

func (g *Generator) RockAt(x, z int) string {
	size := g.p.RockRegionSize
	if size <= 0 {
		size = 1
	}
	h := mathx.Hash2(g.p.Seed, mathx.FloorDiv(x, size), mathx.FloorDiv(z, size))
	return catalogs.Rocks[h%uint64(len(catalogs.Rocks))]
}

func (g *Generator) GenerateColumn(x, z int, col []uint16) {
	height := len(col)
	top := mathx.ClampInt(g.SurfaceHeight(x, z), 4, height-12)
	rock := g.RockAt(x, z)
	beach := top <= g.p.SeaLevel+1

	for y := 0; y <= top; y++ {
		switch {
		case y > top-3 && beach:
			col[y] = g.sand[rock]
		case y > top-3:
			col[y] = g.soil
		default:
			col[y] = g.rock[rock]
			if h := mathx.Hash3(g.p.Seed, x, y, z); int(h%1000) < g.p.OrePermille {
				ores := g.ores[rock]
				col[y] = ores[(h>>20)%uint64(len(ores))]
			}
		}
	}
	for y := top + 1; y <= g.p.SeaLevel && y < height; y++ {
		col[y] = g.water
	}
	if beach {
		return
	}
	if top > g.p.BaseHeight+int(g.p.Amplitude*0.8) {
		col[top+1] = g.snow
		return
	}

	h := mathx.Hash2(g.p.Seed^0x7ee, x, z)
	switch {
	case int(h%1000) < g.p.TreePermille:
		trunk := 4 + int((h>>16)%3)
		for i := 1; i <= trunk; i++ {
			col[top+i] = g.log
		}
		col[top+trunk+1] = g.leaves
		col[top+trunk+2] = g.leaves
	case int((h>>32)%1000) < g.p.GrassPermille:
		col[top+1] = g.grass
	}
}
