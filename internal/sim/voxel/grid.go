package voxel

import (
	"sort"

	"quakecraft.ai/internal/sim/mathx"
)

const ChunkSize = 16

type ChunkKey struct {
	CX int
	CZ int
}

type Chunk struct {
	CX, CZ int
	Height int
	Blocks []uint16 // len = 16*16*Height
}

func (c *Chunk) index(x, y, z int) int {
	// x fastest, then z, then y
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	c.Blocks[c.index(x, y, z)] = b
}

// ColumnGenerator fills one world column (index = y) when its chunk is first touched.
type ColumnGenerator interface {
	GenerateColumn(x, z int, col []uint16)
}

type GridConfig struct {
	Height    int
	SeaLevel  int
	BoundaryR int // blocks; 0 = unbounded
}

// Grid is a chunked in-memory voxel store. It is accessed only from the
// scheduler goroutine.
type Grid struct {
	cfg     GridConfig
	palette Palette
	gen     ColumnGenerator

	chunks map[ChunkKey]*Chunk
	writes uint64
}

func NewGrid(cfg GridConfig, palette Palette, gen ColumnGenerator) *Grid {
	if cfg.Height <= 0 {
		cfg.Height = 256
	}
	return &Grid{
		cfg:     cfg,
		palette: palette,
		gen:     gen,
		chunks:  map[ChunkKey]*Chunk{},
	}
}

func (g *Grid) MapSizeY() int { return g.cfg.Height }
func (g *Grid) SeaLevel() int { return g.cfg.SeaLevel }

// Writes counts block changes applied since creation.
func (g *Grid) Writes() uint64 { return g.writes }

func (g *Grid) inBounds(p Vec3i) bool {
	if p.Y < 0 || p.Y >= g.cfg.Height {
		return false
	}
	if r := g.cfg.BoundaryR; r > 0 {
		if p.X < -r || p.X > r || p.Z < -r || p.Z > r {
			return false
		}
	}
	return true
}

func (g *Grid) GetBlockID(p Vec3i) uint16 {
	if !g.inBounds(p) {
		return AirID
	}
	ch := g.chunkAt(p)
	return ch.Get(mathx.Mod(p.X, ChunkSize), p.Y, mathx.Mod(p.Z, ChunkSize))
}

func (g *Grid) GetBlock(p Vec3i) BlockType {
	id := g.GetBlockID(p)
	if g.palette == nil {
		return BlockType{ID: id}
	}
	return g.palette.BlockByID(id)
}

func (g *Grid) SetBlock(id uint16, p Vec3i) {
	if !g.inBounds(p) {
		return
	}
	ch := g.chunkAt(p)
	lx, lz := mathx.Mod(p.X, ChunkSize), mathx.Mod(p.Z, ChunkSize)
	if ch.Get(lx, p.Y, lz) == id {
		return
	}
	ch.Set(lx, p.Y, lz, id)
	g.writes++
}

func (g *Grid) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(g.chunks))
	for k := range g.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func (g *Grid) chunkAt(p Vec3i) *Chunk {
	cx := mathx.FloorDiv(p.X, ChunkSize)
	cz := mathx.FloorDiv(p.Z, ChunkSize)
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := g.chunks[k]; ok {
		return ch
	}
	ch := &Chunk{
		CX:     cx,
		CZ:     cz,
		Height: g.cfg.Height,
		Blocks: make([]uint16, ChunkSize*ChunkSize*g.cfg.Height),
	}
	if g.gen != nil {
		col := make([]uint16, g.cfg.Height)
		for lz := 0; lz < ChunkSize; lz++ {
			for lx := 0; lx < ChunkSize; lx++ {
				for i := range col {
					col[i] = AirID
				}
				g.gen.GenerateColumn(cx*ChunkSize+lx, cz*ChunkSize+lz, col)
				for y, b := range col {
					ch.Blocks[ch.index(lx, y, lz)] = b
				}
			}
		}
	}
	g.chunks[k] = ch
	return ch
}
