package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quakecraft.ai/internal/sim/voxel"
)

// DefaultDomain is the asset domain assumed when a code carries no "domain:" prefix.
const DefaultDomain = "game"

type Catalogs struct {
	Blocks BlockCatalog
	Items  ItemCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string

	types []voxel.BlockType
}

type BlockDef struct {
	ID       string            `json:"id"`
	Material string            `json:"material"`
	Variant  map[string]string `json:"variant,omitempty"`
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
}

type ItemDef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "MATERIAL","GEM","MECH","STONE"
}

type CollectibleKind int

const (
	KindItem CollectibleKind = iota + 1
	KindBlock
)

// Collectible is anything that can be spawned as a dropped stack.
type Collectible struct {
	Code    string
	Kind    CollectibleKind
	BlockID uint16
}

func Load(configDir string) (*Catalogs, error) {
	var blocks []BlockDef
	if err := readJSON(filepath.Join(configDir, "blocks.json"), &blocks); err != nil {
		return nil, err
	}
	var items []ItemDef
	if err := readJSON(filepath.Join(configDir, "items.json"), &items); err != nil {
		return nil, err
	}
	return Build(blocks, items)
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// Build indexes block and item definitions. Block palette id 0 is always "air".
func Build(blocks []BlockDef, items []ItemDef) (*Catalogs, error) {
	var c Catalogs

	c.Blocks.Defs = map[string]BlockDef{}
	for _, d := range blocks {
		d.ID = NormalizeCode(d.ID)
		if d.ID == "" {
			return nil, fmt.Errorf("blocks: empty id")
		}
		if _, ok := voxel.ParseMaterial(d.Material); !ok {
			return nil, fmt.Errorf("blocks: %s: unknown material %q", d.ID, d.Material)
		}
		c.Blocks.Defs[d.ID] = d
	}
	if _, ok := c.Blocks.Defs["air"]; !ok {
		c.Blocks.Defs["air"] = BlockDef{ID: "air", Material: "air"}
	}
	ids := sortedKeys(c.Blocks.Defs)
	ids = append([]string{"air"}, filterOut(ids, "air")...)
	if len(ids) > 1<<16 {
		return nil, fmt.Errorf("blocks: palette too large (%d)", len(ids))
	}
	c.Blocks.Palette = ids
	c.Blocks.Index = make(map[string]uint16, len(ids))
	c.Blocks.types = make([]voxel.BlockType, len(ids))
	for i, id := range ids {
		d := c.Blocks.Defs[id]
		m, _ := voxel.ParseMaterial(d.Material)
		c.Blocks.Index[id] = uint16(i)
		c.Blocks.types[i] = voxel.BlockType{ID: uint16(i), Code: id, Material: m, Variant: d.Variant}
	}
	c.Blocks.PaletteDigest = digestOf(ids)

	c.Items.Defs = map[string]ItemDef{}
	for _, d := range items {
		d.ID = NormalizeCode(d.ID)
		if d.ID == "" {
			return nil, fmt.Errorf("items: empty id")
		}
		c.Items.Defs[d.ID] = d
	}
	itemIDs := sortedKeys(c.Items.Defs)
	c.Items.Palette = itemIDs
	c.Items.Index = make(map[string]uint16, len(itemIDs))
	for i, id := range itemIDs {
		c.Items.Index[id] = uint16(i)
	}
	c.Items.PaletteDigest = digestOf(itemIDs)
	return &c, nil
}

// NormalizeCode strips the default asset domain ("game:rock-granite" -> "rock-granite").
func NormalizeCode(code string) string {
	code = strings.TrimSpace(strings.ToLower(code))
	if dom, path, ok := strings.Cut(code, ":"); ok {
		if dom == DefaultDomain || dom == "" {
			return path
		}
		return code
	}
	return code
}

func (c *Catalogs) BlockByID(id uint16) voxel.BlockType {
	if int(id) >= len(c.Blocks.types) {
		return voxel.BlockType{ID: id, Material: voxel.MaterialOther}
	}
	return c.Blocks.types[id]
}

func (c *Catalogs) BlockByCode(code string) (voxel.BlockType, bool) {
	id, ok := c.Blocks.Index[NormalizeCode(code)]
	if !ok {
		return voxel.BlockType{}, false
	}
	return c.Blocks.types[id], true
}

// MustBlockID is for palette entries that the default catalog always defines.
func (c *Catalogs) MustBlockID(code string) uint16 {
	b, ok := c.BlockByCode(code)
	if !ok {
		panic("catalogs: missing block " + code)
	}
	return b.ID
}

// Resolve looks the code up as an item first, then as a block.
func (c *Catalogs) Resolve(code string) (Collectible, bool) {
	code = NormalizeCode(code)
	if code == "" {
		return Collectible{}, false
	}
	if _, ok := c.Items.Defs[code]; ok {
		return Collectible{Code: code, Kind: KindItem}, true
	}
	if b, ok := c.BlockByCode(code); ok && !b.IsAir() {
		return Collectible{Code: code, Kind: KindBlock, BlockID: b.ID}, true
	}
	return Collectible{}, false
}

func sortedKeys[T any](m map[string]T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func filterOut(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func digestOf(ids []string) string {
	b, _ := json.Marshal(ids)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
