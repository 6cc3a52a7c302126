package catalogs

// Rocks are the rock variants the default palette is generated for.
var Rocks = []string{"granite", "andesite", "basalt", "limestone"}

var oreKinds = []string{
	"alum", "anthracite", "bituminouscoal", "borax", "cinnabar", "copper", "corundum",
	"fluorite", "gold", "halite", "hematite", "iron", "lapislazuli", "lead", "nativecopper",
	"olivine", "phosphorite", "silver", "sulfur", "tin", "uranium",
}

var defaultItems = []string{
	"amethyst", "clay-blue", "clay-fire", "clay-red", "clear-quartz", "coal-black", "coal-brown",
	"flint", "gear-rusty", "gear-temporal", "gem-diamond-rough", "gem-emerald-rough",
	"gem-olivine_peridot-rough", "nugget-bismuthinite", "nugget-cassiterite", "nugget-chromite",
	"nugget-galena", "nugget-hematite", "nugget-malachite", "nugget-nativecopper",
	"nugget-nativegold", "nugget-nativesilver", "potash", "powder-alum", "powder-borax",
	"powder-cinnabar", "powder-flint", "powder-lapislazuli", "powder-sulfur", "powder-sylvite",
	"rosequartz", "salt", "saltpeter", "smokyquartz",
}

// Default returns the built-in palette used when no catalog directory is configured.
func Default() *Catalogs {
	var blocks []BlockDef
	add := func(id, material string, variant map[string]string) {
		blocks = append(blocks, BlockDef{ID: id, Material: material, Variant: variant})
	}

	add("air", "air", nil)
	for _, rock := range Rocks {
		v := map[string]string{"rock": rock}
		add("rock-"+rock, "stone", v)
		add("cobblestone-"+rock, "stone", v)
		add("gravel-"+rock, "gravel", v)
		add("sand-"+rock, "sand", v)
		for _, ore := range oreKinds {
			add("ore-"+ore+"-"+rock, "ore", v)
		}
	}
	add("gravel-bauxite", "gravel", map[string]string{"rock": "bauxite"})
	add("soil-medium-normal", "soil", nil)
	add("soil-medium-none", "soil", nil)
	add("forestfloor-0", "soil", nil)
	add("water-still-7", "liquid", nil)
	add("snowblock", "snow", nil)
	add("tallgrass-medium-free", "plant", nil)
	add("flower-catmint-free", "plant", nil)
	add("smallberrybush-blueberry-ripe", "plant", nil)
	add("tallplant-coopersreed-land-normal-free", "plant", nil)
	add("leaves-grown-oak", "leaves", nil)
	add("leaves-grown-birch", "leaves", nil)
	add("log-grown-oak-ud", "wood", nil)
	add("log-grown-birch-ud", "wood", nil)
	add("planks-oak-ud", "wood", nil)
	add("glass-plain", "other", nil)

	var items []ItemDef
	for _, id := range defaultItems {
		items = append(items, ItemDef{ID: id, Kind: "MATERIAL"})
	}
	for _, rock := range Rocks {
		items = append(items, ItemDef{ID: "stone-" + rock, Kind: "STONE"})
	}

	c, err := Build(blocks, items)
	if err != nil {
		panic(err)
	}
	return c
}
