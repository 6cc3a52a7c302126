package loot

// Table keys.
const (
	PreshockWeak   = "preshock_weak"
	PreshockMedium = "preshock_medium"
	PreshockStrong = "preshock_strong"
	QuakeWeak      = "quake_weak"
	QuakeMedium    = "quake_medium"
	QuakeStrong    = "quake_strong"
)

// RockPlaceholder is replaced by the rock type found under the spawn center.
const RockPlaceholder = "{rock}"

// DefaultTables lists the drop pools. Entries may repeat across tables; within a
// table every code is drawn with equal weight.
func DefaultTables() map[string][]string {
	return map[string][]string{
		PreshockWeak: {
			"game:coal-brown", "game:coal-black", "game:clay-red", "game:clay-blue", "game:clay-fire",
			"game:clear-quartz", "game:ore-nativecopper-{rock}", "game:nugget-nativecopper", "game:amethyst",
			"game:flint", "game:gear-rusty", "game:gem-olivine_peridot-rough", "game:nugget-bismuthinite",
			"game:nugget-cassiterite", "game:nugget-galena", "game:nugget-hematite", "game:nugget-malachite",
			"game:ore-alum-{rock}", "game:ore-anthracite-{rock}", "game:ore-bituminouscoal-{rock}",
			"game:ore-borax-{rock}", "game:ore-olivine-{rock}", "game:stone-{rock}", "game:salt",
			"game:saltpeter", "game:rosequartz", "game:smokyquartz", "game:potash",
		},
		PreshockMedium: preshockRich(),
		PreshockStrong: preshockRich(),
		QuakeWeak: {
			"game:ore-copper-{rock}", "game:ore-halite-{rock}", "game:clay-fire", "game:ore-lead-{rock}",
			"game:clear-quartz", "game:flint", "game:gear-rusty", "game:gem-olivine_peridot-rough",
			"game:nugget-bismuthinite", "game:nugget-cassiterite", "game:nugget-galena", "game:nugget-hematite",
			"game:nugget-nativecopper", "game:ore-anthracite-{rock}", "game:ore-bituminouscoal-{rock}",
			"game:ore-borax-{rock}", "game:salt", "game:saltpeter", "game:rosequartz", "game:smokyquartz",
			"game:potash",
		},
		QuakeMedium: {
			"game:ore-tin-{rock}", "game:ore-silver-{rock}", "game:ore-gold-{rock}", "game:ore-borax",
			"game:ore-cinnabar", "game:ore-alum", "game:amethyst", "game:clay-fire", "game:flint",
			"game:gear-rusty", "game:gem-emerald-rough", "game:gem-olivine_peridot-rough",
			"game:nugget-nativesilver", "game:nugget-nativegold", "game:ore-borax-{rock}", "game:salt",
			"game:saltpeter", "game:powder-sulfur", "game:powder-sylvite", "game:powder-alum",
			"game:powder-borax", "game:powder-cinnabar", "game:powder-flint", "game:powder-lapislazuli",
			"game:potash",
		},
		QuakeStrong: {
			"game:ore-iron-{rock}", "game:ore-hematite-{rock}", "game:ore-uranium-{rock}", "game:clay-fire",
			"game:ore-sulfur-{rock}", "game:ore-fluorite-{rock}", "game:ore-corundum-{rock}",
			"game:ore-lapislazuli-{rock}", "game:gear-temporal", "game:gear-rusty", "game:gem-diamond-rough",
			"game:ore-phosphorite-{rock}", "game:powder-sulfur", "game:powder-sylvite", "game:powder-cinnabar",
			"game:powder-lapislazuli", "game:potash",
		},
	}
}

func preshockRich() []string {
	return []string{
		"game:clay-fire", "game:ore-copper-{rock}", "game:ore-halite-{rock}", "game:ore-lead-{rock}",
		"game:clear-quartz", "game:ore-tin-{rock}", "game:ore-silver-{rock}", "game:ore-gold-{rock}",
		"game:flint", "game:gear-rusty", "game:gem-emerald-rough", "game:gem-olivine_peridot-rough",
		"game:nugget-chromite", "game:nugget-nativecopper", "game:nugget-nativesilver",
		"game:nugget-nativegold", "game:ore-alum-{rock}", "game:ore-borax-{rock}", "game:salt",
		"game:saltpeter", "game:potash",
	}
}

// PreshockTable picks the foreshock pool for a magnitude: weak up to 2, medium up to 5.
func PreshockTable(magnitude int) string {
	switch {
	case magnitude <= 2:
		return PreshockWeak
	case magnitude <= 5:
		return PreshockMedium
	}
	return PreshockStrong
}

func QuakeTable(magnitude int) string {
	switch {
	case magnitude <= 2:
		return QuakeWeak
	case magnitude <= 5:
		return QuakeMedium
	}
	return QuakeStrong
}
