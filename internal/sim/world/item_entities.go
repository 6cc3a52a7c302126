package world

import (
	"fmt"

	"quakecraft.ai/internal/sim/catalogs"
	"quakecraft.ai/internal/sim/voxel"
)

// ItemEntity is a dropped item: loot or gravel burst debris.
type ItemEntity struct {
	EntityID string
	Item     catalogs.Collectible
	Pos      voxel.Vec3d
	Vel      voxel.Vec3d
}

func (w *World) SpawnItem(c catalogs.Collectible, pos, vel voxel.Vec3d) {
	w.nextItem++
	w.items = append(w.items, ItemEntity{
		EntityID: fmt.Sprintf("IT%06d", w.nextItem),
		Item:     c,
		Pos:      pos,
		Vel:      vel,
	})
	if over := len(w.items) - w.cfg.MaxItems; over > 0 {
		w.items = append(w.items[:0], w.items[over:]...)
		w.evicted += over
	}
}
