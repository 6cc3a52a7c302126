// Package entity holds the player view the simulation needs from the host.
package entity

import "quakecraft.ai/internal/sim/voxel"

type Player struct {
	ID   string
	Name string
	Pos  voxel.Vec3i
}

// Roster enumerates online players in a stable order.
type Roster interface {
	OnlinePlayers() []Player
}
