package quake

import (
	"math"
	"math/rand/v2"
	"time"

	"quakecraft.ai/internal/sim/mathx"
	"quakecraft.ai/internal/sim/tuning"
	"quakecraft.ai/internal/sim/voxel"
)

// Radius is the horizontal reach of a main shock.
func Radius(magnitude int) int { return mathx.ClampInt(12+8*magnitude, 16, 120) }

// Depth is how far below the center a fault may cut.
func Depth(magnitude int) int { return mathx.ClampInt(6+6*magnitude, 8, 60) }

// Duration of the main shock in seconds.
func Duration(magnitude int) float64 { return 2 + 1.5*float64(magnitude) }

// Steps is the number of carving ticks for a main shock.
func Steps(magnitude int, tick time.Duration) int {
	sec := tick.Seconds()
	if sec <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(Duration(magnitude)/sec)))
}

func FaultCount(magnitude int) int { return mathx.ClampInt(1+magnitude/2, 1, 6) }

// FaultWidth alternates between a base width and one wider; strong quakes start wider.
func FaultWidth(magnitude, i int) int {
	base := 1
	if magnitude >= 7 {
		base = 2
	}
	return mathx.ClampInt(base+i%2, 1, 4)
}

func Jitter(magnitude int) float64 { return 0.08 + 0.01*float64(magnitude) }

// FaultPlan is one radial carving line of a quake.
type FaultPlan struct {
	Center    voxel.Vec3i
	Angle     float64
	Radius    int
	Depth     int
	Width     int
	Jitter    float64
	Magnitude int
}

func NewFaultPlans(r *rand.Rand, center voxel.Vec3i, magnitude int) []FaultPlan {
	n := FaultCount(magnitude)
	plans := make([]FaultPlan, 0, n)
	for i := 0; i < n; i++ {
		plans = append(plans, FaultPlan{
			Center:    center,
			Angle:     mathx.Angle(r),
			Radius:    Radius(magnitude),
			Depth:     Depth(magnitude),
			Width:     FaultWidth(magnitude, i),
			Jitter:    Jitter(magnitude),
			Magnitude: magnitude,
		})
	}
	return plans
}

// Annulus returns the radii [r0, r1) carved at step of n. Consecutive steps
// tile [0, radius) and only the last step reaches radius. Each step advances
// at least one block until radius-1; with more steps than blocks the tail
// steps are empty until the final one.
func Annulus(radius, step, n int) (int, int) {
	return carveFront(radius, step, n), carveFront(radius, step+1, n)
}

func carveFront(radius, k, n int) int {
	switch {
	case k <= 0 || radius <= 0:
		return 0
	case k >= n:
		return radius
	}
	r := int(math.Round(float64(radius) * float64(k) / float64(n)))
	return min(max(r, k), radius-1)
}

// Window is the inclusive vertical range a fault carves through. Quakes at or
// above DepthClampBelowMag may cut down to y=2; weaker ones stop a fixed
// offset below sea level.
func (p FaultPlan) Window(ba voxel.BlockAccessor, cfg tuning.Config) (bottomY, topY int) {
	topY = min(p.Center.Y+10, ba.MapSizeY()-3)
	var bottom int
	if p.Magnitude >= cfg.DepthClampBelowMag {
		bottom = max(2, p.Center.Y-p.Depth)
	} else {
		bottom = max(ba.SeaLevel()-cfg.DepthClampToSeaOffset, p.Center.Y-p.Depth)
	}
	return mathx.ClampInt(bottom, 2, topY-2), topY
}
