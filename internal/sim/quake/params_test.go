package quake

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quakecraft.ai/internal/sim/voxel"
)

func TestRadiusDepthMonotonic(t *testing.T) {
	prevR, prevD := 0, 0
	for m := 1; m <= 9; m++ {
		r, d := Radius(m), Depth(m)
		assert.True(t, r >= 16 && r <= 120, "radius %d at m=%d", r, m)
		assert.True(t, d >= 8 && d <= 60, "depth %d at m=%d", d, m)
		assert.GreaterOrEqual(t, r, prevR)
		assert.GreaterOrEqual(t, d, prevD)
		prevR, prevD = r, d
	}
	assert.Equal(t, 20, Radius(1))
	assert.Equal(t, 84, Radius(9))
	assert.Equal(t, 12, Depth(1))
	assert.Equal(t, 60, Depth(9))
}

func TestSteps(t *testing.T) {
	assert.Equal(t, 62, Steps(9, 250*time.Millisecond))
	assert.Equal(t, 14, Steps(1, 250*time.Millisecond))
	assert.Equal(t, 16, Steps(9, time.Second))
	assert.Equal(t, 1, Steps(9, 0))
}

func TestFaultPlans(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	c := voxel.Vec3i{X: 5, Y: 90, Z: -5}

	plans := NewFaultPlans(r, c, 9)
	require.Len(t, plans, 5)
	for i, p := range plans {
		assert.Equal(t, []int{2, 3}[i%2], p.Width)
		assert.InDelta(t, 0.17, p.Jitter, 1e-9)
		assert.Equal(t, 84, p.Radius)
		assert.Equal(t, c, p.Center)
	}

	assert.Len(t, NewFaultPlans(r, c, 1), 1)
	assert.Equal(t, 1, FaultWidth(1, 0))
	assert.Equal(t, 2, FaultWidth(6, 1))
	assert.Equal(t, 6, FaultCount(12))
}

func TestAnnulusCoversRadiusWithoutGaps(t *testing.T) {
	for _, tick := range []time.Duration{250 * time.Millisecond, 50 * time.Millisecond, 10 * time.Millisecond} {
		for m := 1; m <= 9; m++ {
			radius := Radius(m)
			n := Steps(m, tick)
			covered := 0
			for step := 0; step < n; step++ {
				r0, r1 := Annulus(radius, step, n)
				require.Equal(t, covered, r0, "gap before step %d at m=%d tick=%s", step, m, tick)
				require.GreaterOrEqual(t, r1, r0)
				if step < n-1 {
					require.Less(t, r1, radius, "full radius reached early at step %d m=%d tick=%s", step, m, tick)
				}
				covered = r1
			}
			assert.Equal(t, radius, covered, "m=%d tick=%s", m, tick)
		}
	}
}

func TestAnnulusForcesProgress(t *testing.T) {
	r0, r1 := Annulus(3, 0, 10)
	assert.Equal(t, 0, r0)
	assert.Equal(t, 1, r1)

	// m=1 at a 50ms tick: 70 steps over a radius of 20.
	radius, n := Radius(1), Steps(1, 50*time.Millisecond)
	require.Greater(t, n, 2*radius)
	for step := 0; step < radius-1; step++ {
		r0, r1 := Annulus(radius, step, n)
		assert.Equal(t, [2]int{step, step + 1}, [2]int{r0, r1}, "step %d", step)
	}
	r0, r1 = Annulus(radius, n-2, n)
	assert.Equal(t, r0, r1, "tail steps carve nothing")
	assert.Equal(t, radius-1, r1)
	r0, r1 = Annulus(radius, n-1, n)
	assert.Equal(t, [2]int{radius - 1, radius}, [2]int{r0, r1})
}
