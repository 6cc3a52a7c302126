package voxel

// FindSurfaceY scans down from fromY for the first air cell resting on a
// non-air cell. Falls back to max(2, fromY) when the column has no surface.
func FindSurfaceY(ba BlockAccessor, x, z, fromY int) int {
	y := fromY
	if top := ba.MapSizeY() - 2; y > top {
		y = top
	}
	for ; y > 1; y-- {
		if ba.GetBlockID(Vec3i{X: x, Y: y, Z: z}) == AirID && ba.GetBlockID(Vec3i{X: x, Y: y - 1, Z: z}) != AirID {
			return y
		}
	}
	if fromY < 2 {
		return 2
	}
	return fromY
}
