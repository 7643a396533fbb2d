package convert

import "github.com/wippyai/laykit/gdsii"

// isAxisAlignedRect reports whether a closed five-vertex boundary is an
// axis-aligned rectangle: four distinct corners plus the closing vertex,
// with adjacent edges alternating horizontal and vertical.
func isAxisAlignedRect(xy []gdsii.Point) bool {
	if len(xy) != 5 || xy[0] != xy[4] {
		return false
	}
	for i := 0; i < 4; i++ {
		a, b := xy[i], xy[i+1]
		horizontal := a.Y == b.Y && a.X != b.X
		vertical := a.X == b.X && a.Y != b.Y
		if !horizontal && !vertical {
			return false
		}
		// Edges must alternate orientation; a straight continuation
		// would mean a degenerate corner.
		if i > 0 {
			prevA, prevB := xy[i-1], xy[i]
			prevHorizontal := prevA.Y == prevB.Y
			if horizontal == prevHorizontal {
				return false
			}
		}
	}
	return true
}

// rectBounds returns the lower-left corner, width, and height of a
// vertex set.
func rectBounds(xy []gdsii.Point) (minX, minY int32, w, h uint64) {
	minX, minY = xy[0].X, xy[0].Y
	maxX, maxY := minX, minY
	for _, p := range xy {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return minX, minY, uint64(int64(maxX) - int64(minX)), uint64(int64(maxY) - int64(minY))
}
