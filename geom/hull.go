package geom

import (
	"slices"

	"github.com/jakecoffman/cp"
)

// ConvexHull returns the convex hull of pts in counter-clockwise order using
// the monotone chain algorithm. Duplicate and collinear points are dropped, so
// the result may hold fewer than three vertices.
func ConvexHull(pts ...cp.Vector) []cp.Vector {
	sorted := make([]cp.Vector, len(pts))
	copy(sorted, pts)
	slices.SortFunc(sorted, func(a, b cp.Vector) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		case a.Y < b.Y:
			return -1
		case a.Y > b.Y:
			return 1
		}
		return 0
	})
	sorted = slices.Compact(sorted)
	if len(sorted) < 3 {
		return sorted
	}

	hull := make([]cp.Vector, 0, len(sorted)*2)
	for _, p := range sorted {
		for len(hull) >= 2 && orient(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && orient(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
