// geo/kdtree.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"
	"slices"
	"strings"
)

// KDPoint is a keyed location to be indexed in a KDNode tree.
type KDPoint struct {
	Ident    string
	Location Pos
}

// KDNode is a node in a 3D KD-tree of points on the unit sphere. Doing
// nearest-point searches on the sphere rather than in lat-long space keeps
// the search exact across the antimeridian and near the poles: chord
// distance is monotonic in great-circle distance, so the usual
// branch-and-bound pruning applies without any longitude shifting.
type KDNode struct {
	Ident    string
	Location Pos
	xyz      [3]float64
	Left     *KDNode
	Right    *KDNode
}

func toUnitSphere(p Pos) [3]float64 {
	lat, lon := radians(p.Latitude()), radians(p.Longitude())
	return [3]float64{
		gomath.Cos(lat) * gomath.Cos(lon),
		gomath.Cos(lat) * gomath.Sin(lon),
		gomath.Sin(lat),
	}
}

func chordSq(a, b [3]float64) float64 {
	x, y, z := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return x*x + y*y + z*z
}

// BuildKDTree constructs a balanced KD-tree from a slice of points.
// Points with an invalid location are skipped. The tree cycles through
// the three sphere axes at successive levels.
func BuildKDTree(points []KDPoint) *KDNode {
	nodes := make([]*KDNode, 0, len(points))
	for _, p := range points {
		if p.Location.IsValid() {
			nodes = append(nodes, &KDNode{Ident: p.Ident, Location: p.Location, xyz: toUnitSphere(p.Location)})
		}
	}
	return buildKDTreeRecursive(nodes, 0)
}

func buildKDTreeRecursive(nodes []*KDNode, depth int) *KDNode {
	if len(nodes) == 0 {
		return nil
	}
	if len(nodes) == 1 {
		return nodes[0]
	}

	axis := depth % 3

	// Sort by the splitting axis and find the median
	slices.SortFunc(nodes, func(a, b *KDNode) int {
		if a.xyz[axis] < b.xyz[axis] {
			return -1
		} else if a.xyz[axis] > b.xyz[axis] {
			return 1
		}
		return strings.Compare(a.Ident, b.Ident)
	})

	median := len(nodes) / 2
	n := nodes[median]
	n.Left = buildKDTreeRecursive(nodes[:median], depth+1)
	n.Right = buildKDTreeRecursive(nodes[median+1:], depth+1)
	return n
}

// Nearest returns the indexed point closest to p by great-circle distance.
// Equidistant candidates resolve to the lexically smallest ident so that
// results are deterministic. ok is false for an empty tree or invalid p.
func (tree *KDNode) Nearest(p Pos) (KDPoint, bool) {
	if tree == nil || !p.IsValid() {
		return KDPoint{}, false
	}

	q := toUnitSphere(p)
	var best *KDNode
	bestDist := gomath.Inf(1)

	var search func(n *KDNode, depth int)
	search = func(n *KDNode, depth int) {
		if n == nil {
			return
		}

		d := chordSq(q, n.xyz)
		if d < bestDist || (d == bestDist && (best == nil || n.Ident < best.Ident)) {
			best, bestDist = n, d
		}

		axis := depth % 3
		delta := q[axis] - n.xyz[axis]
		near, far := n.Left, n.Right
		if delta > 0 {
			near, far = n.Right, n.Left
		}

		search(near, depth+1)
		// The far subtree can only matter if the splitting plane is at
		// most as far away as the best match so far; <= rather than <
		// keeps equidistant candidates reachable for the tie-break.
		if delta*delta <= bestDist {
			search(far, depth+1)
		}
	}
	search(tree, 0)

	return KDPoint{Ident: best.Ident, Location: best.Location}, true
}

// Size returns the number of points in the tree.
func (tree *KDNode) Size() int {
	if tree == nil {
		return 0
	}
	return 1 + tree.Left.Size() + tree.Right.Size()
}
