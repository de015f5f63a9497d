package asciify

import (
	"math"
	"sort"
)

// paletteNode is a node in a KD-tree over palette colors. Each node holds
// one palette point, the index of that point in the palette and the axis
// along which its subtree is split.
type paletteNode struct {
	Point       Sample
	Index       int
	Left, Right *paletteNode
	SplitAxis   int
}

// paletteTree is a KD-tree answering nearest palette entry queries with
// the same result as a linear scan, including ties.
type paletteTree struct {
	root *paletteNode
	dims int
}

// newPaletteTree builds a KD-tree over points. dims is 3 for RGB or 4 for
// RGBA. The points slice is not modified.
func newPaletteTree(points []Sample, dims int) *paletteTree {
	nodes := make([]indexedPoint, len(points))
	for i, p := range points {
		nodes[i] = indexedPoint{point: p, index: i}
	}
	return &paletteTree{root: buildKDTree(nodes, dims), dims: dims}
}

type indexedPoint struct {
	point Sample
	index int
}

// buildKDTree constructs a KD-tree from a list of palette points and
// returns its root node. The list is reordered in place.
func buildKDTree(points []indexedPoint, dims int) *paletteNode {
	if len(points) == 0 {
		return nil
	}

	// Choose splitting axis based on the dimension with the largest variance
	axis := chooseSplitAxis(points, dims)

	// Sort points along the chosen axis, index breaks equal components
	sort.Slice(points, func(i, j int) bool {
		ci, cj := points[i].point.component(axis), points[j].point.component(axis)
		if ci != cj {
			return ci < cj
		}
		return points[i].index < points[j].index
	})

	median := len(points) / 2
	return &paletteNode{
		Point:     points[median].point,
		Index:     points[median].index,
		Left:      buildKDTree(points[:median], dims),
		Right:     buildKDTree(points[median+1:], dims),
		SplitAxis: axis,
	}
}

// chooseSplitAxis selects the axis along which to split the points in a
// KD-tree. It returns the index of the axis with the largest variance,
// preferring the lower axis on equal variance.
func chooseSplitAxis(points []indexedPoint, dims int) int {
	var mean, variance [4]float64
	n := float64(len(points))

	for _, p := range points {
		for axis := 0; axis < dims; axis++ {
			mean[axis] += p.point.component(axis)
		}
	}
	for axis := 0; axis < dims; axis++ {
		mean[axis] /= n
	}

	for _, p := range points {
		for axis := 0; axis < dims; axis++ {
			d := p.point.component(axis) - mean[axis]
			variance[axis] += d * d
		}
	}

	best := 0
	for axis := 1; axis < dims; axis++ {
		if variance[axis] > variance[best] {
			best = axis
		}
	}
	return best
}

// nearest returns the palette index closest to target together with its
// squared distance. Equal distances resolve to the lowest palette index.
func (t *paletteTree) nearest(target Sample) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	t.root.nearestNeighbor(target, t.dims == 4, &best, &bestDist)
	if best < 0 {
		// NaN components compare false everywhere; match a linear scan.
		return 0, bestDist
	}
	return best, bestDist
}

// nearestNeighbor descends the subtree rooted at node, updating best and
// bestDist. The far branch is visited whenever it could hold a point at
// the same distance, so ties are always seen.
func (node *paletteNode) nearestNeighbor(
	target Sample,
	withAlpha bool,
	best *int,
	bestDist *float64,
) {
	if node == nil {
		return
	}

	dist := node.Point.squaredDistance(target, withAlpha)
	if dist < *bestDist || (dist == *bestDist && node.Index < *best) {
		*best = node.Index
		*bestDist = dist
	}

	axisDistance := target.component(node.SplitAxis) -
		node.Point.component(node.SplitAxis)
	next, other := node.Left, node.Right
	if axisDistance >= 0 {
		next, other = node.Right, node.Left
	}

	next.nearestNeighbor(target, withAlpha, best, bestDist)

	// Check if we need to search the other branch
	if axisDistance*axisDistance <= *bestDist {
		other.nearestNeighbor(target, withAlpha, best, bestDist)
	}
}
