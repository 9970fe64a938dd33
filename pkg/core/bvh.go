package core

import "math"

const (
	numBuckets      = 4
	maxPrimsPerNode = 20
)

// BVH is a surface-area-heuristic bounding volume hierarchy over a fixed
// slice of intersectables. The tree stores primitive indices; the element
// slice is supplied again at traversal time so aggregates can own their
// primitives without the tree holding references.
type BVH struct {
	root *bvhNode
}

type bvhNode struct {
	bounds AABB

	// Leaf payload; nil for inner nodes
	primitives []int

	// Inner node fields
	axis        int
	left, right *bvhNode
}

func (n *bvhNode) isLeaf() bool {
	return n.primitives != nil
}

type bvhPrimitiveInfo struct {
	primitiveNumber int
	bounds          AABB
	centroid        Vec3
}

// NewBVH builds a hierarchy over the elements' bounding boxes
func NewBVH[T HasBounds](elements []T) *BVH {
	if len(elements) == 0 {
		return &BVH{}
	}
	info := make([]bvhPrimitiveInfo, len(elements))
	for i, element := range elements {
		bounds := element.Bounds()
		info[i] = bvhPrimitiveInfo{
			primitiveNumber: i,
			bounds:          bounds,
			centroid:        bounds.Centroid(),
		}
	}
	return &BVH{root: buildBVHNode(info)}
}

func makeBVHLeaf(info []bvhPrimitiveInfo) *bvhNode {
	bounds := NewAABB()
	primitives := make([]int, len(info))
	for i, primitive := range info {
		bounds = bounds.Merge(primitive.bounds)
		primitives[i] = primitive.primitiveNumber
	}
	return &bvhNode{bounds: bounds, primitives: primitives}
}

func bucketForPrimitive(centroidBounds AABB, axis int, primitive bvhPrimitiveInfo) int {
	b := int(numBuckets * centroidBounds.Offset(primitive.centroid).Axis(axis))
	return min(b, numBuckets-1)
}

func buildBVHNode(info []bvhPrimitiveInfo) *bvhNode {
	bounds := NewAABB()
	for _, primitive := range info {
		bounds = bounds.Merge(primitive.bounds)
	}
	if len(info) == 1 {
		return makeBVHLeaf(info)
	}

	centroidBounds := NewAABB()
	for _, primitive := range info {
		centroidBounds = centroidBounds.MergeWithPoint(primitive.centroid)
	}
	axis := centroidBounds.MaxAxis()
	if centroidBounds.Min.Axis(axis) == centroidBounds.Max.Axis(axis) {
		// All centroids coincide along the split axis; no useful partition
		return makeBVHLeaf(info)
	}

	type bucketInfo struct {
		count  int
		bounds AABB
	}
	var buckets [numBuckets]bucketInfo
	for b := range buckets {
		buckets[b].bounds = NewAABB()
	}
	for _, primitive := range info {
		b := bucketForPrimitive(centroidBounds, axis, primitive)
		buckets[b].count++
		buckets[b].bounds = buckets[b].bounds.Merge(primitive.bounds)
	}

	// Evaluate the SAH cost of splitting after each bucket:
	// cost(i) = 1 + 2*(S_L*N_L + S_R*N_R)/S_parent
	parentSurface := bounds.SurfaceArea()
	minSplitCost := math.Inf(1)
	minSplitBucket := 0
	for i := 0; i < numBuckets-1; i++ {
		leftBounds, rightBounds := NewAABB(), NewAABB()
		leftCount, rightCount := 0, 0
		for j := 0; j <= i; j++ {
			leftBounds = leftBounds.Merge(buckets[j].bounds)
			leftCount += buckets[j].count
		}
		for j := i + 1; j < numBuckets; j++ {
			rightBounds = rightBounds.Merge(buckets[j].bounds)
			rightCount += buckets[j].count
		}
		leftCost := 0.0
		if leftCount > 0 {
			leftCost = leftBounds.SurfaceArea() / parentSurface * float64(leftCount)
		}
		rightCost := 0.0
		if rightCount > 0 {
			rightCost = rightBounds.SurfaceArea() / parentSurface * float64(rightCount)
		}
		cost := 1.0 + 2.0*(leftCost+rightCost)
		if cost < minSplitCost {
			minSplitCost = cost
			minSplitBucket = i
		}
	}

	leafCost := float64(len(info))
	if minSplitCost >= leafCost && len(info) <= maxPrimsPerNode {
		return makeBVHLeaf(info)
	}

	var left, right []bvhPrimitiveInfo
	for _, primitive := range info {
		if bucketForPrimitive(centroidBounds, axis, primitive) <= minSplitBucket {
			left = append(left, primitive)
		} else {
			right = append(right, primitive)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return makeBVHLeaf(info)
	}

	return &bvhNode{
		bounds: bounds,
		axis:   axis,
		left:   buildBVHNode(left),
		right:  buildBVHNode(right),
	}
}

// Bounds returns the bounding box of the whole hierarchy
func (bvh *BVH) Bounds() AABB {
	if bvh.root == nil {
		return NewAABB()
	}
	return bvh.root.bounds
}

type bvhStackEntry struct {
	node *bvhNode
	tMin float64
	tMax float64
}

// Intersect finds the nearest hit among elements for the ray restricted to
// the open interval (tMin, tMax). The returned collision carries traversal
// diagnostics.
func (bvh *BVH) Intersect(elements []Intersectable, ray Ray, tMin, tMax float64) (Collision, Shadable, bool) {
	if bvh.root == nil {
		return Collision{}, nil, false
	}

	dirIsNegative := [3]bool{ray.Direction.X < 0, ray.Direction.Y < 0, ray.Direction.Z < 0}

	// Explicit stack keeps traversal iterative; 2*log2(N) is plenty
	stack := make([]bvhStackEntry, 0, 64)
	stack = append(stack, bvhStackEntry{bvh.root, tMin, tMax})

	var result Collision
	var hitObject Shadable
	found := false
	nearest := tMax
	intersectionCount := 0
	nodeCount := 0

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodeCount++

		if entry.tMin > nearest {
			continue
		}
		node := entry.node

		if node.isLeaf() {
			_, _, ok := node.bounds.Intersect(ray, entry.tMin-0.01, nearest)
			if !ok {
				continue
			}
			intersectionCount += len(node.primitives)
			for _, index := range node.primitives {
				collision, object, ok := elements[index].Intersect(ray, tMin, nearest)
				if !ok {
					continue
				}
				if collision.Distance < nearest {
					nearest = collision.Distance
					result = collision
					hitObject = object
					found = true
				}
			}
			continue
		}

		childMin, childMax, ok := node.bounds.Intersect(ray, entry.tMin, math.Min(nearest, entry.tMax))
		if !ok {
			continue
		}
		// Push the near child last so it pops first
		if dirIsNegative[node.axis] {
			stack = append(stack, bvhStackEntry{node.left, childMin, childMax})
			stack = append(stack, bvhStackEntry{node.right, childMin, childMax})
		} else {
			stack = append(stack, bvhStackEntry{node.right, childMin, childMax})
			stack = append(stack, bvhStackEntry{node.left, childMin, childMax})
		}
	}

	if !found {
		return Collision{}, nil, false
	}
	result.IntersectionCount = intersectionCount
	result.NodeCount = nodeCount
	return result, hitObject, true
}

// bvhTreeStats describes the built tree's shape for tests and diagnostics
type bvhTreeStats struct {
	totalNodes      int
	leafNodes       int
	maxDepth        int
	totalPrimitives int
}

func (bvh *BVH) stats() bvhTreeStats {
	stats := bvhTreeStats{}
	if bvh.root != nil {
		collectBVHStats(bvh.root, 0, &stats)
	}
	return stats
}

func collectBVHStats(node *bvhNode, depth int, stats *bvhTreeStats) {
	stats.totalNodes++
	if depth > stats.maxDepth {
		stats.maxDepth = depth
	}
	if node.isLeaf() {
		stats.leafNodes++
		stats.totalPrimitives += len(node.primitives)
		return
	}
	collectBVHStats(node.left, depth+1, stats)
	collectBVHStats(node.right, depth+1, stats)
}
