package geometry

import (
	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/lights"
)

// CompoundObject aggregates intersectables behind a shared BVH. It is the
// scene's root object: meshes and analytic primitives are added during
// loading, Finalize builds the tree, and afterwards the object is
// read-only.
type CompoundObject struct {
	elements []core.Intersectable
	bounds   core.AABB
	tree     *core.BVH
}

// NewCompoundObject creates an empty aggregate
func NewCompoundObject() *CompoundObject {
	return &CompoundObject{bounds: core.NewAABB()}
}

// AddObject appends an object; must happen before Finalize
func (c *CompoundObject) AddObject(object core.Intersectable) {
	c.bounds = c.bounds.Merge(object.Bounds())
	c.elements = append(c.elements, object)
}

// Len returns the number of aggregated objects
func (c *CompoundObject) Len() int {
	return len(c.elements)
}

// Finalize builds the BVH over the aggregated objects
func (c *CompoundObject) Finalize() {
	c.tree = core.NewBVH(c.elements)
}

// Bounds returns the aggregate bounding box
func (c *CompoundObject) Bounds() core.AABB {
	return c.bounds
}

// Intersect traverses the aggregate BVH. Finalize must have been called.
func (c *CompoundObject) Intersect(ray core.Ray, tMin, tMax float64) (core.Collision, core.Shadable, bool) {
	if c.tree == nil {
		return core.Collision{}, nil, false
	}
	return c.tree.Intersect(c.elements, ray, tMin, tMax)
}

// Lights collects the area lights of all aggregated objects
func (c *CompoundObject) Lights(isLight func(core.MaterialIdx) bool) []lights.Light {
	var result []lights.Light
	for _, element := range c.elements {
		if source, ok := element.(LightSource); ok {
			result = append(result, source.Lights(isLight)...)
		}
	}
	return result
}

var _ core.Intersectable = (*CompoundObject)(nil)
