package geometry

import (
	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/lights"
)

// LightSource is implemented by geometry that can expose area lights for
// its emissive surfaces
type LightSource interface {
	Lights(isLight func(core.MaterialIdx) bool) []lights.Light
}

// Mesh owns a set of triangles behind its own BVH
type Mesh struct {
	triangles []*Triangle
	elements  []core.Intersectable
	tree      *core.BVH
	bounds    core.AABB
}

// NewMesh builds a mesh and its acceleration structure from triangles
func NewMesh(triangles []*Triangle) *Mesh {
	bounds := core.NewAABB()
	elements := make([]core.Intersectable, len(triangles))
	for i, triangle := range triangles {
		bounds = bounds.Merge(triangle.Bounds())
		elements[i] = triangle
	}
	return &Mesh{
		triangles: triangles,
		elements:  elements,
		tree:      core.NewBVH(elements),
		bounds:    bounds,
	}
}

// Bounds returns the mesh bounding box
func (m *Mesh) Bounds() core.AABB {
	return m.bounds
}

// Intersect traverses the mesh BVH for the nearest triangle hit
func (m *Mesh) Intersect(ray core.Ray, tMin, tMax float64) (core.Collision, core.Shadable, bool) {
	return m.tree.Intersect(m.elements, ray, tMin, tMax)
}

// Lights returns one area light per emissive triangle
func (m *Mesh) Lights(isLight func(core.MaterialIdx) bool) []lights.Light {
	var result []lights.Light
	for _, triangle := range m.triangles {
		if !isLight(triangle.Material) {
			continue
		}
		vertices := triangle.Vertices()
		result = append(result, &lights.TriangleLight{
			V0:       vertices[0].Position,
			V1:       vertices[1].Position,
			V2:       vertices[2].Position,
			Normal:   triangle.GeometricNormal(),
			Material: triangle.Material,
		})
	}
	return result
}

// SphereObject adapts a Sphere for aggregation and light discovery
type SphereObject struct {
	*Sphere
}

// NewSphereObject wraps a sphere primitive
func NewSphereObject(sphere *Sphere) *SphereObject {
	return &SphereObject{Sphere: sphere}
}

// Lights returns the sphere as an area light when its material emits
func (s *SphereObject) Lights(isLight func(core.MaterialIdx) bool) []lights.Light {
	if !isLight(s.Material) {
		return nil
	}
	return []lights.Light{&lights.SphereLight{
		Center:   s.Center,
		Radius:   s.Radius,
		Material: s.Material,
	}}
}

var (
	_ core.Intersectable = (*Mesh)(nil)
	_ core.Intersectable = (*SphereObject)(nil)
)
