package geometry

import (
	"math"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// Vertex is one corner of a triangle: an inline position plus optional
// indices into the scene's texture coordinate and normal arrays
type Vertex struct {
	Position core.Vec3
	TexCoord *core.TextureCoordinateIdx
	Normal   *core.NormalIdx
}

// Triangle is the base mesh primitive
type Triangle struct {
	Material core.MaterialIdx
	vertices [3]Vertex
	edges    [2]core.Vec3 // v1-v0, v2-v0
	normal   core.Vec3    // Geometric normal, cached
	bounds   core.AABB
}

// NewTriangle creates a triangle from three vertices
func NewTriangle(material core.MaterialIdx, v0, v1, v2 Vertex) *Triangle {
	edge0 := v1.Position.Subtract(v0.Position)
	edge1 := v2.Position.Subtract(v0.Position)
	return &Triangle{
		Material: material,
		vertices: [3]Vertex{v0, v1, v2},
		edges:    [2]core.Vec3{edge0, edge1},
		normal:   edge0.Cross(edge1).Normalize(),
		bounds:   core.NewAABBFromPoints(v0.Position, v1.Position, v2.Position),
	}
}

// NewPlainTriangle creates a triangle from bare positions
func NewPlainTriangle(material core.MaterialIdx, p0, p1, p2 core.Vec3) *Triangle {
	return NewTriangle(material, Vertex{Position: p0}, Vertex{Position: p1}, Vertex{Position: p2})
}

// Bounds returns the triangle's bounding box
func (t *Triangle) Bounds() core.AABB {
	return t.bounds
}

// GeometricNormal returns the cached face normal
func (t *Triangle) GeometricNormal() core.Vec3 {
	return t.normal
}

// Vertices returns the triangle's corners
func (t *Triangle) Vertices() [3]Vertex {
	return t.vertices
}

// Intersect runs the Möller-Trumbore test, reporting barycentric (u,v) and
// the hit distance when it falls strictly inside (tMin, tMax)
func (t *Triangle) Intersect(ray core.Ray, tMin, tMax float64) (core.Collision, core.Shadable, bool) {
	const epsilon = 1e-9

	h := ray.Direction.Cross(t.edges[1])
	a := t.edges[0].Dot(h)
	if math.Abs(a) < epsilon {
		return core.Collision{}, nil, false
	}
	f := 1.0 / a
	s := ray.Origin.Subtract(t.vertices[0].Position)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return core.Collision{}, nil, false
	}
	q := s.Cross(t.edges[0])
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return core.Collision{}, nil, false
	}
	distance := f * t.edges[1].Dot(q)
	if distance <= tMin || distance >= tMax {
		return core.Collision{}, nil, false
	}
	return core.NewCollision(distance, core.NewVec2(u, v)), t, true
}

// ComputeFragment builds the shading fragment for a collision, resolving
// indexed normals and texture coordinates against the scene arrays
func (t *Triangle) ComputeFragment(src core.VertexSource, ray core.Ray, collision core.Collision) core.Fragment {
	u, v := collision.UV.X, collision.UV.Y
	w := 1.0 - u - v
	position := ray.At(collision.Distance)

	normal := t.normal
	if t.vertices[0].Normal != nil && t.vertices[1].Normal != nil && t.vertices[2].Normal != nil {
		interpolated := src.Normal(*t.vertices[0].Normal).Multiply(w).
			Add(src.Normal(*t.vertices[1].Normal).Multiply(u)).
			Add(src.Normal(*t.vertices[2].Normal).Multiply(v))
		if interpolated.LengthSquared() > 0 {
			normal = interpolated.Normalize()
		}
	}

	uv := collision.UV
	if t.vertices[0].TexCoord != nil && t.vertices[1].TexCoord != nil && t.vertices[2].TexCoord != nil {
		uv = src.TextureCoordinate(*t.vertices[0].TexCoord).Multiply(w).
			Add(src.TextureCoordinate(*t.vertices[1].TexCoord).Multiply(u)).
			Add(src.TextureCoordinate(*t.vertices[2].TexCoord).Multiply(v))
	}

	return core.Fragment{
		Position:   position,
		Normal:     normal,
		TrueNormal: t.normal,
		UV:         uv,
		Dpdu:       t.edges[0],
		Dpdv:       t.edges[1],
		View:       ray.Direction,
		Material:   t.Material,
	}
}
