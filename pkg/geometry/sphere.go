package geometry

import (
	"math"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// Sphere is an analytic sphere primitive
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material core.MaterialIdx
}

// NewSphere creates a sphere with the given center, radius and material
func NewSphere(center core.Vec3, radius float64, material core.MaterialIdx) *Sphere {
	return &Sphere{Center: center, Radius: radius, Material: material}
}

// Bounds returns the sphere's bounding box
func (s *Sphere) Bounds() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.AABB{Min: s.Center.Subtract(radius), Max: s.Center.Add(radius)}
}

// Intersect finds the nearest sphere surface crossing inside (tMin, tMax),
// handling rays that start inside the sphere
func (s *Sphere) Intersect(ray core.Ray, tMin, tMax float64) (core.Collision, core.Shadable, bool) {
	toSphere := s.Center.Subtract(ray.Origin)
	d := toSphere.Dot(ray.Direction)
	nearestPoint := ray.At(d)
	centerToNearest := nearestPoint.Subtract(s.Center)
	if centerToNearest.LengthSquared() > s.Radius*s.Radius {
		return core.Collision{}, nil, false
	}
	step := math.Sqrt(s.Radius*s.Radius - centerToNearest.LengthSquared())
	inside := toSphere.LengthSquared() < s.Radius*s.Radius
	distance := d - step
	if inside {
		distance = d + step
	}
	if distance <= tMin || distance >= tMax {
		return core.Collision{}, nil, false
	}
	normal := ray.At(distance).Subtract(s.Center).Multiply(1 / s.Radius)
	u := math.Atan2(normal.Z, normal.X)
	v := math.Acos(max(-1, min(1, normal.Y)))
	return core.NewCollision(distance, core.NewVec2(u, v)), s, true
}

// ComputeFragment builds the shading fragment for a sphere collision
func (s *Sphere) ComputeFragment(src core.VertexSource, ray core.Ray, collision core.Collision) core.Fragment {
	position := ray.At(collision.Distance)
	normal := position.Subtract(s.Center).Multiply(1 / s.Radius)
	dpdv := normal.Cross(core.NewVec3(0, 1, 0)).Cross(normal)
	dpdu := normal.Cross(core.NewVec3(1, 0, 0)).Cross(normal)
	return core.Fragment{
		Position:   position,
		Normal:     normal,
		TrueNormal: normal,
		UV:         collision.UV,
		Dpdu:       dpdu,
		Dpdv:       dpdv,
		View:       ray.Direction,
		Material:   s.Material,
	}
}
