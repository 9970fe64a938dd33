package core

import "math"

// machineEpsilon is half the float64 ULP at 1.0, following PBRT's convention
const machineEpsilon = 0x1p-53

// Gamma returns PBRT's conservative floating point error bound (n*eps)/(1-n*eps)
func Gamma(n int) float64 {
	return float64(n) * machineEpsilon / (1 - float64(n)*machineEpsilon)
}

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates an empty AABB. The empty box uses (+inf, -inf) so that
// merging is idempotent and merging any point or box produces that input.
func NewAABB() AABB {
	return AABB{
		Min: NewVec3(math.Inf(1), math.Inf(1), math.Inf(1)),
		Max: NewVec3(math.Inf(-1), math.Inf(-1), math.Inf(-1)),
	}
}

// NewAABBFromPoint creates an AABB containing a single point
func NewAABBFromPoint(p Vec3) AABB {
	return AABB{Min: p, Max: p}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	result := NewAABB()
	for _, point := range points {
		result = result.MergeWithPoint(point)
	}
	return result
}

// MergeWithPoint returns an AABB grown to contain the point
func (aabb AABB) MergeWithPoint(p Vec3) AABB {
	return aabb.Merge(AABB{Min: p, Max: p})
}

// Merge returns an AABB that bounds both this AABB and another
func (aabb AABB) Merge(other AABB) AABB {
	return AABB{
		Min: aabb.Min.Min(other.Min),
		Max: aabb.Max.Max(other.Max),
	}
}

// Centroid returns the center point of the AABB
func (aabb AABB) Centroid() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// MaxAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) MaxAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// IsValid returns true for a non-empty box with finite, ordered corners
func (aabb AABB) IsValid() bool {
	if aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z {
		return false
	}
	for axis := 0; axis < 3; axis++ {
		if math.IsInf(aabb.Min.Axis(axis), 0) || math.IsInf(aabb.Max.Axis(axis), 0) {
			return false
		}
	}
	return true
}

// Contains reports whether the point lies inside the box (inclusive)
func (aabb AABB) Contains(p Vec3) bool {
	if p.X < aabb.Min.X || p.Y < aabb.Min.Y || p.Z < aabb.Min.Z {
		return false
	}
	if p.X > aabb.Max.X || p.Y > aabb.Max.Y || p.Z > aabb.Max.Z {
		return false
	}
	return true
}

// Encloses reports whether the other box lies entirely inside this one
func (aabb AABB) Encloses(other AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if other.Min.Axis(axis) < aabb.Min.Axis(axis) || other.Min.Axis(axis) > aabb.Max.Axis(axis) {
			return false
		}
		if other.Max.Axis(axis) < aabb.Min.Axis(axis) || other.Max.Axis(axis) > aabb.Max.Axis(axis) {
			return false
		}
	}
	return true
}

// Offset returns the position of a point relative to the box, with each
// component mapped to [0,1] between that axis' own min and max
func (aabb AABB) Offset(p Vec3) Vec3 {
	o := p.Subtract(aabb.Min)
	if aabb.Max.X > aabb.Min.X {
		o.X /= aabb.Max.X - aabb.Min.X
	}
	if aabb.Max.Y > aabb.Min.Y {
		o.Y /= aabb.Max.Y - aabb.Min.Y
	}
	if aabb.Max.Z > aabb.Min.Z {
		o.Z /= aabb.Max.Z - aabb.Min.Z
	}
	return o
}

// Intersect runs the slab test against the ray over [tMin, tMax], returning
// the tightened (tNear, tFar) interval or ok=false on a miss. tFar is
// inflated slightly so boundary rays do not lose surface hits.
func (aabb AABB) Intersect(ray Ray, tMin, tMax float64) (tNear, tFar float64, ok bool) {
	tNear = tMin
	tFar = tMax
	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)
		boxMin := aabb.Min.Axis(axis)
		boxMax := aabb.Max.Axis(axis)

		if math.Abs(direction) < 1e-12 {
			// Parallel to the slab: inside or miss
			if origin < boxMin || origin > boxMax {
				return 0, 0, false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (boxMin - origin) * invDirection
		t2 := (boxMax - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		t2 *= 1 + 2*Gamma(3)

		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, 0, false
		}
	}
	return tNear, tFar, true
}
