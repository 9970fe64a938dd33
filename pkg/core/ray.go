package core

import "math"

// RayContext tracks the stack of refractive indices of the media a ray is
// currently travelling through, so nested transparent objects refract
// against the enclosing medium rather than vacuum.
type RayContext struct {
	iors []float64
}

// NewRayContext creates an empty context (ray travelling in vacuum/air)
func NewRayContext() RayContext {
	return RayContext{}
}

// Clone returns an independent copy of the context
func (rc RayContext) Clone() RayContext {
	iors := make([]float64, len(rc.iors))
	copy(iors, rc.iors)
	return RayContext{iors: iors}
}

// EnterMaterial returns a copy of the context with the entered medium's
// index of refraction pushed on top
func (rc RayContext) EnterMaterial(ior float64) RayContext {
	result := rc.Clone()
	result.iors = append(result.iors, ior)
	return result
}

// ExitMaterial returns a copy of the context with the innermost medium popped
func (rc RayContext) ExitMaterial() RayContext {
	result := rc.Clone()
	if len(result.iors) > 0 {
		result.iors = result.iors[:len(result.iors)-1]
	}
	return result
}

// CurrentIOROr returns the index of refraction of the innermost medium, or
// fallback when the ray is not inside any medium
func (rc RayContext) CurrentIOROr(fallback float64) float64 {
	if len(rc.iors) == 0 {
		return fallback
	}
	return rc.iors[len(rc.iors)-1]
}

// Depth returns how many media the ray is currently nested inside
func (rc RayContext) Depth() int {
	return len(rc.iors)
}

// Ray represents a ray with an origin, a unit direction, a valid parameter
// interval [Min, Max] and the medium context it is travelling in
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Min       float64
	Max       float64
	Context   RayContext
}

// NewRay creates an unbounded ray with a fresh context
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		Min:       0,
		Max:       math.Inf(1),
		Context:   NewRayContext(),
	}
}

// NewRayWithContext creates an unbounded ray carrying an existing context
func NewRayWithContext(origin, direction Vec3, ctx RayContext) Ray {
	r := NewRay(origin, direction)
	r.Context = ctx
	return r
}

// NewBoundRay creates a ray restricted to the interval [min, max]
func NewBoundRay(origin, direction Vec3, min, max float64) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		Min:       min,
		Max:       max,
		Context:   NewRayContext(),
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
