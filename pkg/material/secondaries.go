package material

import (
	"math"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// selfIntersectionOffset nudges secondary ray origins off the surface
const selfIntersectionOffset = 0.01

// minFresnelWeight is the reflection weight below which the Fresnel
// reflection ray is not worth spawning
const minFresnelWeight = 0.02

// ComputeSecondaries generates the reflection and refraction rays for a
// surface hit. Opaque reflective surfaces spawn a single mirror ray;
// transparent surfaces spawn a Schlick-weighted reflection plus a Snell
// refraction, falling back to reflection on total internal reflection. The
// refracted ray's context tracks the medium transition.
func ComputeSecondaries(ray core.Ray, f core.Fragment, surface *SurfaceInfo) []SecondaryRay {
	if surface.TransparentColour == nil {
		if surface.Reflectivity == nil {
			return nil
		}
		reflected := f.View.Reflect(surface.Normal)
		return []SecondaryRay{{
			Ray: core.NewRayWithContext(
				surface.Position.Add(reflected.Multiply(selfIntersectionOffset)),
				reflected,
				ray.Context.Clone(),
			),
			Colour: surface.Reflectivity.Colour,
			Weight: surface.Reflectivity.Weight,
		}}
	}

	normal := surface.Normal
	reflected := f.View.Reflect(normal)
	transparentColour := *surface.TransparentColour

	var result []SecondaryRay
	refractionWeight := 1.0

	refractedDirection := f.View
	newContext := ray.Context.Clone()

	if ior := surface.IndexOfRefraction; ior != nil {
		view := f.View.Negate()
		entering := f.View.Dot(f.TrueNormal) < 0

		var ni, nt float64
		if entering {
			ni = ray.Context.CurrentIOROr(ior.Outside)
			nt = ior.Inside
			newContext = ray.Context.EnterMaterial(ior.Inside)
		} else {
			ni = ray.Context.CurrentIOROr(ior.Inside)
			newContext = ray.Context.ExitMaterial()
			nt = newContext.CurrentIOROr(ior.Outside)
		}
		nr := ni / nt

		// Shade against the normal facing the incoming ray
		if normal.Dot(view) < 0 {
			normal = normal.Negate()
		}
		nDotV := normal.Dot(view)

		inner := 1.0 - nr*nr*(1.0-nDotV*nDotV)
		if inner < 0 {
			// Total internal reflection: the "refracted" ray is the
			// reflection, staying in the current medium
			refractedDirection = reflected
			newContext = ray.Context.Clone()
		} else {
			// Schlick approximation of the fresnel term
			r0root := (nt - ni) / (nt + ni)
			r0 := r0root * r0root
			oneMinusCosTheta := 1.0 - nDotV
			fresnelWeight := r0 + (1.0-r0)*math.Pow(oneMinusCosTheta, 5)

			if fresnelWeight > minFresnelWeight {
				result = append(result, SecondaryRay{
					Ray: core.NewRayWithContext(
						f.Position.Add(reflected.Multiply(selfIntersectionOffset)),
						reflected,
						ray.Context.Clone(),
					),
					Colour: surface.SpecularColour,
					Weight: fresnelWeight,
				})
				refractionWeight -= fresnelWeight
			}
			refractedDirection = normal.Multiply(nr*nDotV - math.Sqrt(inner)).
				Subtract(view.Multiply(nr)).
				Normalize()
		}
	}

	result = append(result, SecondaryRay{
		Ray: core.NewRayWithContext(
			f.Position.Add(refractedDirection.Multiply(selfIntersectionOffset)),
			refractedDirection,
			newContext,
		),
		Colour: transparentColour,
		Weight: refractionWeight,
	})
	return result
}
