package lights

import (
	"math"
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// SphereLight samples the lower (downward-facing) hemisphere of an emissive
// sphere, cosine-weighted about the downward axis; the upper half is not
// sampled
type SphereLight struct {
	Center   core.Vec3
	Radius   float64
	Material core.MaterialIdx
}

func (l *SphereLight) Area() float64 {
	return 4 * math.Pi * l.Radius * l.Radius
}

func (l *SphereLight) Samples(count int, eval MaterialEvaluator, random *rand.Rand) []LightSample {
	samples := make([]LightSample, 0, count)
	for len(samples) < count {
		direction := core.CosineWeightedDirection(core.NewVec3(0, -1, 0), random)
		position := l.Center.Add(direction.Multiply(l.Radius))
		normal := direction

		ray := core.NewRay(position.Add(normal), normal.Negate())
		fragment := core.Fragment{
			Position:   position,
			Normal:     normal,
			TrueNormal: normal,
			View:       ray.Direction,
			Material:   l.Material,
		}
		surface := eval.SurfaceAt(l.Material, ray, fragment)
		emission := emissionOrZero(surface.Emissive)

		samples = append(samples, LightSample{
			Position:  position,
			Direction: &normal,
			Ambient:   surface.AmbientColour,
			Diffuse:   surface.DiffuseColour,
			Specular:  surface.SpecularColour,
			Emission:  emission,
			Weight:    1.0 / float64(count),
			Power:     1.0,
		})
	}
	return samples
}

// TriangleLight samples the surface of an emissive triangle
type TriangleLight struct {
	V0, V1, V2 core.Vec3
	Normal     core.Vec3
	Material   core.MaterialIdx
}

func (l *TriangleLight) Area() float64 {
	edge1 := l.V1.Subtract(l.V0)
	edge2 := l.V2.Subtract(l.V0)
	return edge1.Cross(edge2).Length() * 0.5
}

func (l *TriangleLight) Samples(count int, eval MaterialEvaluator, random *rand.Rand) []LightSample {
	samples := make([]LightSample, 0, count)
	for len(samples) < count {
		// Uniform barycentric sampling via square-root warping
		r1 := math.Sqrt(random.Float64())
		r2 := random.Float64()
		b := r1 * (1 - r2)
		c := r1 * r2
		position := l.V0.Add(l.V1.Subtract(l.V0).Multiply(b)).Add(l.V2.Subtract(l.V0).Multiply(c))
		normal := l.Normal

		ray := core.NewRay(position.Add(normal), normal.Negate())
		fragment := core.Fragment{
			Position:   position,
			Normal:     normal,
			TrueNormal: normal,
			View:       ray.Direction,
			Material:   l.Material,
		}
		surface := eval.SurfaceAt(l.Material, ray, fragment)
		emission := emissionOrZero(surface.Emissive)

		samples = append(samples, LightSample{
			Position:  position,
			Direction: &normal,
			Ambient:   surface.AmbientColour,
			Diffuse:   surface.DiffuseColour,
			Specular:  surface.SpecularColour,
			Emission:  emission,
			Weight:    1.0 / float64(count),
			Power:     1.0,
		})
	}
	return samples
}
