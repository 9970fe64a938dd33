package lights

import (
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/material"
)

// MaterialEvaluator resolves surface properties for a material id at a
// given fragment; implemented by the scene
type MaterialEvaluator interface {
	SurfaceAt(idx core.MaterialIdx, ray core.Ray, f core.Fragment) material.SurfaceInfo
}

// LightSample is one pre-sampled point on a light's surface. Direction is
// the emission frame (the surface normal at the sample) when the light has
// one.
type LightSample struct {
	Position  core.Vec3
	Direction *core.Vec3
	Ambient   core.Vec3
	Diffuse   core.Vec3
	Specular  core.Vec3
	Emission  material.EmissionCoefficients
	Weight    float64
	Power     float64
}

// Output returns the emitted power this sample stands for
func (s LightSample) Output() float64 {
	return s.Power * s.Weight
}

// EmittedColour folds the per-channel emission coefficients with the
// surface colours into the colour an emitted photon carries
func (s LightSample) EmittedColour() core.Vec3 {
	return s.Diffuse.Multiply(s.Emission.Diffuse).
		Add(s.Ambient.Multiply(s.Emission.Ambient)).
		Add(s.Specular.Multiply(s.Emission.Specular))
}

// Light is an area light that can be point-sampled
type Light interface {
	Area() float64
	Samples(count int, eval MaterialEvaluator, random *rand.Rand) []LightSample
}

func emissionOrZero(e *material.EmissionCoefficients) material.EmissionCoefficients {
	if e == nil {
		return material.EmissionCoefficients{}
	}
	return *e
}
