package integrator

import (
	"math"
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/lights"
	"github.com/lumenray/go-photon-mapper/pkg/material"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

// Shadow ray interval: starts off the surface, stops just short of the
// light so the light's own geometry does not occlude it
const (
	shadowRayMin     = 0.02
	shadowRayEndBias = 0.001
	lightSamplesUsed = 50
)

// DirectLighting samples area lights with shadow rays. It draws a fixed
// number of samples per query from a large pre-sampled pool and rescales
// by pool/drawn to stay unbiased. An optional indirect source replaces the
// sampled ambient term and may short-circuit shadow testing.
type DirectLighting struct {
	lights   []lights.LightSample
	indirect IndirectSource
}

// NewDirectLighting creates the integrator over a pre-sampled light pool
func NewDirectLighting(pool []lights.LightSample, indirect IndirectSource) *DirectLighting {
	return &DirectLighting{lights: pool, indirect: indirect}
}

func (d *DirectLighting) Lighting(scn *scene.Scene, f core.Fragment, surface *material.SurfaceInfo, random *rand.Rand) SampleLighting {
	var photonAmbient *core.Vec3
	var hadShadow *bool
	if d.indirect != nil {
		photonAmbient, hadShadow = d.indirect.LightingAndShadow(scn, f, surface)
	}

	result := SampleLighting{}
	if len(d.lights) == 0 {
		return result
	}

	lightScale := float64(len(d.lights)) / float64(lightSamplesUsed)
	diffuse := core.Vec3{}
	ambient := core.Vec3{}

	for i := 0; i < lightSamplesUsed; i++ {
		light := d.lights[random.Intn(len(d.lights))]
		toLight := light.Position.Subtract(surface.Position)
		distance := toLight.Length()
		if distance <= shadowRayMin {
			continue
		}
		direction := toLight.Multiply(1 / distance)

		if hadShadow == nil || *hadShadow {
			shadowRay := core.NewBoundRay(surface.Position, direction, shadowRayMin, distance-shadowRayEndBias)
			if _, _, blocked := scn.Intersect(shadowRay); blocked {
				continue
			}
		}

		diffuseIntensity := lightScale * light.Weight * math.Max(0, direction.Dot(surface.Normal))
		ambientIntensity := lightScale * light.Weight * light.Emission.Ambient
		diffuse = diffuse.Add(light.Diffuse.Multiply(diffuseIntensity))
		ambient = ambient.Add(light.Ambient.Multiply(ambientIntensity))
	}

	result.Diffuse = diffuse
	if photonAmbient != nil {
		result.Ambient = *photonAmbient
	} else {
		result.Ambient = ambient
	}
	return result
}
