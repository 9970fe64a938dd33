package photon

import (
	"errors"
	"math"
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/integrator"
	"github.com/lumenray/go-photon-mapper/pkg/lights"
	"github.com/lumenray/go-photon-mapper/pkg/material"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

// ErrNoLights is returned when a photon pass is requested for a scene
// without any emissive surfaces
var ErrNoLights = errors.New("photon map requires at least one light")

const maxPhotonBounces = 256

// Config sets up a photon map build
type Config struct {
	TargetPhotonCount int
	MaxLeafPhotons    int
	PhotonSamples     int // k for the gather estimate
	Workers           int // 0 selects the CPU count
	Seed              int64
	Logger            core.Logger
}

// PhotonMap is a k-d tree of traced photons with a density-based radiance
// estimate. It can serve as the lighting integrator on its own or as the
// indirect source behind direct lighting.
type PhotonMap struct {
	tree          *core.KDTree[Photon]
	selector      PhotonSelector
	photonSamples int
}

type initialPhoton struct {
	ray    core.Ray
	colour core.Vec3
}

// makePhoton samples an emission ray for a light sample: a cosine-weighted
// direction in the hemisphere of the sample's emission frame, downward for
// lights without one
func makePhoton(sample lights.LightSample, random *rand.Rand) initialPhoton {
	axis := core.NewVec3(0, -1, 0)
	if sample.Direction != nil {
		axis = *sample.Direction
	}
	direction := core.CosineWeightedDirection(axis, random)
	return initialPhoton{
		ray:    core.NewRay(sample.Position.Add(direction.Multiply(0.01)), direction),
		colour: sample.EmittedColour(),
	}
}

// NewPhotonMap traces photons through the scene in parallel and indexes
// the recorded ones. Returns (nil, nil) when tracing recorded nothing.
func NewPhotonMap(selector PhotonSelector, scn *scene.Scene, pool []lights.LightSample, cfg Config) (*PhotonMap, error) {
	if len(pool) == 0 {
		return nil, ErrNoLights
	}
	logger := cfg.Logger
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	initialPhotons := core.Time("Generating initial rays", logger, func() []initialPhoton {
		random := rand.New(rand.NewSource(cfg.Seed))
		totalPower := 0.0
		for _, light := range pool {
			totalPower += light.Output()
		}
		var result []initialPhoton
		for _, light := range pool {
			count := int(math.Ceil(light.Output() / totalPower * float64(cfg.TargetPhotonCount)))
			for i := 0; i < max(1, count); i++ {
				result = append(result, makePhoton(light, random))
			}
		}
		return result
	})
	initialCount := len(initialPhotons)

	photons := core.Time("Bouncing photons", logger, func() []Photon {
		queue := core.NewDispatchQueue[initialPhoton](cfg.Workers)
		for _, photon := range initialPhotons {
			queue.AddTask(photon)
		}
		paths := core.ConsumeTasks(queue, func(seq int, task initialPhoton) []Photon {
			random := rand.New(rand.NewSource(cfg.Seed + int64(seq)))
			return bouncePhoton(selector, scn, task, random)
		})
		var merged []Photon
		for _, path := range paths {
			merged = append(merged, path...)
		}
		return merged
	})
	if len(photons) == 0 {
		return nil, nil
	}

	normalising := core.NewTiming("Normalising photon power", logger)
	scale := 1.0 / float64(initialCount)
	for i := range photons {
		photons[i].Colour = photons[i].Colour.Multiply(scale)
	}
	normalising.Stop()

	tree := core.Time("Creating KDTree", logger, func() *core.KDTree[Photon] {
		return core.NewKDTree(photons, cfg.MaxLeafPhotons)
	})

	return &PhotonMap{
		tree:          tree,
		selector:      selector,
		photonSamples: cfg.PhotonSamples,
	}, nil
}

// bouncePhoton propagates one initial photon through the scene, recording
// path vertices as the selector directs and terminating by Russian
// roulette
func bouncePhoton(selector PhotonSelector, scn *scene.Scene, initial initialPhoton, random *rand.Rand) []Photon {
	throughput := core.NewVec3(1, 1, 1)
	colour := initial.colour
	ray := initial.ray

	var photons []Photon
	for depth := 1; depth <= maxPhotonBounces; depth++ {
		collision, shadable, hit := scn.Intersect(ray)
		if !hit {
			break
		}
		fragment := shadable.ComputeFragment(scn, ray, collision)
		surface := scn.SurfaceAt(fragment.Material, ray, fragment)

		nextRay, nextColour, ok := scatterPhoton(&surface, fragment, ray, colour, random)
		if !ok {
			break
		}

		mode := selector.RecordMode(&surface, depth, random)
		recorded := mode.ShouldRecord()
		if recorded {
			photons = append(photons, Photon{
				Colour:       colour,
				Pos:          fragment.Position,
				InDirection:  ray.Direction,
				OutDirection: nextRay.Direction,
				IsDirect:     depth == 1,
			})
		}
		if mode.ShouldTerminate() {
			break
		}

		if !recorded {
			// Russian roulette on the accumulated throughput; the shallow
			// fourth-root keeps bright paths alive longer
			throughput = throughput.MultiplyVec(nextColour)
			p := random.Float64()
			if p > math.Pow(throughput.MaxComponent(), 0.25) {
				break
			}
			throughput = throughput.Multiply(1 / p)
		}

		colour = nextColour
		ray = nextRay
	}
	return photons
}

// scatterPhoton chooses the photon's next direction: a secondary ray
// sampled by weight when the material has them, otherwise a diffuse or
// specular scatter with probabilities proportional to the surface response
func scatterPhoton(surface *material.SurfaceInfo, fragment core.Fragment, ray core.Ray, colour core.Vec3, random *rand.Rand) (core.Ray, core.Vec3, bool) {
	remainingWeight := math.Max(0, 1.0-surface.SecondaryWeight())

	selection := random.Float64()
	for _, secondary := range surface.Secondaries {
		if selection > secondary.Weight {
			selection -= secondary.Weight
			continue
		}
		return secondary.Ray, colour.MultiplyVec(secondary.Colour), true
	}

	colourMax := colour.MaxComponent()
	if colourMax <= 0 {
		return core.Ray{}, core.Vec3{}, false
	}
	probDiffuse := surface.DiffuseColour.MultiplyVec(colour).MaxComponent() / colourMax
	probSpecular := surface.SpecularColour.MultiplyVec(colour).MaxComponent() / colourMax

	p := random.Float64() * remainingWeight
	var direction core.Vec3
	var nextColour core.Vec3
	switch {
	case p < probDiffuse:
		direction = core.RandomInHemisphere(surface.Normal, random)
		nextColour = surface.DiffuseColour.MultiplyVec(colour).Multiply(1 / probDiffuse)
	case p < probDiffuse+probSpecular:
		direction = fragment.View.Reflect(surface.Normal)
		nextColour = surface.SpecularColour.MultiplyVec(colour).Multiply(1 / probSpecular)
	default:
		return core.Ray{}, core.Vec3{}, false
	}

	next := core.NewRayWithContext(
		fragment.Position.Add(direction.Multiply(0.001)),
		direction,
		ray.Context.Clone(),
	)
	return next, nextColour, true
}

// Estimate returns the photon-density radiance at a surface point:
// sum(colour * weight) / (pi * r^2) over the k nearest photons
func (pm *PhotonMap) Estimate(surface *material.SurfaceInfo) core.Vec3 {
	if pm.photonSamples == 0 {
		return core.Vec3{}
	}
	photons, radius := pm.tree.Nearest(surface.Position, pm.photonSamples)
	if len(photons) == 0 || radius == 0 {
		return core.Vec3{}
	}

	result := core.Vec3{}
	for i := range photons {
		contribution, ok := pm.selector.WeightForSample(surface.Position, &photons[i], len(photons), radius)
		if !ok {
			continue
		}
		weight := math.Max(0, photons[i].InDirection.Dot(surface.Normal.Negate())) * contribution
		result = result.Add(photons[i].Colour.Multiply(weight))
	}
	return result.Multiply(1 / (math.Pi * radius * radius))
}

// Lighting implements integrator.LightingIntegrator: the estimate feeds
// the ambient channel
func (pm *PhotonMap) Lighting(scn *scene.Scene, f core.Fragment, surface *material.SurfaceInfo, random *rand.Rand) integrator.SampleLighting {
	return integrator.SampleLighting{Ambient: pm.Estimate(surface)}
}

// LightingAndShadow implements integrator.IndirectSource. The map answers
// lighting but leaves shadow queries to the caller.
func (pm *PhotonMap) LightingAndShadow(scn *scene.Scene, f core.Fragment, surface *material.SurfaceInfo) (*core.Vec3, *bool) {
	estimate := pm.Estimate(surface)
	return &estimate, nil
}

var (
	_ integrator.LightingIntegrator = (*PhotonMap)(nil)
	_ integrator.IndirectSource     = (*PhotonMap)(nil)
)
