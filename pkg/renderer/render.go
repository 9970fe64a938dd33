package renderer

import (
	"errors"
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/integrator"
	"github.com/lumenray/go-photon-mapper/pkg/photon"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

// lightSamplePoolSize is the number of pre-drawn light samples shared by
// the direct integrator and the photon pass
const lightSamplePoolSize = 10000

// ErrNoLights is returned when a photon pass is configured for a scene
// with no emissive surfaces
var ErrNoLights = errors.New("scene has no lights but photon_count > 0")

// BuildIntegrator wires the lighting pipeline for the settings: a photon
// map alone, direct lighting alone, or direct lighting with the photon map
// as its indirect source
func BuildIntegrator(scn *scene.Scene, settings scene.Settings, logger core.Logger) (integrator.LightingIntegrator, error) {
	random := rand.New(rand.NewSource(settings.Seed))
	pool := scn.LightSamples(lightSamplePoolSize, random)

	if settings.PhotonCount > 0 && len(pool) == 0 {
		return nil, ErrNoLights
	}

	var photonMap *photon.PhotonMap
	if settings.PhotonCount > 0 && settings.PhotonSamples > 0 {
		selector := photon.NewDiffuseSelector(!settings.UseDirectLighting)
		pm, err := photon.NewPhotonMap(selector, scn, pool, photon.Config{
			TargetPhotonCount: settings.PhotonCount,
			MaxLeafPhotons:    settings.MaxLeafPhotons,
			PhotonSamples:     settings.PhotonSamples,
			Workers:           settings.Workers,
			Seed:              settings.Seed,
			Logger:            logger,
		})
		if err != nil {
			return nil, err
		}
		photonMap = pm
	}

	if !settings.UseDirectLighting && photonMap != nil {
		return photonMap, nil
	}
	var indirect integrator.IndirectSource
	if photonMap != nil {
		indirect = photonMap
	}
	return integrator.NewDirectLighting(pool, indirect), nil
}

// Render runs the full pipeline for a loaded scene and returns the
// frame's linear radiance buffer
func Render(scn *scene.Scene, settings scene.Settings, logger core.Logger) (*RenderBuffer, error) {
	lighting, err := BuildIntegrator(scn, settings, logger)
	if err != nil {
		return nil, err
	}

	camera := NewPerspectiveCamera(
		settings.Width,
		settings.Height,
		settings.CameraPosition,
		settings.CameraDirection,
		settings.CameraUp,
		settings.FieldOfView,
		settings.SamplesPerPixel,
		settings.UseMultisampling,
		settings.Gamma,
	)
	camera.SetWorkers(settings.Workers)
	camera.SetSeed(settings.Seed)
	camera.SetLogger(logger)

	config := NewRenderConfiguration(lighting, scn)
	return camera.Render(config), nil
}
