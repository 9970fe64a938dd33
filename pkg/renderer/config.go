package renderer

import (
	"github.com/lumenray/go-photon-mapper/pkg/integrator"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

// RenderConfiguration bundles the scene with the lighting integrator that
// shades its surfaces. Both are read-only during rendering and shared by
// every worker.
type RenderConfiguration struct {
	scn      *scene.Scene
	lighting integrator.LightingIntegrator
}

// NewRenderConfiguration pairs a finalized scene with an integrator
func NewRenderConfiguration(lighting integrator.LightingIntegrator, scn *scene.Scene) *RenderConfiguration {
	return &RenderConfiguration{scn: scn, lighting: lighting}
}

// Scene returns the configured scene
func (rc *RenderConfiguration) Scene() *scene.Scene {
	return rc.scn
}

// LightingIntegrator returns the configured integrator
func (rc *RenderConfiguration) LightingIntegrator() integrator.LightingIntegrator {
	return rc.lighting
}
