package integrator

import (
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/material"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

// SampleLighting is the lighting arriving at a shaded surface point,
// split by the channel it modulates
type SampleLighting struct {
	Diffuse  core.Vec3
	Ambient  core.Vec3
	Specular core.Vec3
}

// LightingIntegrator estimates the light arriving at a surface hit
type LightingIntegrator interface {
	Lighting(scn *scene.Scene, f core.Fragment, surface *material.SurfaceInfo, random *rand.Rand) SampleLighting
}

// IndirectSource supplies an indirect ambient estimate, optionally also
// answering shadow queries so the direct integrator can skip shadow rays
type IndirectSource interface {
	LightingAndShadow(scn *scene.Scene, f core.Fragment, surface *material.SurfaceInfo) (ambient *core.Vec3, shadowed *bool)
}
