package material

import (
	"math"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// TextureStore exposes the scene's texture registry to materials
type TextureStore interface {
	Texture(idx core.TextureIdx) *Texture
}

// EmissionCoefficients describes per-channel emitted power of a light
// material
type EmissionCoefficients struct {
	Ambient  float64
	Diffuse  float64
	Specular float64
}

// MaxValue returns the strongest emission channel
func (e EmissionCoefficients) MaxValue() float64 {
	return math.Max(e.Ambient, math.Max(e.Diffuse, e.Specular))
}

// MediaIdx identifies a participating medium; media support is vestigial
// and the index is only carried through transitions
type MediaIdx int

// MediaTransition describes the media on either side of a surface
type MediaTransition struct {
	Internal *MediaIdx
	External *MediaIdx
}

// Reflectivity pairs a mirror reflection weight with its tint
type Reflectivity struct {
	Weight float64
	Colour core.Vec3
}

// IORPair carries the refractive indices on either side of an interface
type IORPair struct {
	Inside  float64
	Outside float64
}

// SecondaryRay is a reflection or refraction ray spawned at a surface,
// weighted for selection and tinted by the surface
type SecondaryRay struct {
	Ray    core.Ray
	Colour core.Vec3
	Weight float64
}

// SurfaceInfo is everything the integrators need to shade a surface hit
type SurfaceInfo struct {
	AmbientColour     core.Vec3
	DiffuseColour     core.Vec3
	SpecularColour    core.Vec3
	Emissive          *EmissionCoefficients
	TransparentColour *core.Vec3
	Reflectivity      *Reflectivity
	IndexOfRefraction *IORPair
	Position          core.Vec3
	Normal            core.Vec3
	MediaTransition   *MediaTransition
	Secondaries       []SecondaryRay
}

// SecondaryWeight returns the total selection weight of the secondaries
func (s *SurfaceInfo) SecondaryWeight() float64 {
	total := 0.0
	for _, secondary := range s.Secondaries {
		total += secondary.Weight
	}
	return total
}

// Material computes the shading inputs for a surface hit
type Material interface {
	IsLight() bool
	ComputeSurfaceProperties(store TextureStore, ray core.Ray, f core.Fragment) SurfaceInfo
}

// DefaultMaterial is a flat-coloured, optionally mirror-reflective surface
type DefaultMaterial struct {
	Colour     core.Vec3
	Reflection float64 // Mirror weight; 0 means purely diffuse
}

// NewDefaultMaterial creates a diffuse material with the given colour
func NewDefaultMaterial(colour core.Vec3) *DefaultMaterial {
	return &DefaultMaterial{Colour: colour}
}

// NewReflectiveMaterial creates a material with a mirror component
func NewReflectiveMaterial(colour core.Vec3, reflection float64) *DefaultMaterial {
	return &DefaultMaterial{Colour: colour, Reflection: reflection}
}

func (m *DefaultMaterial) IsLight() bool {
	return false
}

func (m *DefaultMaterial) ComputeSurfaceProperties(store TextureStore, ray core.Ray, f core.Fragment) SurfaceInfo {
	surface := SurfaceInfo{
		AmbientColour:  m.Colour,
		DiffuseColour:  m.Colour,
		SpecularColour: m.Colour,
		Position:       f.Position,
		Normal:         f.Normal,
	}
	if m.Reflection > 0 {
		surface.Reflectivity = &Reflectivity{Weight: m.Reflection, Colour: m.Colour}
	}
	surface.Secondaries = ComputeSecondaries(ray, f, &surface)
	return surface
}

// EmissiveMaterial is a light source surface with constant emission
type EmissiveMaterial struct {
	Colour   core.Vec3
	Emission EmissionCoefficients
}

// NewEmissiveMaterial creates a light material emitting the given colour
func NewEmissiveMaterial(colour core.Vec3, emission EmissionCoefficients) *EmissiveMaterial {
	return &EmissiveMaterial{Colour: colour, Emission: emission}
}

func (m *EmissiveMaterial) IsLight() bool {
	return m.Emission.MaxValue() > 0
}

func (m *EmissiveMaterial) ComputeSurfaceProperties(store TextureStore, ray core.Ray, f core.Fragment) SurfaceInfo {
	emission := m.Emission
	return SurfaceInfo{
		AmbientColour:  m.Colour,
		DiffuseColour:  m.Colour,
		SpecularColour: m.Colour,
		Emissive:       &emission,
		Position:       f.Position,
		Normal:         f.Normal,
	}
}

// TransparentMaterial is a clear dielectric such as glass
type TransparentMaterial struct {
	IOR    float64
	Colour core.Vec3
}

// NewTransparentMaterial creates a clear dielectric with the given index of
// refraction
func NewTransparentMaterial(ior float64) *TransparentMaterial {
	return &TransparentMaterial{IOR: ior, Colour: core.NewVec3(1, 1, 1)}
}

func (m *TransparentMaterial) IsLight() bool {
	return false
}

func (m *TransparentMaterial) ComputeSurfaceProperties(store TextureStore, ray core.Ray, f core.Fragment) SurfaceInfo {
	colour := m.Colour
	surface := SurfaceInfo{
		AmbientColour:     m.Colour,
		DiffuseColour:     m.Colour,
		SpecularColour:    m.Colour,
		TransparentColour: &colour,
		IndexOfRefraction: &IORPair{Inside: m.IOR, Outside: 1.0},
		Position:          f.Position,
		Normal:            f.Normal,
	}
	surface.Secondaries = ComputeSecondaries(ray, f, &surface)
	return surface
}
