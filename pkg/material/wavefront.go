package material

import (
	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// ColourProperty is a Wavefront surface channel: a flat colour, a texture,
// or both (texture wins when sampling)
type ColourProperty struct {
	Colour  *core.Vec3
	Texture *core.TextureIdx
}

// NewColourProperty builds the property from optional colour and texture,
// dropping all-zero colours the way MTL loaders conventionally do
func NewColourProperty(colour *core.Vec3, texture *core.TextureIdx) ColourProperty {
	if colour != nil && colour.MaxComponent() == 0 {
		colour = nil
	}
	return ColourProperty{Colour: colour, Texture: texture}
}

// IsSet reports whether the channel has any value at all
func (p ColourProperty) IsSet() bool {
	return p.Colour != nil || p.Texture != nil
}

func (p ColourProperty) valueFor(store TextureStore, f core.Fragment) core.Vec3 {
	if p.Texture != nil {
		if tex := store.Texture(*p.Texture); tex != nil {
			return tex.Sample(f.UV)
		}
	}
	if p.Colour != nil {
		return *p.Colour
	}
	return core.Vec3{}
}

// EmissionProperty is the Ke channel: coefficients, a texture, or both
type EmissionProperty struct {
	Coefficients *EmissionCoefficients
	Texture      *core.TextureIdx
}

// IsSet reports whether the material emits at all
func (p EmissionProperty) IsSet() bool {
	if p.Texture != nil {
		return true
	}
	return p.Coefficients != nil && p.Coefficients.MaxValue() > 0
}

func (p EmissionProperty) valueFor(store TextureStore, f core.Fragment) *EmissionCoefficients {
	if p.Texture != nil {
		if tex := store.Texture(*p.Texture); tex != nil {
			sample := tex.Sample(f.UV)
			return &EmissionCoefficients{Ambient: sample.X, Diffuse: sample.Y, Specular: sample.Z}
		}
	}
	if p.Coefficients != nil && p.Coefficients.MaxValue() > 0 {
		coefficients := *p.Coefficients
		return &coefficients
	}
	return nil
}

// WFMaterial is a material loaded from a Wavefront MTL definition.
// Field meanings follow http://paulbourke.net/dataformats/mtl/
type WFMaterial struct {
	Name              string
	Ambient           ColourProperty // Ka
	Diffuse           ColourProperty // Kd
	Specular          ColourProperty // Ks
	Emissive          EmissionProperty
	BumpMap           *core.TextureIdx
	TransparentColour *core.Vec3 // Tf
	Dissolve          float64    // d; 1 is fully opaque
	SpecularExponent  float64    // Ns
	IndexOfRefraction float64    // Ni; 0 when unset
	IlluminationModel int        // illum
}

func (m *WFMaterial) IsLight() bool {
	return m.Emissive.IsSet()
}

// perturbNormal applies the bump map's gradients along the surface tangent
// frame, falling back to the shading normal for degenerate results
func (m *WFMaterial) perturbNormal(store TextureStore, f core.Fragment) core.Vec3 {
	if m.BumpMap == nil {
		return f.Normal
	}
	tex := store.Texture(*m.BumpMap)
	if tex == nil {
		return f.Normal
	}
	fu, fv := tex.Gradient(f.UV)
	normal := f.Normal
	ndpdv := normal.Cross(f.Dpdv)
	ndpdu := normal.Cross(f.Dpdu)
	perturbed := normal.Add(ndpdv.Multiply(fu).Subtract(ndpdu.Multiply(fv)))
	if perturbed.LengthSquared() == 0 {
		perturbed = normal
	}
	if perturbed.Dot(f.View) > 0 {
		perturbed = perturbed.Negate()
	}
	return perturbed.Normalize()
}

func (m *WFMaterial) ComputeSurfaceProperties(store TextureStore, ray core.Ray, f core.Fragment) SurfaceInfo {
	surface := SurfaceInfo{
		AmbientColour:  m.Ambient.valueFor(store, f),
		DiffuseColour:  m.Diffuse.valueFor(store, f),
		SpecularColour: m.Specular.valueFor(store, f),
		Emissive:       m.Emissive.valueFor(store, f),
		Position:       f.Position,
		Normal:         m.perturbNormal(store, f),
	}

	// Models below 5 are colour-only; 5 adds mirror reflection; 6 and up
	// refract through the surface
	if m.IlluminationModel < 5 {
		return surface
	}

	if m.IlluminationModel == 5 {
		surface.Reflectivity = &Reflectivity{Weight: 1.0, Colour: surface.SpecularColour}
		surface.Secondaries = ComputeSecondaries(ray, f, &surface)
		return surface
	}

	transparent := core.NewVec3(1, 1, 1)
	if m.TransparentColour != nil {
		transparent = *m.TransparentColour
	}
	surface.TransparentColour = &transparent
	if m.IndexOfRefraction > 0 {
		surface.IndexOfRefraction = &IORPair{Inside: m.IndexOfRefraction, Outside: 1.0}
	}
	surface.Secondaries = ComputeSecondaries(ray, f, &surface)
	return surface
}
