package scene

import (
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/geometry"
	"github.com/lumenray/go-photon-mapper/pkg/lights"
	"github.com/lumenray/go-photon-mapper/pkg/material"
)

// Scene owns the shared vertex arrays, the material and texture registries
// and the root aggregate. Registries are append-only with stable indices;
// after Finalize the scene is read-only and safe to share across workers.
type Scene struct {
	positions []core.Vec3
	normals   []core.Vec3
	texCoords []core.Vec2

	materials     []material.Material
	materialNames map[string]core.MaterialIdx

	textures     []*material.Texture
	texturePaths map[string]core.TextureIdx

	root      *geometry.CompoundObject
	lights    []lights.Light
	finalized bool
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{
		materialNames: make(map[string]core.MaterialIdx),
		texturePaths:  make(map[string]core.TextureIdx),
		root:          geometry.NewCompoundObject(),
	}
}

// AddPosition appends a vertex position, returning its stable index
func (s *Scene) AddPosition(p core.Vec3) int {
	s.positions = append(s.positions, p)
	return len(s.positions) - 1
}

// Position returns a vertex position by index
func (s *Scene) Position(idx int) core.Vec3 {
	return s.positions[idx]
}

// PositionCount returns the number of registered positions
func (s *Scene) PositionCount() int {
	return len(s.positions)
}

// AddNormal appends a vertex normal, returning its stable index
func (s *Scene) AddNormal(n core.Vec3) core.NormalIdx {
	s.normals = append(s.normals, n)
	return core.NormalIdx(len(s.normals) - 1)
}

// Normal implements core.VertexSource
func (s *Scene) Normal(idx core.NormalIdx) core.Vec3 {
	return s.normals[idx]
}

// NormalCount returns the number of registered normals
func (s *Scene) NormalCount() int {
	return len(s.normals)
}

// AddTextureCoordinate appends a vertex texture coordinate
func (s *Scene) AddTextureCoordinate(uv core.Vec2) core.TextureCoordinateIdx {
	s.texCoords = append(s.texCoords, uv)
	return core.TextureCoordinateIdx(len(s.texCoords) - 1)
}

// TextureCoordinate implements core.VertexSource
func (s *Scene) TextureCoordinate(idx core.TextureCoordinateIdx) core.Vec2 {
	return s.texCoords[idx]
}

// TextureCoordinateCount returns the number of registered coordinates
func (s *Scene) TextureCoordinateCount() int {
	return len(s.texCoords)
}

// AddMaterial registers a material under a unique name, returning the
// existing index when the name is already present
func (s *Scene) AddMaterial(name string, mat material.Material) core.MaterialIdx {
	if existing, ok := s.materialNames[name]; ok {
		return existing
	}
	s.materials = append(s.materials, mat)
	idx := core.MaterialIdx(len(s.materials) - 1)
	s.materialNames[name] = idx
	return idx
}

// GetOrCreateMaterial resolves a material by name, invoking create only
// when the name is new
func (s *Scene) GetOrCreateMaterial(name string, create func() material.Material) core.MaterialIdx {
	if existing, ok := s.materialNames[name]; ok {
		return existing
	}
	return s.AddMaterial(name, create())
}

// MaterialByName looks up a registered material's index
func (s *Scene) MaterialByName(name string) (core.MaterialIdx, bool) {
	idx, ok := s.materialNames[name]
	return idx, ok
}

// Material returns a material by index
func (s *Scene) Material(idx core.MaterialIdx) material.Material {
	return s.materials[idx]
}

// MaterialCount returns the number of registered materials
func (s *Scene) MaterialCount() int {
	return len(s.materials)
}

// DefaultMaterial returns the scene's fallback material, creating it on
// first use
func (s *Scene) DefaultMaterial() core.MaterialIdx {
	return s.GetOrCreateMaterial("__default", func() material.Material {
		return material.NewDefaultMaterial(core.NewVec3(0.7, 0.7, 0.7))
	})
}

// AddTexture registers a texture under its path, de-duplicating repeats
func (s *Scene) AddTexture(path string, tex *material.Texture) core.TextureIdx {
	if existing, ok := s.texturePaths[path]; ok {
		return existing
	}
	s.textures = append(s.textures, tex)
	idx := core.TextureIdx(len(s.textures) - 1)
	s.texturePaths[path] = idx
	return idx
}

// TextureByPath looks up a registered texture's index
func (s *Scene) TextureByPath(path string) (core.TextureIdx, bool) {
	idx, ok := s.texturePaths[path]
	return idx, ok
}

// Texture implements material.TextureStore
func (s *Scene) Texture(idx core.TextureIdx) *material.Texture {
	if int(idx) < 0 || int(idx) >= len(s.textures) {
		return nil
	}
	return s.textures[idx]
}

// TextureCount returns the number of registered textures
func (s *Scene) TextureCount() int {
	return len(s.textures)
}

// AddObject appends an object to the root aggregate
func (s *Scene) AddObject(object core.Intersectable) {
	s.root.AddObject(object)
}

// ObjectCount returns the number of root-level objects
func (s *Scene) ObjectCount() int {
	return s.root.Len()
}

// IsLight reports whether a material emits light
func (s *Scene) IsLight(idx core.MaterialIdx) bool {
	return s.materials[idx].IsLight()
}

// Finalize builds the root BVH and discovers the scene's area lights.
// The scene is read-only afterwards.
func (s *Scene) Finalize() {
	s.root.Finalize()
	s.lights = s.root.Lights(s.IsLight)
	s.finalized = true
}

// Finalized reports whether Finalize has run
func (s *Scene) Finalized() bool {
	return s.finalized
}

// Bounds returns the bounding box of the scene's geometry
func (s *Scene) Bounds() core.AABB {
	return s.root.Bounds()
}

// Intersect finds the nearest hit for the ray within its own interval
func (s *Scene) Intersect(ray core.Ray) (core.Collision, core.Shadable, bool) {
	return s.root.Intersect(ray, ray.Min, ray.Max)
}

// SurfaceAt implements lights.MaterialEvaluator
func (s *Scene) SurfaceAt(idx core.MaterialIdx, ray core.Ray, f core.Fragment) material.SurfaceInfo {
	return s.materials[idx].ComputeSurfaceProperties(s, ray, f)
}

// Lights returns the area lights discovered at Finalize
func (s *Scene) Lights() []lights.Light {
	return s.lights
}

// LightSamples draws a pool of total samples spread evenly over the
// scene's lights
func (s *Scene) LightSamples(total int, random *rand.Rand) []lights.LightSample {
	if len(s.lights) == 0 || total <= 0 {
		return nil
	}
	perLight := max(1, total/len(s.lights))
	samples := make([]lights.LightSample, 0, perLight*len(s.lights))
	for _, light := range s.lights {
		samples = append(samples, light.Samples(perLight, s, random)...)
	}
	return samples
}
