package loaders

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/geometry"
	"github.com/lumenray/go-photon-mapper/pkg/material"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

// LoadGLTFScene reads a .gltf or .glb file into a new finalized Scene.
// Each mesh primitive becomes one Mesh object; PBR base colours map onto
// diffuse materials and emissive factors onto emissive ones.
func LoadGLTFScene(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}

	scn := scene.NewScene()

	materialFor := func(index *int) core.MaterialIdx {
		if index == nil || *index >= len(doc.Materials) {
			return scn.DefaultMaterial()
		}
		gm := doc.Materials[*index]
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("gltf_material_%d", *index)
		}
		return scn.GetOrCreateMaterial(name, func() material.Material {
			emissive := core.NewVec3(
				float64(gm.EmissiveFactor[0]),
				float64(gm.EmissiveFactor[1]),
				float64(gm.EmissiveFactor[2]),
			)
			if emissive.MaxComponent() > 0 {
				return material.NewEmissiveMaterial(core.NewVec3(1, 1, 1), material.EmissionCoefficients{
					Ambient:  emissive.X,
					Diffuse:  emissive.Y,
					Specular: emissive.Z,
				})
			}
			colour := core.NewVec3(0.8, 0.8, 0.8)
			if pbr := gm.PBRMetallicRoughness; pbr != nil {
				base := pbr.BaseColorFactorOrDefault()
				colour = core.NewVec3(float64(base[0]), float64(base[1]), float64(base[2]))
			}
			return material.NewDefaultMaterial(colour)
		})
	}

	for _, mesh := range doc.Meshes {
		for primIdx, prim := range mesh.Primitives {
			triangles, err := loadGLTFPrimitive(doc, scn, prim, materialFor(prim.Material))
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, primIdx, err)
			}
			if len(triangles) > 0 {
				scn.AddObject(geometry.NewMesh(triangles))
			}
		}
	}

	scn.Finalize()
	return scn, nil
}

func loadGLTFPrimitive(doc *gltf.Document, scn *scene.Scene, prim *gltf.Primitive, materialIdx core.MaterialIdx) ([]*geometry.Triangle, error) {
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessor], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	// Register the attribute arrays with the scene so triangles can share
	// indexed normals and texture coordinates
	normalIdxs := make([]core.NormalIdx, len(normals))
	for i, n := range normals {
		normalIdxs[i] = scn.AddNormal(core.NewVec3(float64(n[0]), float64(n[1]), float64(n[2])))
	}
	uvIdxs := make([]core.TextureCoordinateIdx, len(uvs))
	for i, uv := range uvs {
		uvIdxs[i] = scn.AddTextureCoordinate(core.NewVec2(float64(uv[0]), float64(uv[1])))
	}

	vertexAt := func(index int) (geometry.Vertex, error) {
		if index < 0 || index >= len(positions) {
			return geometry.Vertex{}, fmt.Errorf("vertex index %d out of range (have %d)", index, len(positions))
		}
		p := positions[index]
		scn.AddPosition(core.NewVec3(float64(p[0]), float64(p[1]), float64(p[2])))
		vertex := geometry.Vertex{Position: core.NewVec3(float64(p[0]), float64(p[1]), float64(p[2]))}
		if index < len(normalIdxs) && scn.Normal(normalIdxs[index]).LengthSquared() > 0 {
			idx := normalIdxs[index]
			vertex.Normal = &idx
		}
		if index < len(uvIdxs) {
			idx := uvIdxs[index]
			vertex.TexCoord = &idx
		}
		return vertex, nil
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("index count %d is not a triangle list", len(indices))
	}

	triangles := make([]*geometry.Triangle, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		v0, err := vertexAt(int(indices[i]))
		if err != nil {
			return nil, err
		}
		v1, err := vertexAt(int(indices[i+1]))
		if err != nil {
			return nil, err
		}
		v2, err := vertexAt(int(indices[i+2]))
		if err != nil {
			return nil, err
		}
		triangles = append(triangles, geometry.NewTriangle(materialIdx, v0, v1, v2))
	}
	return triangles, nil
}
