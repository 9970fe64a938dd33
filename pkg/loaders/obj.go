package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/geometry"
	"github.com/lumenray/go-photon-mapper/pkg/material"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

// mtlDefinition mirrors one newmtl block of an MTL file
type mtlDefinition struct {
	name              string
	ambient           *core.Vec3 // Ka
	diffuse           *core.Vec3 // Kd
	specular          *core.Vec3 // Ks
	emissive          *core.Vec3 // Ke
	transmission      *core.Vec3 // Tf
	dissolve          float64    // d
	specularExponent  float64    // Ns
	indexOfRefraction float64    // Ni
	illum             int

	mapAmbient  string
	mapDiffuse  string
	mapSpecular string
	mapEmissive string
	mapBump     string
}

// LoadScene reads a Wavefront OBJ file and its MTL libraries into a new
// finalized Scene. Faces are triangulated as fans; polygons with fewer
// than three vertices and out-of-range indices are malformed and fail the
// load. Unresolvable textures degrade to colour-only materials.
func LoadScene(path string) (*scene.Scene, error) {
	file, err := OpenCaseInsensitive(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	scn := scene.NewScene()
	loader := &objLoader{
		scn:       scn,
		directory: filepath.Dir(path),
		materials: make(map[string]*mtlDefinition),
	}
	if err := loader.parse(file); err != nil {
		return nil, err
	}
	loader.flushObject()
	scn.Finalize()
	return scn, nil
}

type objLoader struct {
	scn       *scene.Scene
	directory string
	materials map[string]*mtlDefinition

	currentMaterial core.MaterialIdx
	hasMaterial     bool
	triangles       []*geometry.Triangle
	line            int
}

func (l *objLoader) parse(file *os.File) error {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		l.line++
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			err = l.parsePosition(fields[1:])
		case "vn":
			err = l.parseNormal(fields[1:])
		case "vt":
			err = l.parseTexCoord(fields[1:])
		case "f":
			err = l.parseFace(fields[1:])
		case "mtllib":
			err = l.loadMTL(fields[1:])
		case "usemtl":
			err = l.useMaterial(fields[1:])
		case "o", "g":
			l.flushObject()
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", l.line, err)
		}
	}
	return scanner.Err()
}

func parseFloats(fields []string, want int) ([]float64, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(fields))
	}
	values := make([]float64, want)
	for i := 0; i < want; i++ {
		value, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", fields[i])
		}
		values[i] = value
	}
	return values, nil
}

func (l *objLoader) parsePosition(fields []string) error {
	values, err := parseFloats(fields, 3)
	if err != nil {
		return err
	}
	l.scn.AddPosition(core.NewVec3(values[0], values[1], values[2]))
	return nil
}

func (l *objLoader) parseNormal(fields []string) error {
	values, err := parseFloats(fields, 3)
	if err != nil {
		return err
	}
	// Zero-length normals stay in the array to keep indices stable; they
	// are dropped per-vertex during face parsing
	l.scn.AddNormal(core.NewVec3(values[0], values[1], values[2]))
	return nil
}

func (l *objLoader) parseTexCoord(fields []string) error {
	values, err := parseFloats(fields, 2)
	if err != nil {
		return err
	}
	l.scn.AddTextureCoordinate(core.NewVec2(values[0], values[1]))
	return nil
}

// resolveIndex maps a 1-based, possibly negative OBJ index into the array
func resolveIndex(value, count int) (int, error) {
	switch {
	case value > 0 && value <= count:
		return value - 1, nil
	case value < 0 && -value <= count:
		return count + value, nil
	default:
		return 0, fmt.Errorf("index %d out of range (have %d)", value, count)
	}
}

func (l *objLoader) parseVertex(token string) (geometry.Vertex, error) {
	parts := strings.Split(token, "/")
	position, err := strconv.Atoi(parts[0])
	if err != nil {
		return geometry.Vertex{}, fmt.Errorf("invalid vertex %q", token)
	}
	posIdx, err := resolveIndex(position, l.scn.PositionCount())
	if err != nil {
		return geometry.Vertex{}, err
	}
	vertex := geometry.Vertex{Position: l.scn.Position(posIdx)}

	if len(parts) > 1 && parts[1] != "" {
		tex, err := strconv.Atoi(parts[1])
		if err != nil {
			return geometry.Vertex{}, fmt.Errorf("invalid texture index %q", token)
		}
		texIdx, err := resolveIndex(tex, l.scn.TextureCoordinateCount())
		if err != nil {
			return geometry.Vertex{}, err
		}
		idx := core.TextureCoordinateIdx(texIdx)
		vertex.TexCoord = &idx
	}
	if len(parts) > 2 && parts[2] != "" {
		normal, err := strconv.Atoi(parts[2])
		if err != nil {
			return geometry.Vertex{}, fmt.Errorf("invalid normal index %q", token)
		}
		normalIdx, err := resolveIndex(normal, l.scn.NormalCount())
		if err != nil {
			return geometry.Vertex{}, err
		}
		// A degenerate stored normal falls back to the geometric normal
		if l.scn.Normal(core.NormalIdx(normalIdx)).LengthSquared() > 0 {
			idx := core.NormalIdx(normalIdx)
			vertex.Normal = &idx
		}
	}
	return vertex, nil
}

func (l *objLoader) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face with %d vertices cannot be triangulated", len(fields))
	}
	vertices := make([]geometry.Vertex, len(fields))
	for i, token := range fields {
		vertex, err := l.parseVertex(token)
		if err != nil {
			return err
		}
		vertices[i] = vertex
	}

	materialIdx := l.currentMaterial
	if !l.hasMaterial {
		materialIdx = l.scn.DefaultMaterial()
	}
	for i := 1; i < len(vertices)-1; i++ {
		l.triangles = append(l.triangles,
			geometry.NewTriangle(materialIdx, vertices[0], vertices[i], vertices[i+1]))
	}
	return nil
}

// flushObject turns the accumulated triangles into a mesh on the scene
func (l *objLoader) flushObject() {
	if len(l.triangles) == 0 {
		return
	}
	l.scn.AddObject(geometry.NewMesh(l.triangles))
	l.triangles = nil
}

func (l *objLoader) useMaterial(fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("usemtl without a name")
	}
	name := fields[0]
	if idx, ok := l.scn.MaterialByName(name); ok {
		l.currentMaterial = idx
		l.hasMaterial = true
		return nil
	}
	definition, ok := l.materials[name]
	if !ok {
		return fmt.Errorf("material %q not defined in any mtllib", name)
	}
	l.currentMaterial = l.scn.AddMaterial(name, l.buildMaterial(definition))
	l.hasMaterial = true
	return nil
}

// textureFor loads a texture referenced by an MTL map statement, returning
// nil (colour-only) when the image cannot be resolved
func (l *objLoader) textureFor(name string) *core.TextureIdx {
	if name == "" {
		return nil
	}
	path := filepath.Join(l.directory, name)
	if idx, ok := l.scn.TextureByPath(path); ok {
		return &idx
	}
	texture, err := LoadTexture(path)
	if err != nil {
		return nil
	}
	idx := l.scn.AddTexture(path, texture)
	return &idx
}

func (l *objLoader) buildMaterial(def *mtlDefinition) material.Material {
	mat := &material.WFMaterial{
		Name:              def.name,
		Ambient:           material.NewColourProperty(def.ambient, l.textureFor(def.mapAmbient)),
		Diffuse:           material.NewColourProperty(def.diffuse, l.textureFor(def.mapDiffuse)),
		Specular:          material.NewColourProperty(def.specular, l.textureFor(def.mapSpecular)),
		BumpMap:           l.textureFor(def.mapBump),
		TransparentColour: def.transmission,
		Dissolve:          def.dissolve,
		SpecularExponent:  def.specularExponent,
		IndexOfRefraction: def.indexOfRefraction,
		IlluminationModel: def.illum,
	}
	if def.emissive != nil && def.emissive.MaxComponent() > 0 {
		mat.Emissive = material.EmissionProperty{
			Coefficients: &material.EmissionCoefficients{
				Ambient:  def.emissive.X,
				Diffuse:  def.emissive.Y,
				Specular: def.emissive.Z,
			},
		}
	}
	if def.mapEmissive != "" {
		mat.Emissive.Texture = l.textureFor(def.mapEmissive)
	}
	return mat
}

func (l *objLoader) loadMTL(fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("mtllib without a file name")
	}
	path := filepath.Join(l.directory, fields[0])
	file, err := OpenCaseInsensitive(path)
	if err != nil {
		return fmt.Errorf("failed to open material library: %w", err)
	}
	defer file.Close()

	var current *mtlDefinition
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		key := fields[0]
		args := fields[1:]

		if key == "newmtl" {
			if len(args) == 0 {
				return fmt.Errorf("newmtl without a name in %s", path)
			}
			current = &mtlDefinition{name: args[0], dissolve: 1, illum: 4}
			l.materials[args[0]] = current
			continue
		}
		if current == nil {
			continue
		}

		switch key {
		case "Ka", "Kd", "Ks", "Ke", "Tf":
			values, err := parseFloats(args, 3)
			if err != nil {
				return fmt.Errorf("%s in %s: %w", key, path, err)
			}
			colour := core.NewVec3(values[0], values[1], values[2])
			switch key {
			case "Ka":
				current.ambient = &colour
			case "Kd":
				current.diffuse = &colour
			case "Ks":
				current.specular = &colour
			case "Ke":
				current.emissive = &colour
			case "Tf":
				current.transmission = &colour
			}
		case "Ns", "Ni", "d":
			values, err := parseFloats(args, 1)
			if err != nil {
				return fmt.Errorf("%s in %s: %w", key, path, err)
			}
			switch key {
			case "Ns":
				current.specularExponent = values[0]
			case "Ni":
				current.indexOfRefraction = values[0]
			case "d":
				current.dissolve = values[0]
			}
		case "illum":
			if len(args) > 0 {
				if value, err := strconv.Atoi(args[0]); err == nil {
					current.illum = value
				}
			}
		case "map_Ka", "map_Kd", "map_Ks", "map_Ke", "map_bump", "bump", "map_Bump":
			if len(args) == 0 {
				continue
			}
			switch key {
			case "map_Ka":
				current.mapAmbient = args[0]
			case "map_Kd":
				current.mapDiffuse = args[0]
			case "map_Ks":
				current.mapSpecular = args[0]
			case "map_Ke":
				current.mapEmissive = args[0]
			default:
				// Bump statements may carry -bm options; the file name is last
				current.mapBump = args[len(args)-1]
			}
		}
	}
	return scanner.Err()
}
