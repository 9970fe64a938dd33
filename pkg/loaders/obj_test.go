package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const boxMTL = `# materials
newmtl white
Ka 0.2 0.2 0.2
Kd 0.8 0.8 0.8
illum 2

newmtl lamp
Kd 1.0 1.0 1.0
Ke 0.0 1.0 0.0
illum 1

newmtl glass
Kd 1.0 1.0 1.0
Tf 1.0 1.0 1.0
Ni 1.5
illum 7
`

const boxOBJ = `mtllib box.mtl
v -1 0 -1
v 1 0 -1
v 1 0 1
v -1 0 1
v -1 2 -1
v 1 2 -1
v 1 2 1
v -1 2 1
vn 0 1 0
usemtl white
f 1//1 2//1 3//1 4//1
usemtl lamp
f 5 6 7
usemtl glass
f 1 2 6
`

func TestLoadSceneParsesGeometryAndMaterials(t *testing.T) {
	dir := writeFiles(t, map[string]string{"box.obj": boxOBJ, "box.mtl": boxMTL})

	scn, err := LoadScene(filepath.Join(dir, "box.obj"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if scn.PositionCount() != 8 {
		t.Errorf("expected 8 positions, got %d", scn.PositionCount())
	}
	if scn.NormalCount() != 1 {
		t.Errorf("expected 1 normal, got %d", scn.NormalCount())
	}
	// Three materials are used: white, lamp and glass
	if scn.MaterialCount() != 3 {
		t.Errorf("expected 3 materials, got %d", scn.MaterialCount())
	}
	if !scn.Finalized() {
		t.Error("loaded scene should be finalized")
	}

	if _, ok := scn.MaterialByName("white"); !ok {
		t.Error("material white should be registered")
	}
	lampIdx, ok := scn.MaterialByName("lamp")
	if !ok {
		t.Fatal("material lamp should be registered")
	}
	if !scn.IsLight(lampIdx) {
		t.Error("Ke should make the lamp a light")
	}
	if len(scn.Lights()) != 1 {
		t.Errorf("expected 1 triangle light, got %d", len(scn.Lights()))
	}

	// The floor quad is intersectable
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	collision, _, hit := scn.Intersect(ray)
	if !hit {
		t.Fatal("expected floor hit")
	}
	if collision.Distance < 0.99 || collision.Distance > 1.01 {
		t.Errorf("expected distance 1, got %f", collision.Distance)
	}
}

func TestLoadSceneMissingFile(t *testing.T) {
	if _, err := LoadScene(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("missing scene file should error")
	}
}

func TestLoadSceneDanglingIndex(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"})
	if _, err := LoadScene(filepath.Join(dir, "bad.obj")); err == nil {
		t.Error("dangling vertex index should error")
	}
}

func TestLoadSceneDegenerateFace(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.obj": "v 0 0 0\nv 1 0 0\nf 1 2\n"})
	if _, err := LoadScene(filepath.Join(dir, "bad.obj")); err == nil {
		t.Error("two-vertex face should error")
	}
}

func TestLoadSceneUnknownMaterial(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl ghost\nf 1 2 3\n"})
	if _, err := LoadScene(filepath.Join(dir, "bad.obj")); err == nil {
		t.Error("undefined material should error")
	}
}

func TestLoadSceneMissingTextureDegradesToColour(t *testing.T) {
	mtl := "newmtl textured\nKd 0.5 0.5 0.5\nmap_Kd missing_texture.png\n"
	obj := "mtllib t.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl textured\nf 1 2 3\n"
	dir := writeFiles(t, map[string]string{"t.obj": obj, "t.mtl": mtl})

	scn, err := LoadScene(filepath.Join(dir, "t.obj"))
	if err != nil {
		t.Fatalf("unresolvable texture should not fail the load: %v", err)
	}
	if scn.TextureCount() != 0 {
		t.Errorf("expected no textures, got %d", scn.TextureCount())
	}
}

func TestLoadSceneNegativeIndices(t *testing.T) {
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	dir := writeFiles(t, map[string]string{"n.obj": obj})

	scn, err := LoadScene(filepath.Join(dir, "n.obj"))
	if err != nil {
		t.Fatalf("negative indices are valid OBJ: %v", err)
	}
	if scn.ObjectCount() != 1 {
		t.Errorf("expected 1 object, got %d", scn.ObjectCount())
	}
}

func TestLoadSceneZeroNormalFallsBack(t *testing.T) {
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 0\nf 1//1 2//1 3//1\n"
	dir := writeFiles(t, map[string]string{"z.obj": obj})

	scn, err := LoadScene(filepath.Join(dir, "z.obj"))
	if err != nil {
		t.Fatalf("zero-length normals should be recovered: %v", err)
	}

	ray := core.NewRay(core.NewVec3(0.25, 0.25, -1), core.NewVec3(0, 0, 1))
	collision, shadable, hit := scn.Intersect(ray)
	if !hit {
		t.Fatal("expected hit")
	}
	fragment := shadable.ComputeFragment(scn, ray, collision)
	if fragment.Normal.LengthSquared() == 0 {
		t.Error("fragment should fall back to the geometric normal")
	}
}
