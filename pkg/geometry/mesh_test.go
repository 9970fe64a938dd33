package geometry

import (
	"math"
	"testing"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

func quadTriangles(material core.MaterialIdx, z float64) []*Triangle {
	return []*Triangle{
		NewPlainTriangle(material,
			core.NewVec3(-1, -1, z), core.NewVec3(1, -1, z), core.NewVec3(1, 1, z)),
		NewPlainTriangle(material,
			core.NewVec3(-1, -1, z), core.NewVec3(1, 1, z), core.NewVec3(-1, 1, z)),
	}
}

func TestMeshIntersectNearest(t *testing.T) {
	triangles := append(quadTriangles(0, 3), quadTriangles(0, 5)...)
	mesh := NewMesh(triangles)

	ray := core.NewRay(core.NewVec3(0.2, 0.2, 0), core.NewVec3(0, 0, 1))
	collision, _, hit := mesh.Intersect(ray, 0, 1000)
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(collision.Distance-3) > 1e-9 {
		t.Errorf("expected nearest plane at 3, got %f", collision.Distance)
	}
}

func TestMeshLightsFilterByMaterial(t *testing.T) {
	triangles := append(quadTriangles(1, 3), quadTriangles(2, 5)...)
	mesh := NewMesh(triangles)

	lightList := mesh.Lights(func(idx core.MaterialIdx) bool { return idx == 1 })
	if len(lightList) != 2 {
		t.Errorf("expected 2 emissive triangles, got %d", len(lightList))
	}
}

func TestCompoundObjectIntersect(t *testing.T) {
	compound := NewCompoundObject()
	compound.AddObject(NewMesh(quadTriangles(0, 4)))
	compound.AddObject(NewSphereObject(NewSphere(core.NewVec3(0, 0, 2), 0.5, 1)))
	compound.Finalize()

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	collision, shadable, hit := compound.Intersect(ray, 0, 1000)
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(collision.Distance-1.5) > 1e-9 {
		t.Errorf("sphere should be nearest at 1.5, got %f", collision.Distance)
	}
	if _, ok := shadable.(*Sphere); !ok {
		t.Errorf("expected the sphere to be the hit shadable, got %T", shadable)
	}
}

func TestCompoundObjectBeforeFinalize(t *testing.T) {
	compound := NewCompoundObject()
	compound.AddObject(NewMesh(quadTriangles(0, 4)))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	if _, _, hit := compound.Intersect(ray, 0, 1000); hit {
		t.Error("unfinalized compound should not intersect")
	}
}

func TestCompoundObjectLights(t *testing.T) {
	compound := NewCompoundObject()
	compound.AddObject(NewMesh(quadTriangles(7, 2)))
	compound.AddObject(NewSphereObject(NewSphere(core.NewVec3(0, 5, 0), 1, 7)))
	compound.Finalize()

	lightList := compound.Lights(func(idx core.MaterialIdx) bool { return idx == 7 })
	if len(lightList) != 3 {
		t.Errorf("expected 2 triangle lights + 1 sphere light, got %d", len(lightList))
	}
}
