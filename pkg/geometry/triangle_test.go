package geometry

import (
	"math"
	"testing"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// stubVertexSource serves fixed normal/texcoord arrays for fragment tests
type stubVertexSource struct {
	normals   []core.Vec3
	texCoords []core.Vec2
}

func (s stubVertexSource) Normal(idx core.NormalIdx) core.Vec3 {
	return s.normals[idx]
}

func (s stubVertexSource) TextureCoordinate(idx core.TextureCoordinateIdx) core.Vec2 {
	return s.texCoords[idx]
}

func unitZTriangle() *Triangle {
	return NewPlainTriangle(0,
		core.NewVec3(-1, -1, 2),
		core.NewVec3(1, -1, 2),
		core.NewVec3(0, 1, 2),
	)
}

func TestTriangleIntersectHit(t *testing.T) {
	triangle := unitZTriangle()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	collision, shadable, hit := triangle.Intersect(ray, 0, 1000)
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(collision.Distance-2) > 1e-9 {
		t.Errorf("expected distance 2, got %f", collision.Distance)
	}
	if shadable == nil {
		t.Error("hit should return the shadable primitive")
	}

	// Barycentrics must sum below 1 inside the triangle
	if collision.UV.X < 0 || collision.UV.Y < 0 || collision.UV.X+collision.UV.Y > 1 {
		t.Errorf("invalid barycentrics %v", collision.UV)
	}
}

func TestTriangleIntersectMisses(t *testing.T) {
	triangle := unitZTriangle()

	cases := []struct {
		name string
		ray  core.Ray
	}{
		{"outside", core.NewRay(core.NewVec3(5, 5, 0), core.NewVec3(0, 0, 1))},
		{"parallel", core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))},
		{"behind", core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, hit := triangle.Intersect(tc.ray, 0, 1000); hit {
				t.Error("expected miss")
			}
		})
	}
}

func TestTriangleIntervalBoundary(t *testing.T) {
	triangle := unitZTriangle()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	if _, _, hit := triangle.Intersect(ray, 2.0, 1000); hit {
		t.Error("tMin at the hit distance should miss")
	}
	if _, _, hit := triangle.Intersect(ray, 2.0-1e-9, 1000); !hit {
		t.Error("tMin just inside the hit distance should hit")
	}
	if _, _, hit := triangle.Intersect(ray, 0, 2.0); hit {
		t.Error("tMax at the hit distance should miss")
	}
}

func TestTriangleBounds(t *testing.T) {
	triangle := unitZTriangle()
	bounds := triangle.Bounds()
	if !bounds.Contains(core.NewVec3(0, 0, 2)) {
		t.Error("bounds should contain the centroid")
	}
	if bounds.Min.Z != 2 || bounds.Max.Z != 2 {
		t.Errorf("flat triangle should have flat bounds, got %v", bounds)
	}
}

func TestTriangleFragmentInterpolatesNormals(t *testing.T) {
	src := stubVertexSource{
		normals: []core.Vec3{
			core.NewVec3(0, 0, -1),
			core.NewVec3(0, 0, -1),
			core.NewVec3(0, 0, -1),
		},
		texCoords: []core.Vec2{
			core.NewVec2(0, 0),
			core.NewVec2(1, 0),
			core.NewVec2(0, 1),
		},
	}
	n0, n1, n2 := core.NormalIdx(0), core.NormalIdx(1), core.NormalIdx(2)
	t0, t1, t2 := core.TextureCoordinateIdx(0), core.TextureCoordinateIdx(1), core.TextureCoordinateIdx(2)

	triangle := NewTriangle(3,
		Vertex{Position: core.NewVec3(-1, -1, 2), TexCoord: &t0, Normal: &n0},
		Vertex{Position: core.NewVec3(1, -1, 2), TexCoord: &t1, Normal: &n1},
		Vertex{Position: core.NewVec3(0, 1, 2), TexCoord: &t2, Normal: &n2},
	)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	collision, _, hit := triangle.Intersect(ray, 0, 1000)
	if !hit {
		t.Fatal("expected hit")
	}

	fragment := triangle.ComputeFragment(src, ray, collision)
	if !fragment.Normal.Equals(core.NewVec3(0, 0, -1)) {
		t.Errorf("expected interpolated normal {0,0,-1}, got %v", fragment.Normal)
	}
	if fragment.Material != 3 {
		t.Errorf("fragment should carry the material id, got %d", fragment.Material)
	}
	if fragment.Position.Z != 2 {
		t.Errorf("fragment position should lie on the triangle plane, got %v", fragment.Position)
	}
}

func TestTriangleZeroLengthNormalFallsBack(t *testing.T) {
	src := stubVertexSource{normals: []core.Vec3{{}, {}, {}}}
	n0, n1, n2 := core.NormalIdx(0), core.NormalIdx(1), core.NormalIdx(2)
	triangle := NewTriangle(0,
		Vertex{Position: core.NewVec3(-1, -1, 2), Normal: &n0},
		Vertex{Position: core.NewVec3(1, -1, 2), Normal: &n1},
		Vertex{Position: core.NewVec3(0, 1, 2), Normal: &n2},
	)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	collision, _, _ := triangle.Intersect(ray, 0, 1000)

	fragment := triangle.ComputeFragment(src, ray, collision)
	if !fragment.Normal.Equals(triangle.GeometricNormal()) {
		t.Errorf("zero shading normals should fall back to the geometric normal, got %v", fragment.Normal)
	}
}

func TestSphereIntersect(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 5), 1, 0)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	collision, _, hit := sphere.Intersect(ray, 0, 1000)
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(collision.Distance-4) > 1e-9 {
		t.Errorf("expected distance 4, got %f", collision.Distance)
	}

	// From inside, the far surface is reported
	inside := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1))
	collision, _, hit = sphere.Intersect(inside, 0, 1000)
	if !hit {
		t.Fatal("expected hit from inside")
	}
	if math.Abs(collision.Distance-1) > 1e-9 {
		t.Errorf("expected far-side distance 1, got %f", collision.Distance)
	}

	// Tangent-adjacent miss
	miss := core.NewRay(core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 1))
	if _, _, hit := sphere.Intersect(miss, 0, 1000); hit {
		t.Error("expected miss")
	}
}

func TestSphereFragmentNormal(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 5), 1, 2)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	collision, _, _ := sphere.Intersect(ray, 0, 1000)

	fragment := sphere.ComputeFragment(stubVertexSource{}, ray, collision)
	if !fragment.Normal.Equals(core.NewVec3(0, 0, -1)) {
		t.Errorf("expected normal {0,0,-1} at near pole, got %v", fragment.Normal)
	}
	if math.Abs(fragment.Normal.Length()-1) > 1e-9 {
		t.Errorf("normal should be unit length")
	}
}
