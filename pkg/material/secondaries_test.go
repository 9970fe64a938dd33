package material

import (
	"math"
	"testing"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

type emptyStore struct{}

func (emptyStore) Texture(idx core.TextureIdx) *Texture { return nil }

func glassHit(direction core.Vec3) (core.Ray, core.Fragment) {
	ray := core.NewRay(core.NewVec3(0, 1, 0), direction)
	fragment := core.Fragment{
		Position:   core.NewVec3(0, 0, 0),
		Normal:     core.NewVec3(0, 1, 0),
		TrueNormal: core.NewVec3(0, 1, 0),
		View:       direction,
	}
	return ray, fragment
}

func TestOpaqueReflectiveSpawnsSingleMirrorRay(t *testing.T) {
	mat := NewReflectiveMaterial(core.NewVec3(0.8, 0.8, 0.8), 0.5)
	direction := core.NewVec3(1, -1, 0).Normalize()
	ray, fragment := glassHit(direction)

	surface := mat.ComputeSurfaceProperties(emptyStore{}, ray, fragment)
	if len(surface.Secondaries) != 1 {
		t.Fatalf("expected 1 secondary, got %d", len(surface.Secondaries))
	}
	secondary := surface.Secondaries[0]
	if secondary.Weight != 0.5 {
		t.Errorf("expected reflection weight 0.5, got %f", secondary.Weight)
	}

	want := direction.Reflect(fragment.Normal)
	if !secondary.Ray.Direction.Equals(want) {
		t.Errorf("expected reflected direction %v, got %v", want, secondary.Ray.Direction)
	}

	// Origin is offset along the reflected direction to avoid re-hitting
	offset := secondary.Ray.Origin.Subtract(surface.Position)
	if math.Abs(offset.Length()-0.01) > 1e-9 {
		t.Errorf("expected 0.01 origin offset, got %f", offset.Length())
	}
}

func TestPureDiffuseHasNoSecondaries(t *testing.T) {
	mat := NewDefaultMaterial(core.NewVec3(0.5, 0.5, 0.5))
	ray, fragment := glassHit(core.NewVec3(0, -1, 0))
	surface := mat.ComputeSurfaceProperties(emptyStore{}, ray, fragment)
	if len(surface.Secondaries) != 0 {
		t.Errorf("diffuse material should have no secondaries, got %d", len(surface.Secondaries))
	}
}

func TestTransparentWeightsSumToOne(t *testing.T) {
	mat := NewTransparentMaterial(1.5)
	direction := core.NewVec3(0.4, -1, 0.1).Normalize()
	ray, fragment := glassHit(direction)

	surface := mat.ComputeSurfaceProperties(emptyStore{}, ray, fragment)
	if len(surface.Secondaries) == 0 {
		t.Fatal("transparent material must spawn secondaries")
	}
	total := surface.SecondaryWeight()
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("secondary weights should sum to 1, got %f", total)
	}
}

func TestTransparentGrazingAngleReflectsStrongly(t *testing.T) {
	mat := NewTransparentMaterial(1.5)

	surfaceFor := func(direction core.Vec3) SurfaceInfo {
		ray, fragment := glassHit(direction.Normalize())
		return mat.ComputeSurfaceProperties(emptyStore{}, ray, fragment)
	}

	// Near-normal incidence: weak reflection, strong refraction.
	nearNormal := surfaceFor(core.NewVec3(0.05, -1, 0))
	// Grazing incidence: Schlick term dominates
	grazing := surfaceFor(core.NewVec3(1, -0.08, 0))

	reflectionWeight := func(surface SurfaceInfo) float64 {
		if len(surface.Secondaries) < 2 {
			return 0
		}
		return surface.Secondaries[0].Weight
	}
	if reflectionWeight(grazing) <= reflectionWeight(nearNormal) {
		t.Errorf("grazing reflection %f should exceed near-normal %f",
			reflectionWeight(grazing), reflectionWeight(nearNormal))
	}
	if reflectionWeight(grazing) < 0.3 {
		t.Errorf("grazing reflection should be strong, got %f", reflectionWeight(grazing))
	}
}

func TestRefractionBendsTowardNormal(t *testing.T) {
	mat := NewTransparentMaterial(1.5)
	direction := core.NewVec3(0.5, -1, 0).Normalize()
	ray, fragment := glassHit(direction)

	surface := mat.ComputeSurfaceProperties(emptyStore{}, ray, fragment)
	refracted := surface.Secondaries[len(surface.Secondaries)-1]

	// Snell: sin(theta_t) = sin(theta_i) / 1.5
	sinIncident := math.Sqrt(1 - math.Pow(direction.Dot(core.NewVec3(0, -1, 0)), 2))
	sinRefracted := math.Sqrt(1 - math.Pow(refracted.Ray.Direction.Dot(core.NewVec3(0, -1, 0)), 2))
	want := sinIncident / 1.5
	if math.Abs(sinRefracted-want) > 1e-6 {
		t.Errorf("refraction angle: sin=%f, want %f", sinRefracted, want)
	}

	// Entering the glass pushes its IOR onto the refracted ray's context
	if got := refracted.Ray.Context.CurrentIOROr(1.0); got != 1.5 {
		t.Errorf("refracted ray should carry entered IOR 1.5, got %f", got)
	}
	if refracted.Ray.Context.Depth() != 1 {
		t.Errorf("expected context depth 1, got %d", refracted.Ray.Context.Depth())
	}
}

func TestTotalInternalReflection(t *testing.T) {
	mat := NewTransparentMaterial(1.5)

	// Exiting glass at a steep angle: sin > 1/1.5 forces TIR
	direction := core.NewVec3(1, 0.3, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, -1, 0), direction)
	ray.Context = ray.Context.EnterMaterial(1.5)
	fragment := core.Fragment{
		Position:   core.NewVec3(0, 0, 0),
		Normal:     core.NewVec3(0, 1, 0),
		TrueNormal: core.NewVec3(0, 1, 0),
		View:       direction,
	}

	surface := mat.ComputeSurfaceProperties(emptyStore{}, ray, fragment)
	if len(surface.Secondaries) != 1 {
		t.Fatalf("TIR should leave a single (reflected) secondary, got %d", len(surface.Secondaries))
	}
	secondary := surface.Secondaries[0]
	want := direction.Reflect(fragment.Normal)
	if !secondary.Ray.Direction.Equals(want) {
		t.Errorf("TIR should reflect: expected %v, got %v", want, secondary.Ray.Direction)
	}
	// The ray stays inside the medium
	if got := secondary.Ray.Context.CurrentIOROr(1.0); got != 1.5 {
		t.Errorf("TIR ray should remain in glass (1.5), got %f", got)
	}
	if math.Abs(secondary.Weight-1.0) > 1e-9 {
		t.Errorf("TIR secondary should carry full weight, got %f", secondary.Weight)
	}
}

func TestExitingMediumPopsContext(t *testing.T) {
	mat := NewTransparentMaterial(1.5)

	// Leaving glass at a shallow angle refracts back into air
	direction := core.NewVec3(0.2, 1, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, -1, 0), direction)
	ray.Context = ray.Context.EnterMaterial(1.5)
	fragment := core.Fragment{
		Position:   core.NewVec3(0, 0, 0),
		Normal:     core.NewVec3(0, 1, 0),
		TrueNormal: core.NewVec3(0, 1, 0),
		View:       direction,
	}

	surface := mat.ComputeSurfaceProperties(emptyStore{}, ray, fragment)
	refracted := surface.Secondaries[len(surface.Secondaries)-1]
	if refracted.Ray.Context.Depth() != 0 {
		t.Errorf("exiting the medium should pop the context, depth=%d", refracted.Ray.Context.Depth())
	}
}
