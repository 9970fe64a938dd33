package renderer

import (
	"math"
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// maxShadingBounces bounds the recursive shading of secondary rays
const maxShadingBounces = 5

// PerspectiveCamera generates primary rays and drives per-pixel shading.
// Scanlines are distributed across workers; each scanline's RNG stream is
// seeded from its row index so renders are deterministic for a fixed seed
// and independent of the worker count.
type PerspectiveCamera struct {
	Width           int
	Height          int
	Position        core.Vec3
	SamplesPerPixel int
	Multisampling   bool
	Gamma           float64

	forward core.Vec3
	right   core.Vec3
	up      core.Vec3

	halfWidth  float64
	halfHeight float64

	workers int
	seed    int64
	logger  core.Logger
}

// NewPerspectiveCamera creates a camera at position looking along
// direction with the given vertical field of view in degrees
func NewPerspectiveCamera(width, height int, position, direction, up core.Vec3, fov float64,
	samplesPerPixel int, multisampling bool, gamma float64) *PerspectiveCamera {

	forward := direction.Normalize()
	right := forward.Cross(up.Normalize()).Normalize()
	trueUp := right.Cross(forward)

	halfHeight := math.Tan(fov * 0.5 * math.Pi / 180)
	aspect := float64(width) / float64(height)

	return &PerspectiveCamera{
		Width:           width,
		Height:          height,
		Position:        position,
		SamplesPerPixel: max(1, samplesPerPixel),
		Multisampling:   multisampling,
		Gamma:           gamma,
		forward:         forward,
		right:           right,
		up:              trueUp,
		halfWidth:       halfHeight * aspect,
		halfHeight:      halfHeight,
		seed:            42,
	}
}

// SetWorkers overrides the worker count used for rendering
func (c *PerspectiveCamera) SetWorkers(workers int) {
	c.workers = workers
}

// SetSeed overrides the RNG seed used for sampling
func (c *PerspectiveCamera) SetSeed(seed int64) {
	c.seed = seed
}

// SetLogger overrides the diagnostic logger
func (c *PerspectiveCamera) SetLogger(logger core.Logger) {
	c.logger = logger
}

// ray generates the primary ray through image-plane coordinates
// (s, t) in [0,1]^2, with (0,0) at the top left
func (c *PerspectiveCamera) ray(s, t float64) core.Ray {
	direction := c.forward.
		Add(c.right.Multiply((2*s - 1) * c.halfWidth)).
		Add(c.up.Multiply((1 - 2*t) * c.halfHeight)).
		Normalize()
	return core.NewRay(c.Position, direction)
}

// Render shades every pixel through the configuration's integrator and
// returns the frame's linear radiance buffer
func (c *PerspectiveCamera) Render(config *RenderConfiguration) *RenderBuffer {
	timing := core.NewTiming("Total Rendering", c.logger)
	defer timing.Stop()

	buffer := NewRenderBuffer(c.Width, c.Height)

	queue := core.NewDispatchQueue[int](c.workers)
	for y := 0; y < c.Height; y++ {
		queue.AddTask(y)
	}

	rows := core.ConsumeTasks(queue, func(seq int, y int) []core.Vec3 {
		random := rand.New(rand.NewSource(c.seed + int64(seq)))
		row := make([]core.Vec3, c.Width)
		for x := 0; x < c.Width; x++ {
			row[x] = c.samplePixel(config, x, y, random)
		}
		return row
	})

	for y, row := range rows {
		if row != nil {
			buffer.SetRow(y, row)
		}
	}
	return buffer
}

// samplePixel averages the configured number of jittered or centred
// samples for one pixel
func (c *PerspectiveCamera) samplePixel(config *RenderConfiguration, x, y int, random *rand.Rand) core.Vec3 {
	accum := core.Vec3{}
	for sample := 0; sample < c.SamplesPerPixel; sample++ {
		dx, dy := 0.5, 0.5
		if c.Multisampling {
			dx, dy = random.Float64(), random.Float64()
		}
		s := (float64(x) + dx) / float64(c.Width)
		t := (float64(y) + dy) / float64(c.Height)
		accum = accum.Add(c.shade(config, c.ray(s, t), 0, random))
	}
	return accum.Multiply(1.0 / float64(c.SamplesPerPixel))
}

// shade evaluates the radiance along a ray: integrator lighting modulated
// by the surface colours, any emission, and recursively shaded secondary
// rays
func (c *PerspectiveCamera) shade(config *RenderConfiguration, ray core.Ray, depth int, random *rand.Rand) core.Vec3 {
	if depth > maxShadingBounces {
		return core.Vec3{}
	}

	scn := config.Scene()
	collision, shadable, hit := scn.Intersect(ray)
	if !hit {
		return core.Vec3{}
	}
	fragment := shadable.ComputeFragment(scn, ray, collision)
	surface := scn.SurfaceAt(fragment.Material, ray, fragment)

	lighting := config.LightingIntegrator().Lighting(scn, fragment, &surface, random)

	colour := surface.DiffuseColour.MultiplyVec(lighting.Diffuse).
		Add(surface.AmbientColour.MultiplyVec(lighting.Ambient)).
		Add(surface.SpecularColour.MultiplyVec(lighting.Specular))

	if emissive := surface.Emissive; emissive != nil {
		colour = colour.
			Add(surface.DiffuseColour.Multiply(emissive.Diffuse)).
			Add(surface.AmbientColour.Multiply(emissive.Ambient)).
			Add(surface.SpecularColour.Multiply(emissive.Specular))
	}

	for _, secondary := range surface.Secondaries {
		bounced := c.shade(config, secondary.Ray, depth+1, random)
		colour = colour.Add(bounced.MultiplyVec(secondary.Colour).Multiply(secondary.Weight))
	}
	return colour
}
