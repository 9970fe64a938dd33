package material

import (
	"image"
	"math"
	"sync"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// Texture is an image sampled by materials for colours and bump gradients.
// Gradient maps are derived lazily on first use and cached; after that the
// texture is read-only and safe to share across workers.
type Texture struct {
	Name   string
	width  int
	height int
	data   []core.Vec3

	gradientOnce sync.Once
	du, dv       []float64
}

// NewTexture converts a decoded image into a texture. Rows are flipped so
// v grows upward as in Wavefront texture coordinates.
func NewTexture(name string, img image.Image) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	data := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			flipped := height - 1 - y
			data[flipped*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}
	return &Texture{Name: name, width: width, height: height, data: data}
}

// Width returns the texture width in pixels
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels
func (t *Texture) Height() int { return t.height }

func (t *Texture) rawPixel(x, y int) core.Vec3 {
	x = ((x % t.width) + t.width) % t.width
	y = ((y % t.height) + t.height) % t.height
	return t.data[y*t.width+x]
}

func (t *Texture) rawGradient(values []float64, x, y int) float64 {
	x = ((x % t.width) + t.width) % t.width
	y = ((y % t.height) + t.height) % t.height
	return values[y*t.width+x]
}

// Sample returns the texel at the given texture coordinates, wrapping
// outside [0,1)
func (t *Texture) Sample(uv core.Vec2) core.Vec3 {
	x := int(math.Floor(uv.X * float64(t.width)))
	y := int(math.Floor(uv.Y * float64(t.height)))
	return t.rawPixel(x, y)
}

// generateGradientMaps builds Sobel derivative maps of the red channel,
// used to perturb shading normals for bump mapping
func (t *Texture) generateGradientMaps() {
	du := make([]float64, len(t.data))
	dv := make([]float64, len(t.data))
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			left := t.rawPixel(x-1, y).Multiply(2).
				Add(t.rawPixel(x-1, y-1)).
				Add(t.rawPixel(x-1, y+1))
			right := t.rawPixel(x+1, y).Multiply(2).
				Add(t.rawPixel(x+1, y-1)).
				Add(t.rawPixel(x+1, y+1))
			du[y*t.width+x] = right.X - left.X

			top := t.rawPixel(x, y+1).Multiply(2).
				Add(t.rawPixel(x-1, y+1)).
				Add(t.rawPixel(x+1, y+1))
			bottom := t.rawPixel(x, y-1).Multiply(2).
				Add(t.rawPixel(x-1, y-1)).
				Add(t.rawPixel(x+1, y-1))
			dv[y*t.width+x] = top.X - bottom.X
		}
	}
	t.du = du
	t.dv = dv
}

func lerp(t, a, b float64) float64 {
	return a*(1-t) + b*t
}

func (t *Texture) filteredGradient(values []float64, x, y float64) float64 {
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)
	xb := int(math.Floor(x))
	yb := int(math.Floor(y))

	top := lerp(xf, t.rawGradient(values, xb, yb), t.rawGradient(values, xb+1, yb))
	bottom := lerp(xf, t.rawGradient(values, xb, yb+1), t.rawGradient(values, xb+1, yb+1))
	return lerp(yf, top, bottom)
}

// Gradient returns the bilinearly filtered (du, dv) bump derivatives at the
// given texture coordinates
func (t *Texture) Gradient(uv core.Vec2) (float64, float64) {
	t.gradientOnce.Do(t.generateGradientMaps)
	x := math.Mod(uv.X, 1.0) * float64(t.width)
	y := math.Mod(uv.Y, 1.0) * float64(t.height)
	return t.filteredGradient(t.du, x, y), t.filteredGradient(t.dv, x, y)
}
