package renderer

import (
	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// RenderBuffer holds linear radiance values for a rendered frame,
// row-major from the top-left
type RenderBuffer struct {
	Width  int
	Height int
	Data   []core.Vec3
}

// NewRenderBuffer allocates a zeroed buffer
func NewRenderBuffer(width, height int) *RenderBuffer {
	return &RenderBuffer{
		Width:  width,
		Height: height,
		Data:   make([]core.Vec3, width*height),
	}
}

// At returns the radiance stored for a pixel
func (b *RenderBuffer) At(x, y int) core.Vec3 {
	return b.Data[y*b.Width+x]
}

// Set stores the radiance for a pixel
func (b *RenderBuffer) Set(x, y int, colour core.Vec3) {
	b.Data[y*b.Width+x] = colour
}

// SetRow replaces one scanline of the buffer
func (b *RenderBuffer) SetRow(y int, row []core.Vec3) {
	copy(b.Data[y*b.Width:(y+1)*b.Width], row)
}

// ToPixelArray tone maps the buffer into a packed RGB24 byte array:
// radiance is raised to 1/gamma per channel, clamped to [0,1] and
// quantised to 8 bits
func (b *RenderBuffer) ToPixelArray(gamma float64) []byte {
	pixels := make([]byte, b.Width*b.Height*3)
	for i, colour := range b.Data {
		mapped := colour.GammaCorrect(gamma).Clamp(0, 1)
		pixels[i*3] = byte(255 * mapped.X)
		pixels[i*3+1] = byte(255 * mapped.Y)
		pixels[i*3+2] = byte(255 * mapped.Z)
	}
	return pixels
}
