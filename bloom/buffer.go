package bloom

import (
	"image"
	"image/color"
)

// MaxMips bounds the length of the mip chain.
const MaxMips = 8

// Buffer is a linear float image used by the CPU bloom.
type Buffer struct {
	Width, Height int
	Pix           []RGB
}

// NewBuffer allocates a black buffer.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]RGB, width*height),
	}
}

// BufferFromImage converts img to a Buffer, discarding alpha.
func BufferFromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	b := NewBuffer(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Height; y++ {
			row := rgba.Pix[(y+bounds.Min.Y-rgba.Rect.Min.Y)*rgba.Stride:]
			for x := 0; x < b.Width; x++ {
				p := row[(x+bounds.Min.X-rgba.Rect.Min.X)*4:]
				b.Pix[y*b.Width+x] = unpremultiply(p[0], p[1], p[2], p[3])
			}
		}
		return b
	}

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			b.Pix[y*b.Width+x] = RGB{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
		}
	}
	return b
}

func unpremultiply(r, g, b, a uint8) RGB {
	if a == 0 {
		return RGB{}
	}
	f := float32(a)
	return RGB{float32(r) / f, float32(g) / f, float32(b) / f}
}

// At returns the pixel at (x, y), clamping coordinates to the edge.
func (b *Buffer) At(x, y int) RGB {
	x = min(max(x, 0), b.Width-1)
	y = min(max(y, 0), b.Height-1)
	return b.Pix[y*b.Width+x]
}

// Image converts the buffer to an opaque NRGBA image, clamping to [0,1].
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, c := range b.Pix {
		img.Pix[i*4] = toByte(c[0])
		img.Pix[i*4+1] = toByte(c[1])
		img.Pix[i*4+2] = toByte(c[2])
		img.Pix[i*4+3] = 0xff
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(clamp(v, 0, 1)*255 + 0.5)
}

// sample reads b with bilinear filtering at normalised coordinates.
func (b *Buffer) sample(u, v float32) RGB {
	fx := u*float32(b.Width) - 0.5
	fy := v*float32(b.Height) - 0.5
	x0, y0 := int(floor(fx)), int(floor(fy))
	tx, ty := fx-floor(fx), fy-floor(fy)

	top := lerp(b.At(x0, y0), b.At(x0+1, y0), tx)
	bottom := lerp(b.At(x0, y0+1), b.At(x0+1, y0+1), tx)
	return lerp(top, bottom, ty)
}

func lerp(a, b RGB, t float32) RGB {
	return a.scale(1 - t).add(b.scale(t))
}

func floor(v float32) float32 {
	i := float32(int(v))
	if i > v {
		i--
	}
	return i
}

// downsample halves b with a 2x2 box filter.
func downsample(b *Buffer) *Buffer {
	out := NewBuffer(max(b.Width/2, 1), max(b.Height/2, 1))
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			sum := b.At(2*x, 2*y).add(b.At(2*x+1, 2*y)).add(b.At(2*x, 2*y+1)).add(b.At(2*x+1, 2*y+1))
			out.Pix[y*out.Width+x] = sum.scale(0.25)
		}
	}
	return out
}

// upsampleInto composites a bilinear upscale of src into dst.
func upsampleInto(dst, src *Buffer, factor float32, mode CompositeMode) {
	for y := 0; y < dst.Height; y++ {
		v := (float32(y) + 0.5) / float32(dst.Height)
		for x := 0; x < dst.Width; x++ {
			u := (float32(x) + 0.5) / float32(dst.Width)
			i := y*dst.Width + x
			dst.Pix[i] = Composite(dst.Pix[i], src.sample(u, v), factor, mode)
		}
	}
}

// MipCount returns the length of the chain for an image of the given size:
// halvings until the short side drops below 2 pixels, capped at MaxMips.
func MipCount(width, height int) int {
	n := 0
	for side := min(width, height) / 2; side >= 2 && n < MaxMips; side /= 2 {
		n++
	}
	return max(n, 1)
}

// Apply runs the full bloom on b in place: prefilter, mip chain, upsample
// composite and tone mapping.
func Apply(b *Buffer, s Settings, curve Tonemapping) {
	if b.Width == 0 || b.Height == 0 {
		return
	}

	prefiltered := NewBuffer(b.Width, b.Height)
	for i, c := range b.Pix {
		prefiltered.Pix[i] = SoftThreshold(c, s.Prefilter)
	}

	count := MipCount(b.Width, b.Height)
	mips := make([]*Buffer, count)
	mips[0] = downsample(prefiltered)
	for i := 1; i < count; i++ {
		mips[i] = downsample(mips[i-1])
	}

	maxMip := float32(count - 1)
	for i := count - 1; i > 0; i-- {
		upsampleInto(mips[i-1], mips[i], BlendFactor(s, float32(i), maxMip), s.CompositeMode)
	}
	upsampleInto(b, mips[0], BlendFactor(s, 0, maxMip), s.CompositeMode)

	for i, c := range b.Pix {
		b.Pix[i] = ToneMap(c, curve)
	}
}
