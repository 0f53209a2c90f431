package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tilebloom/bloom"
	"github.com/plus3/tilebloom/ecs"
	"github.com/plus3/tilebloom/scene"
)

var (
	prefilterShader *ebiten.Shader
	compositeShader *ebiten.Shader
	tonemapShader   *ebiten.Shader
)

func compileShader(src string) *ebiten.Shader {
	s, err := ebiten.NewShader([]byte(src))
	if err != nil {
		panic("render: failed to compile shader: " + err.Error())
	}
	return s
}

func ensureShaders() {
	if prefilterShader == nil {
		prefilterShader = compileShader(bloom.PrefilterShaderSrc)
		compositeShader = compileShader(bloom.CompositeShaderSrc)
		tonemapShader = compileShader(bloom.TonemapShaderSrc)
	}
}

// PostProcessSystem applies the camera's bloom to the frame and writes the
// result to the screen. Without an HDR camera the frame is copied unchanged.
type PostProcessSystem struct {
	Cameras ecs.Query[struct {
		*scene.Camera
		*bloom.Settings
	}]
	Screen ecs.Singleton[Screen]
	Frame  ecs.Singleton[Frame]

	bright   *ebiten.Image
	mips     []*ebiten.Image
	upscaled []*ebiten.Image
	merged   []*ebiten.Image
	full     *ebiten.Image
	combined *ebiten.Image

	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

func (s *PostProcessSystem) Execute(frame *ecs.UpdateFrame) {
	screen, target := s.Screen.Get(), s.Frame.Get()
	if screen == nil || screen.Image == nil || target == nil || target.Image == nil {
		return
	}

	camera, ok := s.Cameras.Single()
	if !ok || !camera.Camera.HDR {
		screen.Image.DrawImage(target.Image, nil)
		return
	}

	ensureShaders()
	if s.uniforms == nil {
		s.uniforms = make(map[string]any, 2)
	}
	s.apply(screen.Image, target.Image, *camera.Settings, camera.Camera.Tonemapping)
}

func (s *PostProcessSystem) allocate(width, height int) {
	count := bloom.MipCount(width, height)
	s.bright = ensureImage(s.bright, width, height)
	s.full = ensureImage(s.full, width, height)
	s.combined = ensureImage(s.combined, width, height)

	if len(s.mips) != count {
		s.mips = make([]*ebiten.Image, count)
		s.upscaled = make([]*ebiten.Image, count)
		s.merged = make([]*ebiten.Image, count)
	}
	w, h := width, height
	for i := range count {
		w, h = max(w/2, 1), max(h/2, 1)
		s.mips[i] = ensureImage(s.mips[i], w, h)
		s.upscaled[i] = ensureImage(s.upscaled[i], w, h)
		s.merged[i] = ensureImage(s.merged[i], w, h)
	}
}

func (s *PostProcessSystem) apply(dst, src *ebiten.Image, settings bloom.Settings, curve bloom.Tonemapping) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	s.allocate(width, height)

	clear(s.uniforms)
	s.uniforms["Threshold"] = settings.Prefilter.Threshold
	s.uniforms["Knee"] = settings.Prefilter.Threshold * settings.Prefilter.ThresholdSoftness
	s.shade(s.bright, prefilterShader, src, nil)

	previous := s.bright
	for _, mip := range s.mips {
		mip.Clear()
		scaleInto(mip, previous)
		previous = mip
	}

	count := len(s.mips)
	maxMip := float32(count - 1)
	mode := float32(0)
	if settings.CompositeMode == bloom.EnergyConserving {
		mode = 1
	}

	glow := s.mips[count-1]
	for i := count - 1; i > 0; i-- {
		s.upscaled[i-1].Clear()
		scaleInto(s.upscaled[i-1], glow)

		clear(s.uniforms)
		s.uniforms["Factor"] = bloom.BlendFactor(settings, float32(i), maxMip)
		s.uniforms["Mode"] = mode
		s.shade(s.merged[i-1], compositeShader, s.mips[i-1], s.upscaled[i-1])
		glow = s.merged[i-1]
	}

	s.full.Clear()
	scaleInto(s.full, glow)
	clear(s.uniforms)
	s.uniforms["Factor"] = bloom.BlendFactor(settings, 0, maxMip)
	s.uniforms["Mode"] = mode
	s.shade(s.combined, compositeShader, src, s.full)

	clear(s.uniforms)
	s.uniforms["Curve"] = float32(curve)
	s.shade(dst, tonemapShader, s.combined, nil)
}

func (s *PostProcessSystem) shade(dst *ebiten.Image, shader *ebiten.Shader, src0, src1 *ebiten.Image) {
	bounds := src0.Bounds()
	s.shaderOp.Images[0] = src0
	s.shaderOp.Images[1] = src1
	s.shaderOp.Uniforms = s.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &s.shaderOp)
}

// scaleInto stretches src over dst with bilinear filtering.
func scaleInto(dst, src *ebiten.Image) {
	db, sb := dst.Bounds(), src.Bounds()
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	dst.DrawImage(src, op)
}
