package bloom

// Kage sources for the GPU path. They mirror SoftThreshold, Composite and
// ToneMap; blend factors are computed on the CPU with BlendFactor and passed
// in as uniforms. Ebitengine images are premultiplied.

// PrefilterShaderSrc applies SoftThreshold to imageSrc0.
const PrefilterShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Knee float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	rgb := c.rgb
	if c.a > 0 {
		rgb = rgb / c.a
	}
	brightness := max(rgb.r, max(rgb.g, rgb.b))
	soft := clamp(brightness-Threshold+Knee, 0, 2*Knee)
	soft = soft * soft / (4*Knee + 0.0001)
	contribution := max(brightness-Threshold, soft) / max(brightness, 0.00001)
	return vec4(rgb*contribution*c.a, c.a)
}
`

// CompositeShaderSrc merges the upsampled bloom in imageSrc1 into imageSrc0.
// Mode 0 is additive, 1 is energy conserving.
const CompositeShaderSrc = `//kage:unit pixels
package main

var Factor float
var Mode float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	base := imageSrc0At(src)
	glow := imageSrc1At(src)
	if Mode > 0.5 {
		return vec4(mix(base.rgb, glow.rgb, Factor), 1)
	}
	return vec4(base.rgb+glow.rgb*Factor, 1)
}
`

// TonemapShaderSrc maps imageSrc0 into display range. Curve takes the
// Tonemapping values: 0 none, 1 Reinhard, 2 Reinhard on luminance, 3 ACES fit.
const TonemapShaderSrc = `//kage:unit pixels
package main

var Curve float

func aces(x vec3) vec3 {
	return clamp((x*(2.51*x+0.03))/(x*(2.43*x+0.59)+0.14), 0, 1)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src).rgb
	if Curve > 2.5 {
		return vec4(aces(c), 1)
	}
	if Curve > 1.5 {
		l := dot(c, vec3(0.2126, 0.7152, 0.0722))
		if l <= 0 {
			return vec4(0, 0, 0, 1)
		}
		return vec4(c*(1/(1+l)), 1)
	}
	if Curve > 0.5 {
		return vec4(c/(1+c), 1)
	}
	return vec4(clamp(c, 0, 1), 1)
}
`
