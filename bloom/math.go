package bloom

import "math"

// RGB is a linear colour with channels nominally in [0,1]; bloom may push
// them above 1 until tone mapping.
type RGB [3]float32

func (c RGB) scale(f float32) RGB {
	return RGB{c[0] * f, c[1] * f, c[2] * f}
}

func (c RGB) add(o RGB) RGB {
	return RGB{c[0] + o[0], c[1] + o[1], c[2] + o[2]}
}

// Luminance uses Rec. 709 weights.
func (c RGB) Luminance() float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

// SoftThreshold scales c by how far its brightest channel sits above the
// threshold, with a quadratic knee below it.
func SoftThreshold(c RGB, p PrefilterSettings) RGB {
	brightness := max(c[0], c[1], c[2])
	knee := p.Threshold * p.ThresholdSoftness

	soft := brightness - p.Threshold + knee
	soft = clamp(soft, 0, 2*knee)
	soft = soft * soft / (4*knee + 0.0001)

	contribution := max(brightness-p.Threshold, soft)
	contribution /= max(brightness, 0.00001)
	return c.scale(contribution)
}

// BlendFactor is the weight with which mip is composited into the level above
// it; maxMip is the index of the smallest mip.
func BlendFactor(s Settings, mip, maxMip float32) float32 {
	if maxMip <= 0 {
		maxMip = 1
	}
	t := float64(mip / maxMip)

	exponent := 1 / (1 - float64(s.LowFrequencyBoostCurvature))
	lfBoost := float32(1-math.Pow(1-t, exponent)) * s.LowFrequencyBoost

	hp := float64(s.HighPassFrequency)
	highPass := 1 - float32(clamp64((t-hp)/hp, 0, 1))

	if s.CompositeMode == EnergyConserving {
		lfBoost *= 1 - s.Intensity
	}

	return (s.Intensity + lfBoost) * highPass
}

// Composite merges src into dst with weight factor.
func Composite(dst, src RGB, factor float32, mode CompositeMode) RGB {
	if mode == EnergyConserving {
		return dst.scale(1 - factor).add(src.scale(factor))
	}
	return dst.add(src.scale(factor))
}

// ToneMap maps c into [0,1] using the given curve.
func ToneMap(c RGB, curve Tonemapping) RGB {
	switch curve {
	case TonemappingReinhard:
		return RGB{c[0] / (1 + c[0]), c[1] / (1 + c[1]), c[2] / (1 + c[2])}
	case TonemappingReinhardLuminance:
		l := c.Luminance()
		if l <= 0 {
			return RGB{}
		}
		return c.scale((l / (1 + l)) / l)
	case TonemappingAcesFitted:
		return RGB{aces(c[0]), aces(c[1]), aces(c[2])}
	default:
		return RGB{clamp(c[0], 0, 1), clamp(c[1], 0, 1), clamp(c[2], 0, 1)}
	}
}

// aces is Narkowicz's fit of the ACES filmic curve.
func aces(x float32) float32 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return clamp((x*(a*x+b))/(x*(c*x+d)+e), 0, 1)
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

func clamp64(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
