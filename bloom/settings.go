// Package bloom holds the bloom post-process parameters and the math shared by
// the GPU (Kage) and CPU implementations: the soft-threshold prefilter, the
// per-mip blend factor, compositing and tone mapping.
package bloom

import (
	"fmt"
	"strings"
)

// CompositeMode selects how each upsampled mip is merged into the level above.
type CompositeMode int

const (
	// Additive adds the bloom on top of the image; brightness grows with intensity.
	Additive CompositeMode = iota
	// EnergyConserving lerps towards the bloom so total brightness is preserved.
	EnergyConserving
)

func (m CompositeMode) String() string {
	switch m {
	case Additive:
		return "additive"
	case EnergyConserving:
		return "energy_conserving"
	default:
		return fmt.Sprintf("CompositeMode(%d)", int(m))
	}
}

// ParseCompositeMode accepts the names produced by String.
func ParseCompositeMode(s string) (CompositeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "additive":
		return Additive, nil
	case "energy_conserving", "energy-conserving":
		return EnergyConserving, nil
	}
	return 0, fmt.Errorf("unknown composite mode %q", s)
}

// PrefilterSettings controls which pixels feed the bloom. Pixels whose
// brightest channel is below Threshold are faded out over a knee of width
// Threshold*ThresholdSoftness instead of being cut hard.
type PrefilterSettings struct {
	Threshold         float32
	ThresholdSoftness float32
}

// Settings is the bloom component attached to the camera entity.
type Settings struct {
	// Intensity is the base blend factor of every mip.
	Intensity float32

	// LowFrequencyBoost adds extra weight to the wide, blurry mips.
	LowFrequencyBoost float32

	// LowFrequencyBoostCurvature in [0,1] shapes how the boost falls off
	// towards the sharp mips; 1 applies it to every mip except the first.
	LowFrequencyBoostCurvature float32

	// HighPassFrequency in (0,1] fades out mips beyond this fraction of the chain.
	HighPassFrequency float32

	Prefilter     PrefilterSettings
	CompositeMode CompositeMode
}

// DefaultSettings returns the camera's starting bloom parameters.
func DefaultSettings() Settings {
	return Settings{
		Intensity:                  0.2,
		LowFrequencyBoost:          0.2,
		LowFrequencyBoostCurvature: 1.0,
		HighPassFrequency:          0.5,
		Prefilter: PrefilterSettings{
			Threshold:         0.4,
			ThresholdSoftness: 0.5,
		},
		CompositeMode: Additive,
	}
}

// Tonemapping is the curve that maps the composited image into display range.
type Tonemapping int

const (
	TonemappingNone Tonemapping = iota
	TonemappingReinhard
	TonemappingReinhardLuminance
	TonemappingAcesFitted
)

func (t Tonemapping) String() string {
	switch t {
	case TonemappingNone:
		return "none"
	case TonemappingReinhard:
		return "reinhard"
	case TonemappingReinhardLuminance:
		return "reinhard_luminance"
	case TonemappingAcesFitted:
		return "aces_fitted"
	default:
		return fmt.Sprintf("Tonemapping(%d)", int(t))
	}
}

// ParseTonemapping accepts the names produced by String.
func ParseTonemapping(s string) (Tonemapping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return TonemappingNone, nil
	case "reinhard":
		return TonemappingReinhard, nil
	case "reinhard_luminance":
		return TonemappingReinhardLuminance, nil
	case "aces_fitted", "aces":
		return TonemappingAcesFitted, nil
	}
	return 0, fmt.Errorf("unknown tonemapping %q", s)
}
