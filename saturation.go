package thematic

import (
	"fmt"
	"math"
)

// SaturationLevel is the analytic level saturation is judged at.
type SaturationLevel string

// Saturation levels.
const (
	LevelCode        SaturationLevel = "code"
	LevelTheme       SaturationLevel = "theme"
	LevelTheoretical SaturationLevel = "theoretical"
)

// SourceCodes lists the codes observed in one data source.
type SourceCodes struct {
	Source string   `json:"source" yaml:"source" validate:"required"`
	Codes  []string `json:"codes" yaml:"codes"`
}

// SaturationRequest is the input to DetectSaturation. Sources must be in
// collection order: the analysis is sequence-sensitive.
type SaturationRequest struct {
	Level   SaturationLevel
	Sources []SourceCodes
}

// SaturationAnalysis reports whether new sources still contribute new codes.
type SaturationAnalysis struct {
	Level             SaturationLevel `json:"level"`
	Saturated         bool            `json:"saturated"`
	SaturationRate    float64         `json:"saturationRate"`
	NewCodesPerSource []int           `json:"newCodesPerSource"`
	Recommendation    string          `json:"recommendation"`
}

// DetectSaturation counts previously unseen codes per source and derives a
// saturation rate from the mean of the trailing window.
func DetectSaturation(req SaturationRequest) SaturationAnalysis {
	level := req.Level
	if level == "" {
		level = LevelCode
	}

	seen := make(map[string]struct{})
	perSource := make([]int, 0, len(req.Sources))
	for _, src := range req.Sources {
		fresh := 0
		for _, code := range src.Codes {
			if _, ok := seen[code]; !ok {
				seen[code] = struct{}{}
				fresh++
			}
		}
		perSource = append(perSource, fresh)
	}

	rate := saturationRate(perSource)
	return SaturationAnalysis{
		Level:             level,
		Saturated:         rate > DefaultSaturationThreshold,
		SaturationRate:    rate,
		NewCodesPerSource: perSource,
		Recommendation:    saturationRecommendation(level, rate, len(perSource)),
	}
}

// saturationRate is 1 - min(mean(last window)/scale, 1). With no sources
// nothing is known, so the rate is zero.
func saturationRate(perSource []int) float64 {
	if len(perSource) == 0 {
		return 0
	}
	window := perSource
	if len(window) > DefaultSaturationWindow {
		window = window[len(window)-DefaultSaturationWindow:]
	}
	sum := 0
	for _, n := range window {
		sum += n
	}
	mean := float64(sum) / float64(len(window))
	return 1 - math.Min(mean/DefaultSaturationScale, 1)
}

func saturationRecommendation(level SaturationLevel, rate float64, sources int) string {
	switch {
	case sources == 0:
		return "No sources analyzed yet; collect data before assessing saturation."
	case rate > DefaultSaturationThreshold:
		return fmt.Sprintf("Saturation reached at the %s level (rate %.2f): recent sources add few new codes. Consider moving on to theoretical integration.", level, rate)
	case rate > DefaultNearSaturation:
		return fmt.Sprintf("Approaching saturation at the %s level (rate %.2f). Collect a few more sources to confirm no new codes emerge.", level, rate)
	default:
		return fmt.Sprintf("Saturation not reached at the %s level (rate %.2f). Continue data collection; new sources are still producing new codes.", level, rate)
	}
}
