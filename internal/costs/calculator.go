// Package costs provides cost estimation for speech synthesis usage.
package costs

import (
	"os"
	"strconv"
	"unicode/utf8"
)

// ElevenLabsCentsPerThousandChars is the cost per 1K characters for ElevenLabs TTS.
// Default: $0.18/1K chars = 18 cents/1K chars. Overridden via environment variable.
var ElevenLabsCentsPerThousandChars = getEnvFloat(costRateEnv, defaultCentsPerThousandChars)

const (
	costRateEnv                  = "COST_ELEVENLABS_CENTS_PER_1K_CHARS"
	defaultCentsPerThousandChars = 18.0
)

// LoadFromEnv re-reads the rate, for variables set after package init (.env files).
func LoadFromEnv() {
	ElevenLabsCentsPerThousandChars = getEnvFloat(costRateEnv, defaultCentsPerThousandChars)
}

// SynthesisEstimate is the expected provider charge for one synthesis request.
type SynthesisEstimate struct {
	Characters int
	Cents      float64 // unrounded, for metrics
	CostCents  int     // rounded to the nearest cent
}

// EstimateSynthesis computes the provider cost of synthesizing text.
// The provider bills per character, so runes are counted rather than bytes.
func EstimateSynthesis(text string) SynthesisEstimate {
	chars := utf8.RuneCountInString(text)
	cents := (float64(chars) / 1000.0) * ElevenLabsCentsPerThousandChars
	return SynthesisEstimate{
		Characters: chars,
		Cents:      cents,
		CostCents:  roundToInt(cents),
	}
}

// roundToInt rounds a float to the nearest integer.
func roundToInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// getEnvFloat returns an environment variable as float64, or the default if not set.
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
