package amd

// Profile is a named answering-machine-detection preset.
//
// Profiles are immutable constants. Requests that need different thresholds
// derive an ad-hoc copy via DeriveProfile; named presets are never mutated.
type Profile struct {
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"`

	// DetectionTimeoutSeconds bounds how long the provider listens before
	// giving up on machine detection.
	DetectionTimeoutSeconds int `json:"detection_timeout_seconds"`

	// SpeechThresholdMs is the minimum speech duration treated as a greeting.
	SpeechThresholdMs    int `json:"speech_threshold_ms"`
	SpeechEndThresholdMs int `json:"speech_end_threshold_ms"`
	SilenceTimeoutMs     int `json:"silence_timeout_ms"`

	// MachineDetectionSignals lists the end-of-greeting signal types the
	// provider should report (e.g. beep detection).
	MachineDetectionSignals []string `json:"machine_detection_signals"`
}

const (
	ProfileAggressive   = "aggressive"
	ProfileBalanced     = "balanced"
	ProfileConservative = "conservative"
	ProfileDisabled     = "disabled"
)

// DefaultProfileName is used whenever a request does not name a preset.
const DefaultProfileName = ProfileBalanced

// presets hold strictly increasing detection timeouts and speech thresholds
// across aggressive < balanced < conservative. Tests depend on that ordering.
var presets = map[string]Profile{
	ProfileAggressive: {
		Name:                    ProfileAggressive,
		Enabled:                 true,
		Provider:                "vapi",
		DetectionTimeoutSeconds: 15,
		SpeechThresholdMs:       2200,
		SpeechEndThresholdMs:    800,
		SilenceTimeoutMs:        4000,
		MachineDetectionSignals: []string{"beep", "speech_end"},
	},
	ProfileBalanced: {
		Name:                    ProfileBalanced,
		Enabled:                 true,
		Provider:                "vapi",
		DetectionTimeoutSeconds: 30,
		SpeechThresholdMs:       2600,
		SpeechEndThresholdMs:    1000,
		SilenceTimeoutMs:        5000,
		MachineDetectionSignals: []string{"beep", "speech_end"},
	},
	ProfileConservative: {
		Name:                    ProfileConservative,
		Enabled:                 true,
		Provider:                "vapi",
		DetectionTimeoutSeconds: 45,
		SpeechThresholdMs:       3200,
		SpeechEndThresholdMs:    1200,
		SilenceTimeoutMs:        6000,
		MachineDetectionSignals: []string{"beep", "speech_end"},
	},
	ProfileDisabled: {
		Name:     ProfileDisabled,
		Enabled:  false,
		Provider: "vapi",
	},
}

// GetProfile returns the named preset, or the default preset when the name is
// empty or unknown. Lookup is case-sensitive and never fails.
func GetProfile(name string) Profile {
	if p, ok := presets[name]; ok {
		return p
	}
	return presets[DefaultProfileName]
}

// Overrides replaces individual profile fields. Nil fields keep the base value.
type Overrides struct {
	Enabled                 *bool    `json:"enabled,omitempty"`
	Provider                *string  `json:"provider,omitempty"`
	DetectionTimeoutSeconds *int     `json:"detection_timeout_seconds,omitempty"`
	SpeechThresholdMs       *int     `json:"speech_threshold_ms,omitempty"`
	SpeechEndThresholdMs    *int     `json:"speech_end_threshold_ms,omitempty"`
	SilenceTimeoutMs        *int     `json:"silence_timeout_ms,omitempty"`
	MachineDetectionSignals []string `json:"machine_detection_signals,omitempty"`
}

// DeriveProfile returns the base preset with the given fields replaced.
// The named preset itself is left untouched.
func DeriveProfile(baseName string, ov Overrides) Profile {
	p := GetProfile(baseName)

	if ov.Enabled != nil {
		p.Enabled = *ov.Enabled
	}
	if ov.Provider != nil {
		p.Provider = *ov.Provider
	}
	if ov.DetectionTimeoutSeconds != nil {
		p.DetectionTimeoutSeconds = *ov.DetectionTimeoutSeconds
	}
	if ov.SpeechThresholdMs != nil {
		p.SpeechThresholdMs = *ov.SpeechThresholdMs
	}
	if ov.SpeechEndThresholdMs != nil {
		p.SpeechEndThresholdMs = *ov.SpeechEndThresholdMs
	}
	if ov.SilenceTimeoutMs != nil {
		p.SilenceTimeoutMs = *ov.SilenceTimeoutMs
	}
	if ov.MachineDetectionSignals != nil {
		p.MachineDetectionSignals = append([]string(nil), ov.MachineDetectionSignals...)
	}
	return p
}
