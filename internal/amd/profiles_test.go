package amd

import "testing"

func TestPresetOrdering(t *testing.T) {
	a := GetProfile(ProfileAggressive)
	b := GetProfile(ProfileBalanced)
	c := GetProfile(ProfileConservative)

	if !(a.DetectionTimeoutSeconds < b.DetectionTimeoutSeconds && b.DetectionTimeoutSeconds < c.DetectionTimeoutSeconds) {
		t.Fatalf("detection timeouts not strictly increasing: %d %d %d",
			a.DetectionTimeoutSeconds, b.DetectionTimeoutSeconds, c.DetectionTimeoutSeconds)
	}
	if !(a.SpeechThresholdMs < b.SpeechThresholdMs && b.SpeechThresholdMs < c.SpeechThresholdMs) {
		t.Fatalf("speech thresholds not strictly increasing: %d %d %d",
			a.SpeechThresholdMs, b.SpeechThresholdMs, c.SpeechThresholdMs)
	}
}

func TestDisabledPreset(t *testing.T) {
	d := GetProfile(ProfileDisabled)
	if d.Enabled {
		t.Fatalf("disabled preset must have detection off")
	}
}

func TestGetProfileFallsBackToBalanced(t *testing.T) {
	if got := GetProfile(""); got.Name != ProfileBalanced {
		t.Fatalf("empty name: expected balanced, got %q", got.Name)
	}
	if got := GetProfile("does-not-exist"); got.Name != ProfileBalanced {
		t.Fatalf("unknown name: expected balanced, got %q", got.Name)
	}
	// Lookup is case-sensitive.
	if got := GetProfile("Balanced"); got.Name != ProfileBalanced {
		t.Fatalf("case-sensitive lookup must fall back to default")
	}
}

func TestDeriveProfileOverridesFields(t *testing.T) {
	timeout := 99
	enabled := false
	got := DeriveProfile(ProfileBalanced, Overrides{
		DetectionTimeoutSeconds: &timeout,
		Enabled:                 &enabled,
	})

	if got.DetectionTimeoutSeconds != 99 {
		t.Fatalf("expected override timeout 99, got %d", got.DetectionTimeoutSeconds)
	}
	if got.Enabled {
		t.Fatalf("expected enabled override to apply")
	}
	base := GetProfile(ProfileBalanced)
	if got.SpeechThresholdMs != base.SpeechThresholdMs {
		t.Fatalf("unspecified field must keep base value")
	}

	// The named preset must be untouched.
	if again := GetProfile(ProfileBalanced); again.DetectionTimeoutSeconds != base.DetectionTimeoutSeconds || !again.Enabled {
		t.Fatalf("DeriveProfile mutated the named preset")
	}
}

func TestDeriveProfileDoesNotShareSignalSlice(t *testing.T) {
	got := DeriveProfile(ProfileBalanced, Overrides{MachineDetectionSignals: []string{"beep"}})
	if len(got.MachineDetectionSignals) != 1 || got.MachineDetectionSignals[0] != "beep" {
		t.Fatalf("unexpected signals: %v", got.MachineDetectionSignals)
	}
	if len(GetProfile(ProfileBalanced).MachineDetectionSignals) != 2 {
		t.Fatalf("preset signal list changed")
	}
}
