package outcome

import (
	"encoding/json"
	"testing"
)

func endCallMessage(args string) ConversationMessage {
	return ConversationMessage{
		Role: "assistant",
		ToolCalls: []ToolCall{
			{Function: FunctionCall{Name: endCallToolName, Arguments: json.RawMessage(args)}},
		},
	}
}

func TestClassifyStructuredReasonWins(t *testing.T) {
	cases := []struct {
		reason string
		want   Outcome
	}{
		{"customer-did-not-answer-voicemail", OutcomeVoicemail},
		{"Machine-Detected", OutcomeVoicemail},
		{"no-answer", OutcomeNoAnswer},
		{"dial-timeout", OutcomeNoAnswer},
		{"line-busy", OutcomeBusy},
		{"call-failed", OutcomeFailed},
		{"provider-error", OutcomeFailed},
	}
	for _, c := range cases {
		// Transcript contradicts the structured reason; structured wins.
		if got := Classify(c.reason, "hello, this is a real person", nil); got != c.want {
			t.Fatalf("reason %q: expected %s, got %s", c.reason, c.want, got)
		}
	}
}

func TestClassifyStructuredReasonBeatsTranscript(t *testing.T) {
	got := Classify("voicemail", "press 1 for sales", nil)
	if got != OutcomeVoicemail {
		t.Fatalf("expected voicemail, got %s", got)
	}
}

func TestClassifyToolSignal(t *testing.T) {
	msgs := []ConversationMessage{endCallMessage(`{"reason":"ivr_detected"}`)}
	if got := Classify("", "", msgs); got != OutcomeIVR {
		t.Fatalf("expected ivr, got %s", got)
	}

	msgs = []ConversationMessage{endCallMessage(`{"reason":"voicemail_detected"}`)}
	if got := Classify("", "", msgs); got != OutcomeVoicemail {
		t.Fatalf("expected voicemail, got %s", got)
	}
}

func TestClassifyToolSignalStringEncodedArguments(t *testing.T) {
	msgs := []ConversationMessage{endCallMessage(`"{\"reason\":\"ivr_detected\"}"`)}
	if got := Classify("", "", msgs); got != OutcomeIVR {
		t.Fatalf("expected ivr from string-encoded args, got %s", got)
	}
}

func TestClassifyFirstToolSignalWins(t *testing.T) {
	msgs := []ConversationMessage{
		endCallMessage(`{"reason":"voicemail_detected"}`),
		endCallMessage(`{"reason":"ivr_detected"}`),
	}
	if got := Classify("", "", msgs); got != OutcomeVoicemail {
		t.Fatalf("expected first invocation to win, got %s", got)
	}
}

func TestClassifyMalformedToolPayloadFallsThrough(t *testing.T) {
	msgs := []ConversationMessage{endCallMessage(`{"reason":`)}
	if got := Classify("", "please hold while we connect you", msgs); got != OutcomeIVR {
		t.Fatalf("malformed payload must fall through to transcript, got %s", got)
	}
}

func TestClassifyVoicemailBeatsMenuPhrases(t *testing.T) {
	// Contains both a menu phrase and a voicemail phrase.
	got := Classify("", "Press 1 to leave a message", nil)
	if got != OutcomeVoicemail {
		t.Fatalf("expected voicemail on tie-break, got %s", got)
	}
}

func TestClassifyTranscriptMenuPhrase(t *testing.T) {
	got := Classify("assistant-ended-call", "your call is important to us", nil)
	if got != OutcomeIVR {
		t.Fatalf("expected ivr, got %s", got)
	}
}

func TestClassifyFullFallThrough(t *testing.T) {
	if got := Classify("", "", nil); got != OutcomeHuman {
		t.Fatalf("expected human on empty signals, got %s", got)
	}
	if got := Classify("", "", []ConversationMessage{}); got != OutcomeHuman {
		t.Fatalf("expected human, got %s", got)
	}
	if got := Classify("assistant-ended-call", "yeah hi, who is this?", nil); got != OutcomeHuman {
		t.Fatalf("expected human, got %s", got)
	}
}

func TestDetectAutomatedSystem(t *testing.T) {
	d := DetectAutomatedSystem("You have reached John. Please leave a message AFTER THE TONE.")
	if !d.Detected || d.Type != DetectionVoicemail {
		t.Fatalf("expected voicemail detection, got %+v", d)
	}
	if d.Pattern != "leave a message" {
		t.Fatalf("expected first matching phrase, got %q", d.Pattern)
	}

	d = DetectAutomatedSystem("For sales, press one.")
	if !d.Detected || d.Type != DetectionIVR {
		t.Fatalf("expected ivr detection, got %+v", d)
	}

	d = DetectAutomatedSystem("")
	if d.Detected || d.Type != "" || d.Pattern != "" {
		t.Fatalf("empty transcript must not detect, got %+v", d)
	}

	d = DetectAutomatedSystem("hello?")
	if d.Detected {
		t.Fatalf("plain speech must not detect, got %+v", d)
	}
}

func TestResolveEndCallSignal(t *testing.T) {
	sig := ResolveEndCallSignal(json.RawMessage(`{"reason":"ivr_detected"}`))
	if sig.Reason != EndCallReasonIVRDetected || sig.Malformed {
		t.Fatalf("unexpected signal: %+v", sig)
	}

	sig = ResolveEndCallSignal(json.RawMessage(`"{\"reason\":\"voicemail_detected\"}"`))
	if sig.Reason != EndCallReasonVoicemailDetected {
		t.Fatalf("string-encoded args: %+v", sig)
	}

	sig = ResolveEndCallSignal(nil)
	if sig.Reason != EndCallReasonNone || sig.Malformed {
		t.Fatalf("nil args must be no signal: %+v", sig)
	}

	sig = ResolveEndCallSignal(json.RawMessage(`not json`))
	if !sig.Malformed {
		t.Fatalf("expected malformed: %+v", sig)
	}
}
