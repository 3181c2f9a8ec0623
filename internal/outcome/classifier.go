package outcome

import "strings"

// Outcome is the classification of a completed call.
// Assigned exactly once per call, after completion; immutable thereafter.
type Outcome string

const (
	OutcomeHuman     Outcome = "human"
	OutcomeVoicemail Outcome = "voicemail"
	OutcomeIVR       Outcome = "ivr"
	OutcomeNoAnswer  Outcome = "no_answer"
	OutcomeBusy      Outcome = "busy"
	OutcomeFailed    Outcome = "failed"
)

// Phrase lists are ordered literal substrings matched case-insensitively.
// Voicemail phrases are checked strictly before menu phrases: some phrases
// belong to both pattern families and a transcript matching both must
// classify as voicemail. Order within each list is load-bearing.
var voicemailPhrases = []string{
	"leave a message",
	"leave your message",
	"after the beep",
	"after the tone",
	"at the tone",
	"mailbox is full",
	"voice mail",
	"voicemail",
	"is not available",
	"unable to take your call",
	"record your message",
}

var menuPhrases = []string{
	"press 1",
	"press 2",
	"press one",
	"for sales",
	"for support",
	"for customer service",
	"your call is important",
	"please hold",
	"all representatives are busy",
	"all of our agents",
	"for english",
	"para espanol",
	"main menu",
}

// Classify turns end-of-call signals into one Outcome.
//
// Precedence, first match wins:
//  1. structured ended-reason (substring, case-insensitive)
//  2. endCall tool invocation signal from the message log
//  3. two-tier transcript phrase heuristic (voicemail before menu)
//  4. human
//
// Empty inputs never fail; they fall through to human.
func Classify(endedReason, transcript string, messages []ConversationMessage) Outcome {
	reason := strings.ToLower(endedReason)
	switch {
	case strings.Contains(reason, "voicemail"), strings.Contains(reason, "machine"):
		return OutcomeVoicemail
	case strings.Contains(reason, "no-answer"), strings.Contains(reason, "timeout"):
		return OutcomeNoAnswer
	case strings.Contains(reason, "busy"):
		return OutcomeBusy
	case strings.Contains(reason, "failed"), strings.Contains(reason, "error"):
		return OutcomeFailed
	}

	if o, ok := classifyFromToolCalls(messages); ok {
		return o
	}

	if d := DetectAutomatedSystem(transcript); d.Detected {
		switch d.Type {
		case DetectionVoicemail:
			return OutcomeVoicemail
		case DetectionIVR:
			return OutcomeIVR
		}
	}

	return OutcomeHuman
}

// classifyFromToolCalls scans messages in order for an endCall invocation
// carrying a recognized reason. A malformed payload is no signal, not an error.
func classifyFromToolCalls(messages []ConversationMessage) (Outcome, bool) {
	for _, m := range messages {
		for _, tc := range m.ToolCalls {
			if tc.Function.Name != endCallToolName {
				continue
			}
			sig := ResolveEndCallSignal(tc.Function.Arguments)
			switch sig.Reason {
			case EndCallReasonIVRDetected:
				return OutcomeIVR, true
			case EndCallReasonVoicemailDetected:
				return OutcomeVoicemail, true
			}
		}
	}
	return "", false
}

// DetectionType labels what an automated-system probe matched.
type DetectionType string

const (
	DetectionVoicemail DetectionType = "voicemail"
	DetectionIVR       DetectionType = "ivr"
)

// Detection is the result of probing a transcript snippet for automated-system
// phrases. Pattern holds the matched literal phrase.
type Detection struct {
	Detected bool          `json:"detected"`
	Type     DetectionType `json:"type,omitempty"`
	Pattern  string        `json:"pattern,omitempty"`
}

// DetectAutomatedSystem applies the two-tier phrase search (voicemail before
// menu) to a transcript snippet in isolation. Used for live in-call probes as
// well as the final classification fallback.
func DetectAutomatedSystem(transcript string) Detection {
	if transcript == "" {
		return Detection{}
	}
	lower := strings.ToLower(transcript)

	for _, p := range voicemailPhrases {
		if strings.Contains(lower, p) {
			return Detection{Detected: true, Type: DetectionVoicemail, Pattern: p}
		}
	}
	for _, p := range menuPhrases {
		if strings.Contains(lower, p) {
			return Detection{Detected: true, Type: DetectionIVR, Pattern: p}
		}
	}
	return Detection{}
}
