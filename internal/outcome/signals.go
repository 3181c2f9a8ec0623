package outcome

import "encoding/json"

// The voice provider reports the agent's tool invocations in the end-of-call
// message log. The termination tool is the one classification cares about.
const endCallToolName = "endCall"

// ConversationMessage is the subset of the provider's message log consumed by
// classification. Role and content are kept for call-record persistence.
type ConversationMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries loosely-typed arguments: providers deliver them either
// as a JSON-encoded string or as an already-parsed object. The raw form is
// kept and resolved once, at the classification boundary.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// EndCallReason enumerates the termination reasons the agent can report.
type EndCallReason string

const (
	EndCallReasonIVRDetected       EndCallReason = "ivr_detected"
	EndCallReasonVoicemailDetected EndCallReason = "voicemail_detected"
	EndCallReasonNone              EndCallReason = ""
)

// EndCallSignal is the resolved form of an endCall invocation's arguments.
// Malformed payloads resolve to Malformed=true with no reason, which
// classification treats as "no signal from this invocation".
type EndCallSignal struct {
	Reason    EndCallReason
	Malformed bool
}

type endCallArgs struct {
	Reason string `json:"reason"`
}

// ResolveEndCallSignal parses endCall arguments, accepting either a parsed
// object or a JSON-encoded string containing one.
func ResolveEndCallSignal(raw json.RawMessage) EndCallSignal {
	if len(raw) == 0 {
		return EndCallSignal{Reason: EndCallReasonNone}
	}

	var args endCallArgs
	if err := json.Unmarshal(raw, &args); err == nil {
		return EndCallSignal{Reason: EndCallReason(args.Reason)}
	}

	// String-encoded variant: "{\"reason\":\"ivr_detected\"}"
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &args); err == nil {
			return EndCallSignal{Reason: EndCallReason(args.Reason)}
		}
	}

	return EndCallSignal{Malformed: true}
}
