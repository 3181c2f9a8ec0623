package telephony

import "voice-dispatch/internal/amd"

// Wire shapes for the voice provider's call API. These mirror the provider's
// JSON contract; keep business types out of them.

type vapiCallPayload struct {
	PhoneNumberID string `json:"phoneNumberId"`
	Customer      struct {
		Number string `json:"number"`
		Name   string `json:"name,omitempty"`
	} `json:"customer"`

	AssistantID        string           `json:"assistantId,omitempty"`
	Assistant          *vapiAssistant   `json:"assistant,omitempty"`
	AssistantOverrides *vapiAMDSettings `json:"assistantOverrides,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

type vapiAssistant struct {
	Name         string `json:"name,omitempty"`
	FirstMessage string `json:"firstMessage,omitempty"`
	Model        struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages,omitempty"`
	} `json:"model"`
	VoicemailDetection *vapiVoicemailDetection `json:"voicemailDetection,omitempty"`
}

type vapiAMDSettings struct {
	VoicemailDetection *vapiVoicemailDetection `json:"voicemailDetection,omitempty"`
}

type vapiVoicemailDetection struct {
	Provider                           string   `json:"provider"`
	Enabled                            bool     `json:"enabled"`
	MachineDetectionTimeout            int      `json:"machineDetectionTimeout,omitempty"`
	MachineDetectionSpeechThreshold    int      `json:"machineDetectionSpeechThreshold,omitempty"`
	MachineDetectionSpeechEndThreshold int      `json:"machineDetectionSpeechEndThreshold,omitempty"`
	MachineDetectionSilenceTimeout     int      `json:"machineDetectionSilenceTimeout,omitempty"`
	VoicemailDetectionTypes            []string `json:"voicemailDetectionTypes,omitempty"`
}

// buildCallPayload maps a provider-agnostic request onto the provider's wire
// shape. A pre-existing assistant gets the AMD profile as an override; an
// inline assistant embeds it directly.
func buildCallPayload(req ProviderCallRequest) vapiCallPayload {
	var p vapiCallPayload
	p.PhoneNumberID = req.NumberID
	p.Customer.Number = req.Destination
	p.Customer.Name = req.DisplayName
	p.Metadata = req.Metadata

	vd := voicemailDetection(req.AMD)

	if req.AssistantID != "" {
		p.AssistantID = req.AssistantID
		if vd != nil {
			p.AssistantOverrides = &vapiAMDSettings{VoicemailDetection: vd}
		}
		return p
	}

	a := &vapiAssistant{Name: req.DisplayName}
	a.Model.Provider = "openai"
	a.Model.Model = "gpt-4o"
	if req.Pitch != "" {
		a.Model.Messages = append(a.Model.Messages, struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{Role: "system", Content: req.Pitch})
	}
	a.VoicemailDetection = vd
	p.Assistant = a
	return p
}

func voicemailDetection(prof amd.Profile) *vapiVoicemailDetection {
	if !prof.Enabled {
		return nil
	}
	return &vapiVoicemailDetection{
		Provider:                           prof.Provider,
		Enabled:                            true,
		MachineDetectionTimeout:            prof.DetectionTimeoutSeconds,
		MachineDetectionSpeechThreshold:    prof.SpeechThresholdMs,
		MachineDetectionSpeechEndThreshold: prof.SpeechEndThresholdMs,
		MachineDetectionSilenceTimeout:     prof.SilenceTimeoutMs,
		VoicemailDetectionTypes:            prof.MachineDetectionSignals,
	}
}
