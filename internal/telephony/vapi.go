package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VapiClient talks to the voice-call provider's REST API.
//
// All requests carry the client's bounded timeout; a timed-out request
// surfaces as an error, which the dispatcher converts to a failed result.
type VapiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// ErrProviderRejected wraps 4xx/5xx provider responses. The provider's
// message is passed through; no automatic retry happens here.
var ErrProviderRejected = errors.New("telephony: provider rejected call")

func NewVapiClient(baseURL, apiKey string, timeout time.Duration) *VapiClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VapiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *VapiClient) Name() string { return "vapi" }

func (c *VapiClient) PlaceCall(ctx context.Context, req ProviderCallRequest) (CallRef, error) {
	if req.Destination == "" {
		return CallRef{}, errors.New("telephony: destination required")
	}
	if req.NumberID == "" {
		return CallRef{}, errors.New("telephony: number_id required")
	}

	body, err := json.Marshal(buildCallPayload(req))
	if err != nil {
		return CallRef{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call", bytes.NewReader(body))
	if err != nil {
		return CallRef{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return CallRef{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CallRef{}, providerError(resp)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CallRef{}, fmt.Errorf("telephony: decode call response: %w", err)
	}
	if out.ID == "" {
		return CallRef{}, errors.New("telephony: provider returned no call id")
	}
	return CallRef{ProviderCallID: out.ID, Provider: c.Name()}, nil
}

func (c *VapiClient) GetCall(ctx context.Context, providerCallID string) (CallStatusInfo, error) {
	if providerCallID == "" {
		return CallStatusInfo{}, errors.New("telephony: provider_call_id required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/call/"+providerCallID, nil)
	if err != nil {
		return CallStatusInfo{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return CallStatusInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CallStatusInfo{}, providerError(resp)
	}

	var out struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		EndedReason string `json:"endedReason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CallStatusInfo{}, fmt.Errorf("telephony: decode call status: %w", err)
	}
	return CallStatusInfo{ProviderCallID: out.ID, Status: out.Status, EndedReason: out.EndedReason}, nil
}

func providerError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("%w: status %d: %s", ErrProviderRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
}
