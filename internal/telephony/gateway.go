package telephony

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GatewayClient talks to the regional telephony gateway's callback API.
//
// The gateway places calls from one fixed originating extension; number
// rotation never applies on this path. Requests are signed with the tenant
// key/secret pair issued by the gateway operator.
type GatewayClient struct {
	baseURL   string
	apiKey    string
	apiSecret string

	// extension is the fixed originating identity on the trunk.
	extension string
	// defaultCallerID is the presentation number used when a request does
	// not override it.
	defaultCallerID string

	http *http.Client
}

func NewGatewayClient(baseURL, apiKey, apiSecret, extension, defaultCallerID string, timeout time.Duration) *GatewayClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GatewayClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		apiSecret:       apiSecret,
		extension:       extension,
		defaultCallerID: defaultCallerID,
		http:            &http.Client{Timeout: timeout},
	}
}

func (c *GatewayClient) Name() string { return "gateway" }

// Configured reports whether the credentials required for the gateway route
// are present. A destination that requires this route while unconfigured is a
// hard error at the routing layer, never a silent fallback.
func (c *GatewayClient) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != "" && c.apiSecret != "" && c.extension != ""
}

func (c *GatewayClient) CallToNumber(ctx context.Context, req GatewayCallRequest) (CallRef, error) {
	if !c.Configured() {
		return CallRef{}, errors.New("telephony: gateway not configured")
	}
	if req.Destination == "" {
		return CallRef{}, errors.New("telephony: destination required")
	}

	form := url.Values{}
	form.Set("from", c.extension)
	form.Set("to", req.Destination)
	callerID := req.CallerID
	if callerID == "" {
		callerID = c.defaultCallerID
	}
	if callerID != "" {
		form.Set("caller_id", callerID)
	}

	encoded := form.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/request/callback", strings.NewReader(encoded))
	if err != nil {
		return CallRef{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", c.apiKey+":"+c.sign(encoded))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return CallRef{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return CallRef{}, fmt.Errorf("%w: gateway status %d", ErrProviderRejected, resp.StatusCode)
	}

	var out struct {
		Status string `json:"status"`
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return CallRef{}, fmt.Errorf("telephony: decode gateway response: %w", err)
	}
	if out.Status != "" && out.Status != "success" {
		return CallRef{}, fmt.Errorf("%w: gateway status %q", ErrProviderRejected, out.Status)
	}
	return CallRef{ProviderCallID: out.CallID, Provider: c.Name()}, nil
}

func (c *GatewayClient) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
