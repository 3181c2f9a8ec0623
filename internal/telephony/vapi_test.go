package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voice-dispatch/internal/amd"
)

func TestVapiPlaceCall(t *testing.T) {
	var gotPayload vapiCallPayload
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/call" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"call-123"}`))
	}))
	defer srv.Close()

	c := NewVapiClient(srv.URL, "secret-key", 5*time.Second)
	ref, err := c.PlaceCall(context.Background(), ProviderCallRequest{
		TenantID:    "t1",
		Destination: "+15551234567",
		NumberID:    "num-1",
		DisplayName: "Acme",
		Pitch:       "You are calling about roofing.",
		AMD:         amd.GetProfile(amd.ProfileBalanced),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ref.ProviderCallID != "call-123" || ref.Provider != "vapi" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotPayload.PhoneNumberID != "num-1" || gotPayload.Customer.Number != "+15551234567" {
		t.Fatalf("unexpected payload: %+v", gotPayload)
	}
	if gotPayload.Assistant == nil || gotPayload.Assistant.VoicemailDetection == nil {
		t.Fatalf("expected inline assistant with AMD settings")
	}
	if !gotPayload.Assistant.VoicemailDetection.Enabled {
		t.Fatalf("expected AMD enabled")
	}
}

func TestVapiPlaceCallWithAssistantID(t *testing.T) {
	var gotPayload vapiCallPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"id":"call-9"}`))
	}))
	defer srv.Close()

	c := NewVapiClient(srv.URL, "k", 5*time.Second)
	_, err := c.PlaceCall(context.Background(), ProviderCallRequest{
		Destination: "+1555",
		NumberID:    "n",
		AssistantID: "asst-1",
		AMD:         amd.GetProfile(amd.ProfileAggressive),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotPayload.AssistantID != "asst-1" || gotPayload.Assistant != nil {
		t.Fatalf("expected assistant reference, got %+v", gotPayload)
	}
	if gotPayload.AssistantOverrides == nil || gotPayload.AssistantOverrides.VoicemailDetection == nil {
		t.Fatalf("expected AMD override for referenced assistant")
	}
}

func TestVapiPlaceCallDisabledAMDOmitsDetection(t *testing.T) {
	var gotPayload vapiCallPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"id":"c"}`))
	}))
	defer srv.Close()

	c := NewVapiClient(srv.URL, "k", 5*time.Second)
	_, err := c.PlaceCall(context.Background(), ProviderCallRequest{
		Destination: "+1555",
		NumberID:    "n",
		AMD:         amd.GetProfile(amd.ProfileDisabled),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotPayload.Assistant.VoicemailDetection != nil {
		t.Fatalf("disabled profile must omit voicemail detection")
	}
}

func TestVapiPlaceCallProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "number not allowed", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewVapiClient(srv.URL, "k", 5*time.Second)
	_, err := c.PlaceCall(context.Background(), ProviderCallRequest{Destination: "+1555", NumberID: "n"})
	if !errors.Is(err, ErrProviderRejected) {
		t.Fatalf("expected ErrProviderRejected, got %v", err)
	}
}

func TestVapiGetCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call/c1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"c1","status":"ended","endedReason":"customer-ended-call"}`))
	}))
	defer srv.Close()

	c := NewVapiClient(srv.URL, "k", 5*time.Second)
	info, err := c.GetCall(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if info.Status != "ended" || info.EndedReason != "customer-ended-call" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestVapiValidatesInput(t *testing.T) {
	c := NewVapiClient("http://localhost:0", "k", time.Second)
	if _, err := c.PlaceCall(context.Background(), ProviderCallRequest{NumberID: "n"}); err == nil {
		t.Fatalf("expected error for missing destination")
	}
	if _, err := c.PlaceCall(context.Background(), ProviderCallRequest{Destination: "+1"}); err == nil {
		t.Fatalf("expected error for missing number id")
	}
}
