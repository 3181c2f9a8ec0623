package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voice-dispatch/internal/calls"
	"voice-dispatch/internal/outcome"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const endOfCallBody = `{
  "message": {
    "type": "end-of-call-report",
    "endedReason": "customer-ended-call",
    "transcript": "Hello? Yes, speaking.",
    "summary": "Spoke with the customer.",
    "recordingUrl": "https://recordings.example/c1.wav",
    "durationSeconds": 42.7,
    "call": {
      "id": "call-1",
      "phoneNumberId": "num-1",
      "customer": {"number": "+15551234567"},
      "metadata": {"tenant_id": "t1"}
    },
    "messages": []
  }
}`

func newWebhookRouter(h WebhookHandler) *gin.Engine {
	r := gin.New()
	r.POST("/webhooks/voice", h.HandleVoiceWebhook)
	return r
}

func TestWebhookEndOfCallPersistsClassifiedRecord(t *testing.T) {
	store := calls.NewMemoryStore()
	r := newWebhookRouter(WebhookHandler{Calls: store})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(endOfCallBody))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	rec, err := store.Get(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if rec.Outcome != outcome.OutcomeHuman {
		t.Fatalf("expected human outcome, got %s", rec.Outcome)
	}
	if rec.TenantID != "t1" || rec.NumberID != "num-1" || rec.DurationSeconds != 42 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Status != calls.CallStatusCompleted {
		t.Fatalf("expected completed status, got %s", rec.Status)
	}
}

func TestWebhookVoicemailReasonClassified(t *testing.T) {
	store := calls.NewMemoryStore()
	r := newWebhookRouter(WebhookHandler{Calls: store})

	body := strings.Replace(endOfCallBody, "customer-ended-call", "voicemail", 1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(body)))

	rec, err := store.Get(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if rec.Outcome != outcome.OutcomeVoicemail {
		t.Fatalf("expected voicemail, got %s", rec.Outcome)
	}
}

func TestWebhookStatusUpdate(t *testing.T) {
	store := calls.NewMemoryStore()
	r := newWebhookRouter(WebhookHandler{Calls: store})

	body := `{"message":{"type":"status-update","status":"in-progress","call":{"id":"call-2"}}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	rec, err := store.Get(context.Background(), "call-2")
	if err != nil {
		t.Fatalf("status not persisted: %v", err)
	}
	if rec.Status != calls.CallStatusInProgress {
		t.Fatalf("expected in_progress, got %s", rec.Status)
	}
}

func TestWebhookAcknowledgesMalformedPayload(t *testing.T) {
	r := newWebhookRouter(WebhookHandler{Calls: calls.NewMemoryStore()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader("not json")))
	if w.Code != http.StatusOK {
		t.Fatalf("malformed payload must still be acknowledged, got %d", w.Code)
	}
}

type failingStore struct{}

func (failingStore) UpsertCompleted(ctx context.Context, r calls.Record) error {
	return errors.New("db down")
}
func (failingStore) CreateDispatched(ctx context.Context, r calls.Record) error {
	return errors.New("db down")
}
func (failingStore) UpdateStatus(ctx context.Context, id string, s calls.CallStatus) error {
	return errors.New("db down")
}
func (failingStore) Get(ctx context.Context, id string) (calls.Record, error) {
	return calls.Record{}, calls.ErrNotFound
}

func TestWebhookAcknowledgesPersistenceFailure(t *testing.T) {
	r := newWebhookRouter(WebhookHandler{Calls: failingStore{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(endOfCallBody)))
	if w.Code != http.StatusOK {
		t.Fatalf("persistence failure must still be acknowledged, got %d", w.Code)
	}
}

type mapDeduper struct{ seen map[string]bool }

func (d *mapDeduper) FirstDelivery(ctx context.Context, key string) (bool, error) {
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func TestWebhookDeduplicatesDeliveries(t *testing.T) {
	store := calls.NewMemoryStore()
	r := newWebhookRouter(WebhookHandler{Calls: store, Dedup: &mapDeduper{seen: map[string]bool{}}})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(endOfCallBody)))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(endOfCallBody)))

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("both deliveries must be acknowledged")
	}
	if !strings.Contains(w2.Body.String(), "duplicate") {
		t.Fatalf("expected duplicate ack, got %s", w2.Body.String())
	}
}

type recordingCap struct {
	released []string
}

func (c *recordingCap) Release(ctx context.Context, tenantID string) error {
	c.released = append(c.released, tenantID)
	return nil
}

func TestWebhookEndOfCallReleasesCapSlot(t *testing.T) {
	store := calls.NewMemoryStore()
	slots := &recordingCap{}
	r := newWebhookRouter(WebhookHandler{Calls: store, Cap: slots})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(endOfCallBody)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(slots.released) != 1 || slots.released[0] != "t1" {
		t.Fatalf("expected release for t1, got %v", slots.released)
	}
}

func TestWebhookCapReleaseFallsBackToStoredRecord(t *testing.T) {
	store := calls.NewMemoryStore()
	err := store.CreateDispatched(context.Background(), calls.Record{
		ProviderCallID: "call-1",
		TenantID:       "t1",
		Status:         calls.CallStatusQueued,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	slots := &recordingCap{}
	r := newWebhookRouter(WebhookHandler{Calls: store, Cap: slots})

	// No metadata in the payload; the tenant comes from the dispatch record.
	body := strings.Replace(endOfCallBody, `"metadata": {"tenant_id": "t1"}`, `"metadata": {}`, 1)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/voice", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(slots.released) != 1 || slots.released[0] != "t1" {
		t.Fatalf("expected release for t1 via stored record, got %v", slots.released)
	}
}

func TestParseWebhookRejectsEmptyMessage(t *testing.T) {
	if _, err := ParseWebhook([]byte(`{}`)); !errors.Is(err, ErrEmptyWebhook) {
		t.Fatalf("expected ErrEmptyWebhook, got %v", err)
	}
}
