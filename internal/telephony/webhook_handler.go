package telephony

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"voice-dispatch/internal/calls"
	"voice-dispatch/internal/outcome"
	"voice-dispatch/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds webhook payloads (transcripts included).
const maxWebhookBody = 1 << 20

// Deduper suppresses repeat webhook deliveries. Best effort: when the deduper
// is unavailable, reprocessing is safe because record writes are keyed by
// provider call ID.
type Deduper interface {
	FirstDelivery(ctx context.Context, key string) (bool, error)
}

// CapReleaser frees a tenant's in-flight call slot once the call finishes.
// Optional; dispatch holds a slot per accepted call and this is the only
// place that knows the call ended.
type CapReleaser interface {
	Release(ctx context.Context, tenantID string) error
}

// WebhookHandler ingests asynchronous call events from the voice provider.
//
// The handler always acknowledges with 2xx, even when persistence fails:
// the provider retries non-2xx deliveries indefinitely, and a missed outcome
// update is preferable to a retry storm. Persistence failures are logged.
type WebhookHandler struct {
	Calls calls.Store
	Dedup Deduper
	Cap   CapReleaser
}

func (h WebhookHandler) HandleVoiceWebhook(c *gin.Context) {
	log := logger.FromGin(c)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Warn("webhook body read failed", "err", err)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	env, err := ParseWebhook(body)
	if err != nil {
		log.Warn("webhook parse failed", "err", err)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	msg := env.Message
	callID := msg.Call.ID
	if callID == "" {
		log.Warn("webhook without call id", "type", msg.Type)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if h.Dedup != nil {
		first, err := h.Dedup.FirstDelivery(c.Request.Context(), "webhook:"+msg.Type+":"+callID)
		if err != nil {
			log.Warn("webhook dedup unavailable", "err", err)
		} else if !first {
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
	}

	switch msg.Type {
	case WebhookStatusUpdate:
		h.handleStatusUpdate(c, msg)
	case WebhookEndOfCallReport:
		h.handleEndOfCall(c, msg)
	default:
		log.Debug("webhook type ignored", "type", msg.Type)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func (h WebhookHandler) handleStatusUpdate(c *gin.Context, msg WebhookMessage) {
	log := logger.FromGin(c)

	status := calls.MapProviderStatus(msg.Status)
	if h.Calls != nil {
		if err := h.Calls.UpdateStatus(c.Request.Context(), msg.Call.ID, status); err != nil {
			log.Error("call status persist failed", "call_id", msg.Call.ID, "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h WebhookHandler) handleEndOfCall(c *gin.Context, msg WebhookMessage) {
	log := logger.FromGin(c)

	result := outcome.Classify(msg.EndedReason, msg.Transcript, msg.Messages)

	rec := calls.Record{
		ProviderCallID:  msg.Call.ID,
		TenantID:        msg.Call.TenantID(),
		To:              msg.Call.Customer.Number,
		NumberID:        msg.Call.PhoneNumberID,
		Status:          calls.CallStatusCompleted,
		Outcome:         result,
		EndedReason:     msg.EndedReason,
		Transcript:      msg.Transcript,
		Summary:         msg.Summary,
		RecordingURL:    msg.RecordingURL,
		DurationSeconds: int(msg.DurationSeconds),
	}

	if h.Calls != nil {
		if err := h.Calls.UpsertCompleted(c.Request.Context(), rec); err != nil {
			// Acknowledge anyway; see handler doc.
			log.Error("call record persist failed", "call_id", msg.Call.ID, "err", err)
		}
	}

	h.releaseCapSlot(c.Request.Context(), log, rec)

	log.Info("call classified",
		"call_id", msg.Call.ID,
		"tenant_id", rec.TenantID,
		"ended_reason", msg.EndedReason,
		"outcome", result,
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "outcome": result})
}

// releaseCapSlot frees the in-flight slot held since dispatch. The tenant
// comes from the echoed metadata, falling back to the stored dispatch record.
// Best effort: the backend's TTL reclaims slots this misses.
func (h WebhookHandler) releaseCapSlot(ctx context.Context, log *slog.Logger, rec calls.Record) {
	if h.Cap == nil {
		return
	}
	tenantID := rec.TenantID
	if tenantID == "" && h.Calls != nil {
		if existing, err := h.Calls.Get(ctx, rec.ProviderCallID); err == nil {
			tenantID = existing.TenantID
		}
	}
	if tenantID == "" {
		return
	}
	if err := h.Cap.Release(ctx, tenantID); err != nil {
		log.Warn("concurrency slot release failed", "tenant_id", tenantID, "err", err)
	}
}
