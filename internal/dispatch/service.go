package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voice-dispatch/internal/amd"
	"voice-dispatch/internal/calls"
	"voice-dispatch/internal/numberpool"
	"voice-dispatch/internal/routing"
	"voice-dispatch/internal/telephony"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidArgument = errors.New("dispatch: invalid argument")
	ErrNotConfigured   = errors.New("dispatch: dependency not configured")
)

// ConcurrencyCap bounds a tenant's in-flight calls. Optional; a nil cap
// disables the check. Errors from the cap backend are logged, not fatal.
//
// A slot acquired for a dispatch that fails or is skipped is released before
// the dispatch returns. A slot for an accepted call stays held for the call's
// lifetime and is released by the end-of-call webhook; backends must expire
// stale slots so a missed webhook cannot pin one forever.
type ConcurrencyCap interface {
	Acquire(ctx context.Context, tenantID string) (bool, error)
	Release(ctx context.Context, tenantID string) error
}

// Dispatcher orchestrates single calls and batches:
// routing decision, resource acquisition, provider request, result recording.
//
// Quota ordering: usage is recorded via the pool *before* the provider
// confirms success. Over-counting a number on a provider failure is the
// accepted cost of never letting a concurrent burst exceed the daily cap.
type Dispatcher struct {
	Routes   *routing.Selector
	Pool     Pool
	Provider telephony.VoiceProvider
	Gateway  telephony.RegionalGateway

	// Calls receives dispatch-time records; best effort, never blocks a call.
	Calls calls.Store

	Cap ConcurrencyCap
	Log *slog.Logger

	// DefaultAMDProfile names the preset used when a request has none.
	DefaultAMDProfile string
}

// DispatchSingle places one call.
//
// Configuration and validation errors return a non-nil error. Provider
// rejections and quota exhaustion are reported inside the Result so batch
// processing can continue past them.
func (d *Dispatcher) DispatchSingle(ctx context.Context, req Request) (Result, error) {
	if req.Destination == "" {
		return Result{}, ErrInvalidArgument
	}
	if d.Routes == nil {
		return Result{}, ErrNotConfigured
	}

	decision, err := d.Routes.SelectRoute(ctx, req.TenantID, req.Destination)
	if err != nil {
		// Includes ErrGatewayNotConfigured: hard error, never a fallback.
		return Result{}, err
	}

	switch decision.Route {
	case routing.RouteGateway:
		return d.dispatchGateway(ctx, req), nil
	default:
		return d.dispatchProvider(ctx, req), nil
	}
}

func (d *Dispatcher) dispatchGateway(ctx context.Context, req Request) Result {
	res := Result{Destination: req.Destination, Route: routing.RouteGateway}
	if d.Gateway == nil {
		res.Status = StatusFailed
		res.Reason = "gateway not configured"
		return res
	}

	ref, err := d.Gateway.CallToNumber(ctx, telephony.GatewayCallRequest{
		TenantID:    req.TenantID,
		Destination: req.Destination,
		CallerID:    req.CallerID,
	})
	if err != nil {
		d.log().Warn("gateway call failed", "tenant_id", req.TenantID, "err", err)
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}

	res.Status = StatusInitiated
	res.ProviderCallID = ref.ProviderCallID
	d.recordDispatched(ctx, req, ref.ProviderCallID, "")
	return res
}

func (d *Dispatcher) dispatchProvider(ctx context.Context, req Request) Result {
	res := Result{Destination: req.Destination, Route: routing.RouteProvider}
	if d.Pool == nil || d.Provider == nil {
		res.Status = StatusFailed
		res.Reason = "provider path not configured"
		return res
	}

	number, ok, err := d.Pool.Acquire(ctx, req.TenantID)
	if err != nil {
		d.log().Error("pool acquire failed", "tenant_id", req.TenantID, "err", err)
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}
	if !ok {
		res.Status = StatusSkipped
		res.Reason = "quota exhausted"
		return res
	}
	res.NumberID = number.ID

	capHeld := false
	if d.Cap != nil {
		acquired, err := d.Cap.Acquire(ctx, req.TenantID)
		if err != nil {
			d.log().Warn("concurrency cap unavailable", "tenant_id", req.TenantID, "err", err)
		} else if !acquired {
			res.Status = StatusSkipped
			res.Reason = "concurrency limit reached"
			return res
		} else {
			capHeld = true
			// Released here only when no call ends up in flight. An accepted
			// call keeps the slot until the end-of-call webhook frees it.
			defer func() {
				if !capHeld {
					return
				}
				if err := d.Cap.Release(ctx, req.TenantID); err != nil {
					d.log().Warn("concurrency cap release failed", "tenant_id", req.TenantID, "err", err)
				}
			}()
		}
	}

	// Consume the quota slot before contacting the provider.
	dispatchID := uuid.NewString()
	if err := d.Pool.Record(ctx, req.TenantID, number.ID, dispatchID); err != nil {
		if errors.Is(err, numberpool.ErrQuotaExceeded) {
			// A concurrent dispatch took the last slot between Acquire and
			// Record; the conditional increment held the line.
			res.Status = StatusSkipped
			res.Reason = "quota exhausted"
			return res
		}
		d.log().Error("usage record failed", "tenant_id", req.TenantID, "number_id", number.ID, "err", err)
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}

	profile := d.amdProfile(req)
	callReq := telephony.ProviderCallRequest{
		TenantID:    req.TenantID,
		Destination: req.Destination,
		NumberID:    number.ID,
		AssistantID: req.AssistantID,
		DisplayName: req.DisplayName,
		Pitch:       req.Pitch,
		AMD:         profile,
	}
	if req.TenantID != "" {
		callReq.Metadata = map[string]string{"tenant_id": req.TenantID}
	}

	ref, err := d.Provider.PlaceCall(ctx, callReq)
	if err != nil {
		// Usage stays counted: the asymmetry is deliberate (reconciliation
		// can refund; a quota breach cannot be taken back).
		d.log().Warn("provider call failed", "tenant_id", req.TenantID, "number_id", number.ID, "err", err)
		res.Status = StatusFailed
		res.Reason = err.Error()
		return res
	}

	capHeld = false

	res.Status = StatusInitiated
	res.ProviderCallID = ref.ProviderCallID
	d.recordDispatched(ctx, req, ref.ProviderCallID, number.ID)
	return res
}

// DispatchBatch runs requests strictly sequentially with a fixed pacing delay
// between successive attempts (never before the first or after the last).
// Individual failures do not abort the batch.
func (d *Dispatcher) DispatchBatch(ctx context.Context, requests []Request, pacing time.Duration) (BatchResult, error) {
	var batch BatchResult

	var limiter *rate.Limiter
	if pacing > 0 {
		// Burst 1 with one initial token: the first attempt is immediate,
		// every later attempt waits out the pacing interval.
		limiter = rate.NewLimiter(rate.Every(pacing), 1)
	}

	for _, req := range requests {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return batch, err
			}
		}

		res, err := d.DispatchSingle(ctx, req)
		if err != nil {
			// Config/validation errors become failed entries so the batch
			// keeps its one-result-per-request shape.
			res = Result{Destination: req.Destination, Status: StatusFailed, Reason: err.Error()}
		}
		batch.add(res)
	}

	if len(requests) > 0 && d.Pool != nil {
		remaining, err := d.Pool.RemainingCapacity(ctx, requests[0].TenantID)
		if err != nil {
			d.log().Warn("remaining capacity lookup failed", "err", err)
		} else {
			batch.RemainingCapacity = remaining
		}
	}
	return batch, nil
}

func (d *Dispatcher) amdProfile(req Request) amd.Profile {
	name := req.AMDProfile
	if name == "" {
		name = d.DefaultAMDProfile
	}
	if req.AMDOverrides != nil {
		return amd.DeriveProfile(name, *req.AMDOverrides)
	}
	return amd.GetProfile(name)
}

func (d *Dispatcher) recordDispatched(ctx context.Context, req Request, providerCallID, numberID string) {
	if d.Calls == nil || providerCallID == "" {
		return
	}
	err := d.Calls.CreateDispatched(ctx, calls.Record{
		ProviderCallID: providerCallID,
		TenantID:       req.TenantID,
		To:             req.Destination,
		NumberID:       numberID,
		Status:         calls.CallStatusQueued,
	})
	if err != nil {
		d.log().Warn("dispatch record failed", "provider_call_id", providerCallID, "err", err)
	}
}

func (d *Dispatcher) log() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}
