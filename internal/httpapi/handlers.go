package httpapi

import (
	"errors"
	"net/http"
	"time"

	"voice-dispatch/internal/audit"
	"voice-dispatch/internal/auth"
	"voice-dispatch/internal/dispatch"
	"voice-dispatch/internal/numberpool"
	"voice-dispatch/internal/rbac"
	"voice-dispatch/internal/reporting"
	"voice-dispatch/internal/routing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth       *auth.Manager
	Dispatcher *dispatch.Dispatcher
	Pool       *numberpool.Service
	Reports    *reporting.Service
	Audit      *audit.Service
	Overrides  *routing.MemoryOverrideStore

	// BatchPacing is the inter-attempt delay for batch dispatch.
	BatchPacing time.Duration

	// MaxBatchSize bounds one batch request.
	MaxBatchSize int
}

const defaultMaxBatchSize = 500

// --- Auth ---

type loginRequest struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.TenantID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, tenant_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.TenantID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Dispatch ---

// DispatchCall places a single outbound call for the caller's tenant.
// Quota exhaustion is a skipped result, not an HTTP error.
func (h Handlers) DispatchCall(c *gin.Context) {
	if h.Dispatcher == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dispatcher not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	var req dispatch.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.TenantID = tenantID

	ctx := routing.WithClientIP(c.Request.Context(), c.ClientIP())
	res, err := h.Dispatcher.DispatchSingle(ctx, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, routing.ErrGatewayNotConfigured) {
			status = http.StatusUnprocessableEntity
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

type batchRequest struct {
	Requests []dispatch.Request `json:"requests"`

	// PacingMs optionally overrides the configured inter-attempt delay.
	PacingMs int `json:"pacing_ms,omitempty"`
}

// DispatchBatch runs a sequential batch for the caller's tenant.
func (h Handlers) DispatchBatch(c *gin.Context) {
	if h.Dispatcher == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dispatcher not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.Requests) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "requests required"})
		return
	}
	maxBatch := h.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatchSize
	}
	if len(req.Requests) > maxBatch {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "batch too large"})
		return
	}
	for i := range req.Requests {
		req.Requests[i].TenantID = tenantID
	}

	pacing := h.BatchPacing
	if req.PacingMs > 0 {
		pacing = time.Duration(req.PacingMs) * time.Millisecond
	}

	ctx := routing.WithClientIP(c.Request.Context(), c.ClientIP())
	batch, err := h.Dispatcher.DispatchBatch(ctx, req.Requests, pacing)
	if err != nil {
		// Attempts completed before the abort are still in the batch;
		// return them so the caller knows which calls went out.
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "batch": batch})
		return
	}
	c.JSON(http.StatusOK, batch)
}

// --- Numbers ---

// NumbersCapacity reports today's remaining dispatch capacity for the tenant.
func (h Handlers) NumbersCapacity(c *gin.Context) {
	if h.Pool == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "pool not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	remaining, err := h.Pool.RemainingCapacity(c.Request.Context(), tenantID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "capacity lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID, "remaining_capacity": remaining})
}

// --- Reports ---

// OutcomeReport aggregates classified outcomes over a time window.
// Query: from, to (RFC 3339).
func (h Handlers) OutcomeReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
		return
	}

	out, err := h.Reports.OutcomeSummary(c.Request.Context(), reporting.OutcomeSummaryRequest{
		TenantID: tenantID,
		Range:    reporting.TimeRange{From: from, To: to},
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// NumberUsageReport lists per-number usage for the tenant's pool.
func (h Handlers) NumberUsageReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	out, err := h.Reports.NumberUsage(c.Request.Context(), reporting.NumberUsageRequest{TenantID: tenantID})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Admin: pool management ---

type provisionNumberRequest struct {
	NumberID   string `json:"number_id"`
	E164       string `json:"e164,omitempty"`
	DailyLimit int    `json:"daily_limit"`
}

// AdminProvisionNumber adds a number to the tenant's pool.
// RBAC: owner or super_admin.
func (h Handlers) AdminProvisionNumber(c *gin.Context) {
	if h.Pool == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "pool not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	var req provisionNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	n, err := h.Pool.Provision(c.Request.Context(), tenantID, numberpool.ProvisionRequest{
		NumberID:   req.NumberID,
		E164:       req.E164,
		DailyLimit: req.DailyLimit,
	})
	if err != nil {
		switch {
		case errors.Is(err, numberpool.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "number_id/daily_limit invalid"})
		case errors.Is(err, numberpool.ErrAlreadyExists):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "number already exists"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "provision failed"})
		}
		return
	}

	h.logAdmin(c, tenantID, "number provisioned", n.ID, "")
	c.JSON(http.StatusOK, n)
}

type setLimitRequest struct {
	DailyLimit int `json:"daily_limit"`
}

// AdminSetNumberLimit changes a number's daily quota.
func (h Handlers) AdminSetNumberLimit(c *gin.Context) {
	if h.Pool == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "pool not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	numberID := c.Param("number_id")

	var req setLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Pool.SetLimit(c.Request.Context(), tenantID, numberID, req.DailyLimit); err != nil {
		switch {
		case errors.Is(err, numberpool.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "daily_limit invalid"})
		case errors.Is(err, numberpool.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "number not found"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}

	if h.Audit != nil {
		uid, _ := auth.UserID(c.Request.Context())
		role, _ := auth.Role(c.Request.Context())
		_ = h.Audit.LogQuotaAdjust(c.Request.Context(), tenantID, uid, role, c.ClientIP(), numberID, req.DailyLimit, "")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// AdminSetNumberStatus enables or disables a pool number.
func (h Handlers) AdminSetNumberStatus(c *gin.Context) {
	if h.Pool == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "pool not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	numberID := c.Param("number_id")

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Pool.SetStatus(c.Request.Context(), tenantID, numberID, numberpool.NumberStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, numberpool.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "status must be active or disabled"})
		case errors.Is(err, numberpool.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "number not found"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}

	h.logAdmin(c, tenantID, "number status changed to "+req.Status, numberID, "")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AdminListNumbers returns the tenant's pool with today's counters.
func (h Handlers) AdminListNumbers(c *gin.Context) {
	if h.Pool == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "pool not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	numbers, err := h.Pool.List(c.Request.Context(), tenantID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": numbers})
}

// --- Admin: routing overrides ---

type putOverrideRequest struct {
	ForceRoute string `json:"force_route"`
	TTLMinutes int    `json:"ttl_minutes"`
	Metadata   string `json:"metadata,omitempty"`
}

// AdminPutRouteOverride pins the tenant's outbound path for a bounded window.
func (h Handlers) AdminPutRouteOverride(c *gin.Context) {
	if h.Overrides == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "overrides not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	var req putOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	route := routing.Route(req.ForceRoute)
	if route != routing.RouteGateway && route != routing.RouteProvider {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "force_route must be gateway or provider"})
		return
	}
	if req.TTLMinutes <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "ttl_minutes must be > 0"})
		return
	}

	o := routing.Override{
		TenantID:   tenantID,
		OverrideID: uuid.NewString(),
		ForceRoute: route,
		ExpiresAt:  time.Now().Add(time.Duration(req.TTLMinutes) * time.Minute),
		Metadata:   req.Metadata,
	}
	h.Overrides.Put(o)

	h.logAdmin(c, tenantID, "route override installed: "+req.ForceRoute, "", req.Metadata)
	c.JSON(http.StatusOK, gin.H{"override_id": o.OverrideID, "expires_at": o.ExpiresAt})
}

// AdminDeleteRouteOverride removes the tenant's active override, if any.
func (h Handlers) AdminDeleteRouteOverride(c *gin.Context) {
	if h.Overrides == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "overrides not configured"})
		return
	}
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}
	h.Overrides.Delete(tenantID)

	h.logAdmin(c, tenantID, "route override removed", "", "")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h Handlers) logAdmin(c *gin.Context, tenantID, message, numberID, metadata string) {
	if h.Audit == nil {
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	_ = h.Audit.LogAdminAction(c.Request.Context(), tenantID, uid, role, c.ClientIP(), message, numberID, metadata)
}

// Convenience middleware bundles.

func RequireTenantAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireTenant(), rbac.RequireAnyRole(roles...)}
}
