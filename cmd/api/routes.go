package main

import (
	"voice-dispatch/internal/auth"
	"voice-dispatch/internal/httpapi"
	"voice-dispatch/internal/rbac"
	"voice-dispatch/internal/telephony"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, authMW gin.HandlerFunc, h httpapi.Handlers, webhooks telephony.WebhookHandler) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public). Always acknowledged with 2xx so the
	// provider does not retry into a failure loop.
	r.POST("/webhooks/voice", webhooks.HandleVoiceWebhook)

	// Token issuance. Skeleton-only: no credential validation yet.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// Identity echo, useful for debugging token plumbing.
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			tid, _ := auth.TenantID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "tenant_id": tid, "role": role})
		})

		// DISPATCH routes
		disp := v1.Group("/dispatch")
		disp.Use(rbac.RequireTenant())
		disp.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleOperator, rbac.RoleSuperAdmin))
		{
			disp.POST("/call", h.DispatchCall)
			disp.POST("/batch", h.DispatchBatch)
		}

		// NUMBERS routes (read-only pool view)
		numbers := v1.Group("/numbers")
		numbers.Use(rbac.RequireTenant())
		numbers.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleOperator, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			numbers.GET("/capacity", h.NumbersCapacity)
		}

		// REPORTS routes
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireTenant())
		reports.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			reports.GET("/outcomes", h.OutcomeReport)
			reports.GET("/numbers", h.NumberUsageReport)
		}

		// ADMIN routes
		// Only owner/super_admin can access admin endpoints by default.
		// Hidden network_operator is intentionally NOT included unless explicitly desired.
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireTenant())
		admin.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleSuperAdmin))
		{
			admin.GET("/numbers", h.AdminListNumbers)
			admin.POST("/numbers", h.AdminProvisionNumber)
			admin.POST("/numbers/:number_id/limit", h.AdminSetNumberLimit)
			admin.POST("/numbers/:number_id/status", h.AdminSetNumberStatus)

			admin.POST("/routing/overrides", h.AdminPutRouteOverride)
			admin.DELETE("/routing/overrides", h.AdminDeleteRouteOverride)
		}
	}
}
