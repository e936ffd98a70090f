package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Centralink87/centralinkxyz/internal/auth"
	"github.com/Centralink87/centralinkxyz/telemetry"
)

func SetupRoutes(r *gin.Engine, h *Handlers, ah *AuthHandlers) {
	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", ah.Register)
		v1.POST("/auth/login", ah.Login)

		authed := v1.Group("", auth.RequireAuth())
		{
			authed.POST("/requests", h.CreateRequest)
			authed.GET("/requests", h.ListRequests)
			authed.GET("/requests/:id", h.GetRequest)
			authed.PUT("/requests/:id", h.UpdateRequest)
			authed.DELETE("/requests/:id", h.DeleteRequest)

			authed.POST("/transactions", h.CreateTransaction)
			authed.GET("/transactions", h.ListTransactions)
			authed.GET("/transactions/:id", h.GetTransaction)
			authed.PUT("/transactions/:id", h.UpdateTransaction)
			authed.DELETE("/transactions/:id", h.DeleteTransaction)
			authed.POST("/transactions/:id/close", h.CloseTransaction)

			authed.GET("/overview", h.Overview)

			admin := authed.Group("/admin", auth.RequireAdmin())
			{
				admin.POST("/requests/:id/validate", h.ValidateRequest)
				admin.POST("/requests/:id/reject", h.RejectRequest)
				admin.POST("/transactions/:id/validate", h.ValidateTransaction)
				admin.POST("/transactions/:id/reject", h.RejectTransaction)

				// Listed under /pending to keep static segments out of the
				// :id subtrees.
				admin.GET("/pending/requests", h.PendingRequests)
				admin.GET("/pending/transactions", h.PendingTransactions)
				admin.GET("/pending/counts", h.PendingCounts)
				admin.GET("/audit/events", h.AuditEventsPoll)
			}
		}
	}
	r.GET("/health", h.Health)
	r.GET("/metrics", telemetry.MetricsHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
