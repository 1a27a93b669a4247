package api

import (
	"log"
	stdhttp "net/http"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the public API. metrics may be nil.
func NewRouter(env intconfig.Env, a *h.API, metrics stdhttp.Handler) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	auth := middleware.Auth(env.JWTSecret)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", a.Health)
		api.GET("/db-check", a.DBCheck)

		routes := api.Group("/routes")
		routes.GET("/:id", a.GetRoute)
		routes.POST("/:id/stops", auth, adminOnly, a.InsertStop)
		routes.DELETE("/:id/stops/:stopId", auth, adminOnly, a.RemoveStop)

		api.GET("/buses/:id", a.GetBus)

		schedules := api.Group("/schedules")
		schedules.GET("", a.ListSchedules)
		schedules.GET("/", a.ListSchedules)
		schedules.GET("/draft", a.DraftSchedule)
		schedules.GET("/:id", a.GetSchedule)
		schedules.POST("", auth, adminOnly, a.CreateSchedule)
		schedules.POST("/", auth, adminOnly, a.CreateSchedule)
		schedules.PUT("/:id", auth, adminOnly, a.UpdateSchedule)
		schedules.DELETE("/:id", auth, adminOnly, a.DeleteSchedule)

		api.POST("/quote", a.Quote)

		tickets := api.Group("/tickets", auth)
		tickets.POST("", a.CreateTicket)
		tickets.GET("", a.ListTickets)
		tickets.GET("/:id", a.GetTicket)
		tickets.PATCH("/:id/seats", a.ChangeSeats)
		tickets.PATCH("/:id/pay", a.PayTicket)
		tickets.PATCH("/:id/cancel", a.CancelTicket)
		tickets.PATCH("/:id/refund", adminOnly, a.RefundTicket)
		tickets.PATCH("/:id/payment-failed", a.PaymentFailed)
		tickets.GET("/:id/payment-request", a.PaymentRequest)
		tickets.GET("/:id/e-ticket", a.ETicket)
	}

	return r
}
