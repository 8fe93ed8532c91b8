package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/config"
	"shiftdesk/internal/api/handler"
	"shiftdesk/internal/api/middleware"
	"shiftdesk/pkg/jwt"
	"shiftdesk/pkg/redis"
)

// Setup builds the Gin engine with all routes mounted.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// Signature uploads are the largest payload; base64 inflates by a third.
	r.Use(middleware.BodyLimit(int64(cfg.Auth.SignatureMaxSizeBytes)*2 + 4096))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// accounts (no auth)
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// authenticated routes
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/me/signature", h.Auth.UploadSignature)

			// shift marketplace
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListOpen)
				shifts.GET("/mine", h.Shift.ListMine)
				shifts.GET("/:id", h.Shift.Get)
				shifts.POST("", h.Shift.Post)
				shifts.POST("/:id/claim", h.Shift.Claim)
				shifts.PUT("/:id/outcome", h.Shift.MarkOutcome)
				shifts.DELETE("/:id", h.Shift.Delete)

				shifts.POST("/:id/requests", h.Swap.Propose)
			}

			// swap requests
			requests := authorized.Group("/requests")
			{
				requests.GET("/incoming", h.Swap.ListIncoming)
				requests.GET("/outgoing", h.Swap.ListOutgoing)
				requests.POST("/:id/accept", h.Swap.Accept)
				requests.POST("/:id/decline", h.Swap.Decline)
			}

			// calendar feed
			authorized.GET("/calendar/mine", h.Export.MyCalendar)

			// live change feed
			authorized.GET("/events/:table", h.Events.Stream)

			// admin surface
			admin := authorized.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.GET("/users", h.Admin.ListUsers)
				admin.DELETE("/users/:id", h.Admin.DeleteUser)
				admin.PUT("/users/:id/admin", h.Admin.SetAdmin)

				admin.GET("/shifts", h.Admin.ListAllShifts)
				admin.PUT("/shifts/:id/status", h.Admin.SetShiftStatus)
				admin.DELETE("/shifts/:id", h.Admin.DeleteShift)

				admin.GET("/requests", h.Admin.ListAllRequests)
				admin.DELETE("/requests/:id", h.Admin.DeleteRequest)

				admin.GET("/cleanup/stats", h.Admin.SweepStats)
				admin.POST("/cleanup/sweep", h.Admin.Sweep)

				admin.GET("/export/shifts", h.Export.ExportShifts)
				admin.GET("/export/requests", h.Export.ExportRequests)
			}
		}
	}

	return r
}
