package routes

import (
	"github.com/archmap/archmap-backend/internal/handler"
	"github.com/archmap/archmap-backend/internal/middleware"
	"github.com/archmap/archmap-backend/pkg/cache"
	"github.com/archmap/archmap-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	versionHandler *handler.VersionControlHandler,
	initiativeHandler *handler.InitiativeHandler,
	conflictHandler *handler.ConflictHandler,
	auditHandler *handler.AuditHandler,
	dependencyHandler *handler.DependencyHandler,
	jwtManager *jwt.Manager,
	cacheService cache.Service,
) {
	router.GET("/health", func(c *gin.Context) {
		cacheStatus := "disabled"
		if cacheService != nil && cacheService.IsAvailable() {
			cacheStatus = "up"
			if err := cacheService.Ping(c.Request.Context()); err != nil {
				cacheStatus = "down"
			}
		}
		c.JSON(200, gin.H{"status": "ok", "cache": cacheStatus})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v2")

	// Version control: all mutations need an authenticated actor
	vc := api.Group("/version-control")
	{
		vc.GET("/locks", versionHandler.ListLocks)
		vc.GET("/:type/:id/versions", versionHandler.ListVersions)
		vc.GET("/:type/:id/baseline-history", versionHandler.BaselineHistory)
		vc.POST("/:type/:id/checkout", middleware.JWTAuth(jwtManager), versionHandler.Checkout)
		vc.POST("/:type/:id/checkin", middleware.JWTAuth(jwtManager), versionHandler.Checkin)
		vc.POST("/cancel-checkout", middleware.JWTAuth(jwtManager), versionHandler.CancelCheckout)
	}

	// Initiatives and their conflicts
	initiatives := api.Group("/initiatives")
	{
		initiatives.GET("", initiativeHandler.List)
		initiatives.GET("/:id", initiativeHandler.Get)
		initiatives.GET("/:id/participants", initiativeHandler.ListParticipants)
		initiatives.POST("", middleware.JWTAuth(jwtManager), initiativeHandler.Create)
		initiatives.POST("/:id/detect-conflicts", middleware.JWTAuth(jwtManager), initiativeHandler.DetectConflicts)
		initiatives.POST("/:id/baseline", middleware.JWTAuth(jwtManager), initiativeHandler.Baseline)

		conflicts := initiatives.Group("/:id/conflicts")
		{
			conflicts.GET("", conflictHandler.List)
			conflicts.GET("/:cid/analysis", conflictHandler.GetAnalysis)
			conflicts.POST("/:cid/resolve", middleware.JWTAuth(jwtManager), conflictHandler.Resolve)
			conflicts.POST("/:cid/auto-resolve", middleware.JWTAuth(jwtManager), conflictHandler.AutoResolve)
		}
	}

	// Audit trail (read-only)
	audit := api.Group("/audit")
	{
		audit.GET("/trail", auditHandler.GetTrail)
		audit.GET("/compare-versions", auditHandler.CompareVersions)
		audit.GET("/history/:type/:id", auditHandler.GetHistory)
	}

	// Dependency edges
	api.GET("/dependencies/:type/:id", dependencyHandler.List)
	api.POST("/dependencies", middleware.JWTAuth(jwtManager), dependencyHandler.Create)
}
