// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/MikeGii/medunacy-sub000/internal/handlers"
	"github.com/MikeGii/medunacy-sub000/internal/middleware"
	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/services"
	"github.com/MikeGii/medunacy-sub000/internal/ws"

	_ "github.com/MikeGii/medunacy-sub000/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Services struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Tests    *services.TestService
	Quota    *services.QuotaService
	Sessions *services.SessionService
	Clock    services.Clock
	Hub      *ws.Hub
}

func NewRouter(svc Services, corsOrigins []string) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Users)
	testHandler := handlers.NewTestHandler(svc.Tests)
	quotaHandler := handlers.NewQuotaHandler(svc.Quota, svc.Users)
	sessionHandler := handlers.NewSessionHandler(svc.Sessions, svc.Hub, svc.Clock)
	adminHandler := handlers.NewAdminHandler(svc.Tests, svc.Users)
	wsHandler := handlers.NewWSHandler(svc.Hub, svc.Sessions)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/session/:id", middleware.QueryTokenAuth(svc.Auth), wsHandler.HandleWebSocket)

	jwt := middleware.JWTAuth(svc.Auth)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", jwt, authHandler.Me)
		}

		tests := api.Group("/tests")
		tests.Use(jwt)
		{
			tests.GET("", testHandler.ListTests)
			tests.GET("/:id", testHandler.GetTest)
		}

		api.GET("/quota", jwt, quotaHandler.GetQuota)

		sessions := api.Group("/sessions")
		sessions.Use(jwt)
		{
			sessions.POST("", sessionHandler.StartSession)
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.PUT("/:id/answers/:question_id", sessionHandler.RecordAnswer)
			sessions.POST("/:id/submit", sessionHandler.SubmitSession)
			sessions.GET("/:id/result", sessionHandler.GetResult)
		}

		api.GET("/results", jwt, sessionHandler.ListResults)

		admin := api.Group("/admin")
		admin.Use(jwt, middleware.RequireRole(svc.Users, models.RoleAdmin))
		{
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.POST("/tests", adminHandler.CreateTest)
			admin.PATCH("/tests/:id", adminHandler.UpdateTestFlags)
			admin.GET("/tests/:id/export", adminHandler.ExportTest)
			admin.POST("/tests/import", adminHandler.ImportTest)
			admin.PUT("/users/:id/subscription", adminHandler.UpdateSubscription)
		}
	}

	return r
}
