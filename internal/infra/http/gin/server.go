// Package ginserver is the in-memory academy backend used for local runs and
// end-to-end tests of the client.
package ginserver

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"academy/internal/infra/obs"
)

type AuthHTTP interface {
	Login(c *gin.Context)
	Me(c *gin.Context)
}

type ChatHTTP interface {
	Conversations(c *gin.Context)
	Thread(c *gin.Context)
	Send(c *gin.Context)
	MarkRead(c *gin.Context)
}

type AcademyHTTP interface {
	User(c *gin.Context)
	Injuries(c *gin.Context)
	ReportInjury(c *gin.Context)
	UpdateInjury(c *gin.Context)
	Stadiums(c *gin.Context)
	Players(c *gin.Context)
	AddPlayer(c *gin.Context)
	RemovePlayer(c *gin.Context)
	Tournaments(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Chat           ChatHTTP
	Academy        AcademyHTTP
	Live           gin.HandlerFunc
	AuthMiddleware gin.HandlerFunc
}

func NewRouter(env string, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Live != nil {
		router.GET("/ws", h.Live)
	}

	api := router.Group("/api")
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Chat != nil {
		messages := api.Group("/messages")
		messages.POST("", h.Chat.Send)
		messages.PUT("/read", h.Chat.MarkRead)
		messages.GET("/conversations/:userId", h.Chat.Conversations)
		messages.GET("/:userId/:otherUserId", h.Chat.Thread)
	}
	if h.Academy != nil {
		api.GET("/users/:id", h.Academy.User)
		api.GET("/injuries", h.Academy.Injuries)
		api.POST("/injuries", h.Academy.ReportInjury)
		api.PATCH("/injuries/:id", h.Academy.UpdateInjury)
		api.GET("/stadiums", h.Academy.Stadiums)
		api.GET("/tournaments", h.Academy.Tournaments)
		teams := api.Group("/teams/:id/players")
		teams.GET("", h.Academy.Players)
		teams.POST("", h.Academy.AddPlayer)
		teams.DELETE("/:playerId", h.Academy.RemovePlayer)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
