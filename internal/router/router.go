package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusgarden/backend/internal/handler"
	"focusgarden/backend/internal/middleware"
	"focusgarden/backend/internal/service"
)

func New(
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	sessionHandler *handler.SessionHandler,
	dataHandler *handler.DataHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	app := api.Group("")
	app.Use(middleware.Auth(authService))

	app.GET("/session", sessionHandler.GetState)
	app.POST("/session/start", sessionHandler.Start)
	app.POST("/session/prep/complete", sessionHandler.CompletePrep)
	app.POST("/session/extend", sessionHandler.Extend)
	app.POST("/session/giveup", sessionHandler.GiveUp)

	app.GET("/blocking/active", sessionHandler.ActiveBlockList)
	app.POST("/blocking/emergency", sessionHandler.RecordEmergencyAccess)

	app.GET("/lists/focus", dataHandler.GetFocusLists)
	app.PUT("/lists/focus", dataHandler.PutFocusLists)
	app.GET("/lists/block", dataHandler.GetBlockLists)
	app.PUT("/lists/block", dataHandler.PutBlockLists)

	app.GET("/garden", dataHandler.GetGarden)
	app.GET("/stats", dataHandler.GetStats)

	app.GET("/settings", dataHandler.GetSettings)
	app.PUT("/settings", dataHandler.PutSettings)

	return engine
}
