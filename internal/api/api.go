package api

import (
	"net/http"

	agentHandler "voicebank-server/internal/agent/handler"
	phoneHandler "voicebank-server/internal/phone/handler"
	"voicebank-server/internal/ratelimit"
	sessionHandler "voicebank-server/internal/session/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	router         *gin.RouterGroup
	sessionHandler sessionHandler.Handler
	agentHandler   agentHandler.Handler
	phoneHandler   phoneHandler.Handler
	rateLimiter    *ratelimit.Service
	sessionAuth    gin.HandlerFunc
}

func New(router *gin.RouterGroup, sessionHandler sessionHandler.Handler,
	agentHandler agentHandler.Handler, phoneHandler phoneHandler.Handler,
	rateLimiter *ratelimit.Service, sessionAuth gin.HandlerFunc) API {
	return API{
		router:         router,
		sessionHandler: sessionHandler,
		agentHandler:   agentHandler,
		phoneHandler:   phoneHandler,
		rateLimiter:    rateLimiter,
		sessionAuth:    sessionAuth,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := a.router.Group("/api")
	{
		sessionGroup := apiGroup.Group("/session")
		sessionGroup.POST("/token", a.rateLimiter.Middleware(), a.sessionHandler.HandleMintToken)
		sessionGroup.GET("/:id/history", a.sessionAuth, a.sessionHandler.HandleGetHistory)

		agentGroup := apiGroup.Group("/agent")
		agentGroup.GET("/session", a.sessionAuth, a.agentHandler.HandleSession)

		phoneGroup := apiGroup.Group("/phone")
		phoneGroup.POST("/answer", a.phoneHandler.HandleAnswer)
		phoneGroup.GET("/stream", a.phoneHandler.HandleMediaStream)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
