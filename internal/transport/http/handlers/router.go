package handlers

import "github.com/gin-gonic/gin"

type Router struct {
	handler *Handler
}

func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

func (r *Router) RegisterRoutes(engine *gin.Engine, idempotency gin.HandlerFunc) {
	engine.GET("/healthz", r.handler.health)
	engine.NoRoute(r.handler.routeNotFound)

	api := engine.Group("/api")
	creatures := api.Group("/creatures")
	creatures.POST("", idempotency, r.handler.createCreature)
	creatures.GET("", r.handler.listCreatures)
	creatures.GET("/:id", r.handler.getCreature)
	creatures.PUT("/:id", r.handler.updateCreature)
	creatures.DELETE("/:id", r.handler.deleteCreature)
}
