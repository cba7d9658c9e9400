package router

import (
	"github.com/gin-gonic/gin"
)

// Registrar registers a handler's routes on a route group
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Fn adapts a plain function to the Registrar interface
type Fn func(rg *gin.RouterGroup)

// RegisterRoutes implements Registrar
func (f Fn) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

// Config describes how the API surface is assembled
type Config struct {
	APIVersion string
	// Global middleware applied to every route (request ID, logging,
	// recovery, CORS).
	Global []gin.HandlerFunc
	// Auth guards the protected registrars.
	Auth gin.HandlerFunc
	// Public registrars mount outside the auth guard.
	Public []Registrar
	// Protected registrars mount behind it.
	Protected []Registrar
}

// Setup mounts all routes on the engine under /api/<version>
func Setup(engine *gin.Engine, cfg Config) {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}
	engine.Use(cfg.Global...)

	api := engine.Group("/api/" + cfg.APIVersion)

	for _, r := range cfg.Public {
		r.RegisterRoutes(api)
	}

	protected := api.Group("")
	if cfg.Auth != nil {
		protected.Use(cfg.Auth)
	}
	for _, r := range cfg.Protected {
		r.RegisterRoutes(protected)
	}
}
