// Package router wires HTTP routes to handlers and middleware.  Public
// browse endpoints carry the Redis response cache and the token-bucket
// rate limiter; authenticated endpoints sit behind JWT and role checks.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cherry4xo/booker/internal/config"
	"github.com/cherry4xo/booker/internal/handler"
	"github.com/cherry4xo/booker/internal/middleware"
	"github.com/cherry4xo/booker/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Auth         *handler.AuthHandler
	Users        *handler.UsersHandler
	Equipment    *handler.EquipmentHandler
	Auditoriums  *handler.AuditoriumHandler
	Availability *handler.AvailabilityHandler
	Bookings     *handler.BookingHandler

	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// RegisterRoutes registers every route of the service on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	registerAuth(e, d)
	registerPublic(e, d)
	registerBooker(e, d)
	registerModerator(e, d)
}

// registerAuth wires the session lifecycle.  Logout lives outside the
// JWT group: it accepts either a bearer token or a refresh token body.
func registerAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/refresh-access", d.Auth.RefreshAccess)
	g.POST("/logout", d.Auth.Logout)
}

// registerPublic wires the unauthenticated browse endpoints.  These are
// the hot read paths, so they get the response cache and rate limiter.
func registerPublic(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	if d.Redis != nil {
		g.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))
		g.Use(middleware.NewRedisCache(d.Cache, d.Redis))
	}
	g.GET("/auditoriums", d.Auditoriums.List)
	g.GET("/auditoriums/:id", d.Auditoriums.Get)
	g.GET("/auditoriums/:id/slots", d.Availability.List)
	g.GET("/auditoriums/:id/calendar", d.Bookings.Calendar)
	g.GET("/equipment", d.Equipment.List)
	g.GET("/equipment/:id", d.Equipment.Get)
	g.GET("/slots/:id", d.Availability.Get)
}

// registerBooker wires endpoints any authenticated user can reach.
func registerBooker(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(d.JWTSecret))
	g.Use(middleware.RequireRole(model.RoleBooker, model.RoleModerator))

	g.GET("/me", d.Auth.Me)

	g.POST("/bookings", d.Bookings.Create)
	g.GET("/bookings", d.Bookings.List)
	g.GET("/bookings/:id", d.Bookings.Get)
	g.PATCH("/bookings/:id", d.Bookings.Update)
	g.DELETE("/bookings/:id", d.Bookings.Delete)
}

// registerModerator wires the catalogue and user administration writes.
func registerModerator(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(d.JWTSecret))
	g.Use(middleware.RequireRole(model.RoleModerator))

	g.GET("/users", d.Users.List)
	g.PATCH("/users/:id/role", d.Users.UpdateRole)

	g.POST("/auditoriums", d.Auditoriums.Create)
	g.PATCH("/auditoriums/:id", d.Auditoriums.Update)
	g.DELETE("/auditoriums/:id", d.Auditoriums.Delete)
	g.POST("/auditoriums/:id/equipment/:equipment_id", d.Auditoriums.AttachEquipment)
	g.DELETE("/auditoriums/:id/equipment/:equipment_id", d.Auditoriums.DetachEquipment)

	g.POST("/equipment", d.Equipment.Create)
	g.PATCH("/equipment/:id", d.Equipment.Update)
	g.DELETE("/equipment/:id", d.Equipment.Delete)

	g.POST("/slots", d.Availability.Create)
	g.PATCH("/slots/:id", d.Availability.Update)
	g.DELETE("/slots/:id", d.Availability.Delete)
}
