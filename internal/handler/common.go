// Package handler defines the HTTP handlers.  Handlers bind and validate
// request bodies, call into the service or repository layer, and map
// domain errors onto HTTP status codes.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cherry4xo/booker/internal/repository"
	"github.com/cherry4xo/booker/internal/service"
)

// getActor extracts the authenticated user's id and role from the echo
// context, where the JWT middleware placed them.
func getActor(c echo.Context) (service.Actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	return service.Actor{ID: id, Role: role}, nil
}

// getUserID extracts user_id from the context and converts it to uint64.
// JWT numeric claims are decoded as float64, so several shapes must be
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid path id")
	}
	return n, nil
}

// writeServiceError maps domain and repository errors to HTTP responses.
// Anything unrecognized is logged and reported as a generic 500 so
// internal details never leak to clients.
func writeServiceError(c echo.Context, err error) error {
	var (
		notFound     *service.NotFoundError
		unavailable  *service.UnavailableError
		conflict     *service.ConflictError
		slotConflict *service.SlotConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": unavailable.Error()})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error()})
	case errors.As(err, &slotConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": slotConflict.Error()})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate value"})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrEquipmentNotFound),
		errors.Is(err, repository.ErrAuditoriumNotFound),
		errors.Is(err, repository.ErrSlotNotFound),
		errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		log.Printf("handler: internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
