package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/repository"
)

// AuditoriumHandler exposes the room catalogue plus the equipment
// attachment endpoints.
type AuditoriumHandler struct {
	Auditoriums *repository.AuditoriumRepo
	Equipment   *repository.EquipmentRepo
}

func NewAuditoriumHandler(a *repository.AuditoriumRepo, e *repository.EquipmentRepo) *AuditoriumHandler {
	return &AuditoriumHandler{Auditoriums: a, Equipment: e}
}

type auditoriumReq struct {
	Identifier  *string `json:"identifier"`
	Capacity    *uint32 `json:"capacity"`
	Description *string `json:"description"`
}

type auditoriumResp struct {
	ID          uint64          `json:"id"`
	Identifier  string          `json:"identifier"`
	Capacity    uint32          `json:"capacity"`
	Description *string         `json:"description,omitempty"`
	Equipment   []equipmentResp `json:"equipment"`
}

func toAuditoriumResp(a model.Auditorium) auditoriumResp {
	eq := make([]equipmentResp, 0, len(a.Equipment))
	for _, e := range a.Equipment {
		eq = append(eq, toEquipmentResp(e))
	}
	return auditoriumResp{
		ID:          a.ID,
		Identifier:  a.Identifier,
		Capacity:    a.Capacity,
		Description: a.Description,
		Equipment:   eq,
	}
}

func (h *AuditoriumHandler) Create(c echo.Context) error {
	var req auditoriumReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Identifier == nil || strings.TrimSpace(*req.Identifier) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifier required"})
	}
	if req.Capacity == nil || *req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a := model.Auditorium{
		Identifier:  strings.TrimSpace(*req.Identifier),
		Capacity:    *req.Capacity,
		Description: req.Description,
	}
	if err := h.Auditoriums.Create(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "identifier already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toAuditoriumResp(a))
}

func (h *AuditoriumHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Auditoriums.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAuditoriumResp(*a))
}

func (h *AuditoriumHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Auditoriums.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]auditoriumResp, 0, len(items))
	for _, a := range items {
		out = append(out, toAuditoriumResp(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuditoriumHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req auditoriumReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Auditoriums.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if req.Identifier != nil {
		if strings.TrimSpace(*req.Identifier) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "identifier must not be empty"})
		}
		a.Identifier = strings.TrimSpace(*req.Identifier)
	}
	if req.Capacity != nil {
		if *req.Capacity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
		}
		a.Capacity = *req.Capacity
	}
	if req.Description != nil {
		a.Description = req.Description
	}
	if err := h.Auditoriums.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "identifier already exists"})
		}
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toAuditoriumResp(*a))
}

func (h *AuditoriumHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auditoriums.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// AttachEquipment links an equipment row to an auditorium.  The link is
// idempotent: attaching twice is not an error.
func (h *AuditoriumHandler) AttachEquipment(c echo.Context) error {
	audID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	eqID, err := pathID(c, "equipment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Auditoriums.GetByID(ctx, audID); err != nil {
		if errors.Is(err, repository.ErrAuditoriumNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Equipment.GetByID(ctx, eqID); err != nil {
		if errors.Is(err, repository.ErrEquipmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Auditoriums.AttachEquipment(ctx, audID, eqID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "attach failed"})
	}

	a, err := h.Auditoriums.GetByID(ctx, audID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toAuditoriumResp(*a))
}

func (h *AuditoriumHandler) DetachEquipment(c echo.Context) error {
	audID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	eqID, err := pathID(c, "equipment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auditoriums.DetachEquipment(ctx, audID, eqID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "detach failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
