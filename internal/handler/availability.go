package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/service"
)

// AvailabilityHandler exposes the recurring weekly schedule.  Times of day
// travel over the wire as "HH:MM:SS" strings with optional fractional
// seconds; "00:00:00" as an end time means "until end of day".
type AvailabilityHandler struct {
	Slots *service.AvailabilityService
}

func NewAvailabilityHandler(s *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Slots: s}
}

type slotReq struct {
	AuditoriumID *uint64 `json:"auditorium_id"`
	DayOfWeek    *int    `json:"day_of_week"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
}

type slotResp struct {
	ID           uint64 `json:"id"`
	AuditoriumID uint64 `json:"auditorium_id"`
	DayOfWeek    int    `json:"day_of_week"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

func toSlotResp(s model.AvailabilitySlot) slotResp {
	return slotResp{
		ID:           s.ID,
		AuditoriumID: s.AuditoriumID,
		DayOfWeek:    s.DayOfWeek,
		StartTime:    model.FormatTimeOfDay(s.StartTime),
		EndTime:      model.FormatTimeOfDay(s.EndTime),
	}
}

func (h *AvailabilityHandler) Create(c echo.Context) error {
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AuditoriumID == nil || req.DayOfWeek == nil || req.StartTime == nil || req.EndTime == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "auditorium_id, day_of_week, start_time and end_time required"})
	}
	start, err := model.ParseTimeOfDay(*req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
	}
	end, err := model.ParseTimeOfDay(*req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Slots.CreateSlot(ctx, service.SlotInput{
		AuditoriumID: *req.AuditoriumID,
		DayOfWeek:    *req.DayOfWeek,
		Start:        start,
		End:          end,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toSlotResp(*slot))
}

func (h *AvailabilityHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Slots.GetSlot(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toSlotResp(*slot))
}

// List returns the full weekly schedule for one auditorium, ordered by
// day then start time.
func (h *AvailabilityHandler) List(c echo.Context) error {
	audID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Slots.ListSlots(ctx, audID)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]slotResp, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AvailabilityHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var patch service.SlotPatch
	patch.DayOfWeek = req.DayOfWeek
	if req.StartTime != nil {
		start, err := model.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
		}
		patch.Start = &start
	}
	if req.EndTime != nil {
		end, err := model.ParseTimeOfDay(*req.EndTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
		}
		patch.End = &end
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Slots.UpdateSlot(ctx, id, patch)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toSlotResp(*slot))
}

func (h *AvailabilityHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Slots.DeleteSlot(ctx, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
