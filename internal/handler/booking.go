package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/queue"
	"github.com/cherry4xo/booker/internal/repository"
	"github.com/cherry4xo/booker/internal/service"
)

const dateLayout = "2006-01-02"

// BookingHandler exposes booking CRUD plus the public calendar.  After a
// successful write it publishes a booking event to the broker;
// publishing errors are logged inside the queue package and never fail
// the request.
type BookingHandler struct {
	Bookings    *service.BookingService
	Auditoriums *repository.AuditoriumRepo
}

func NewBookingHandler(b *service.BookingService, a *repository.AuditoriumRepo) *BookingHandler {
	return &BookingHandler{Bookings: b, Auditoriums: a}
}

type bookingReq struct {
	AuditoriumID *uint64    `json:"auditorium_id"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Title        *string    `json:"title"`
}

type bookingResp struct {
	ID           uint64    `json:"id"`
	AuditoriumID uint64    `json:"auditorium_id"`
	BrokerID     uint64    `json:"broker_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Title        *string   `json:"title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID:           b.ID,
		AuditoriumID: b.AuditoriumID,
		BrokerID:     b.BrokerID,
		StartTime:    b.StartTime.UTC(),
		EndTime:      b.EndTime.UTC(),
		Title:        b.Title,
		CreatedAt:    b.CreatedAt.UTC(),
		UpdatedAt:    b.UpdatedAt.UTC(),
	}
}

func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AuditoriumID == nil || req.StartTime == nil || req.EndTime == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "auditorium_id, start_time and end_time required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.CreateBooking(ctx, service.CreateBookingInput{
		AuditoriumID: *req.AuditoriumID,
		Start:        *req.StartTime,
		End:          *req.EndTime,
		Title:        req.Title,
	}, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	h.publish(ctx, queue.ActionCreated, b)
	return c.JSON(http.StatusCreated, toBookingResp(*b))
}

func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetBooking(ctx, id, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(*b))
}

// List filters: auditorium_id, user_id, start_date, end_date (both dates
// inclusive, "2006-01-02").
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var f service.ListBookingsFilter
	if v := c.QueryParam("auditorium_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auditorium_id"})
		}
		f.AuditoriumID = &id
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		f.BrokerID = &id
	}
	if v := c.QueryParam("start_date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
		}
		f.StartDate = &d
	}
	if v := c.QueryParam("end_date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
		}
		f.EndDate = &d
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListBookings(ctx, f, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]bookingResp, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Update(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.UpdateBooking(ctx, id, service.BookingPatch{
		AuditoriumID: req.AuditoriumID,
		Start:        req.StartTime,
		End:          req.EndTime,
		Title:        req.Title,
	}, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	h.publish(ctx, queue.ActionUpdated, b)
	return c.JSON(http.StatusOK, toBookingResp(*b))
}

func (h *BookingHandler) Delete(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetBooking(ctx, id, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	ok, err := h.Bookings.DeleteBooking(ctx, id, actor)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	h.publish(ctx, queue.ActionDeleted, b)
	return c.NoContent(http.StatusNoContent)
}

// Calendar is the public per-auditorium view.  Query params: from, to,
// both inclusive dates ("2006-01-02"); defaults are today and today+6.
func (h *BookingHandler) Calendar(c echo.Context) error {
	audID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	from := startOfToday()
	until := from.AddDate(0, 0, 6)
	if v := c.QueryParam("from"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
		}
		from = d
	}
	if v := c.QueryParam("to"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
		}
		until = d
	}
	if until.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.Calendar(ctx, audID, from, until)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]bookingResp, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

// publish sends a booking event to the broker, best effort.
func (h *BookingHandler) publish(ctx context.Context, action string, b *model.Booking) {
	ev := queue.BookingEvent{
		Action:       action,
		BookingID:    b.ID,
		AuditoriumID: b.AuditoriumID,
		BrokerID:     b.BrokerID,
		StartsAt:     b.StartTime.UTC().Format(time.RFC3339),
		EndsAt:       b.EndTime.UTC().Format(time.RFC3339),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if b.Title != nil {
		ev.Title = *b.Title
	}
	if aud, err := h.Auditoriums.GetByID(ctx, b.AuditoriumID); err == nil {
		ev.Auditorium = aud.Identifier
	}
	_ = queue.PublishBookingEvent(ctx, ev)
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
