package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cherry4xo/booker/internal/model"
	"github.com/cherry4xo/booker/internal/repository"
)

// UsersHandler covers the moderator-only user administration endpoints.
type UsersHandler struct {
	Users *repository.UserRepo
}

func NewUsersHandler(u *repository.UserRepo) *UsersHandler {
	return &UsersHandler{Users: u}
}

type userResp struct {
	ID         uint64    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	TelegramID *string   `json:"telegram_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role,
		TelegramID: u.TelegramID,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

func (h *UsersHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

type roleReq struct {
	Role string `json:"role"`
}

// UpdateRole grants or revokes the moderator role for a user.
func (h *UsersHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}
