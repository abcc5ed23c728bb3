package availability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mindlens/mindlens-api/internal/domain/counselor"
	"github.com/mindlens/mindlens-api/internal/platform/auth"
)

// ProfileResolver maps an authenticated user to their counselor profile id.
// The token subject is a user id, while schedule and slot rows key on the
// profile id.
type ProfileResolver interface {
	ProfileIDByUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type Handler struct {
	svc      *Service
	profiles ProfileResolver
}

func NewHandler(svc *Service, profiles ProfileResolver) *Handler {
	return &Handler{svc: svc, profiles: profiles}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/availability", auth.RequireRole("counselor"))
	g.GET("/schedule", h.GetSchedule)
	g.PUT("/schedule", h.SaveSchedule)
	g.GET("/slots", h.ListSlots)
	g.POST("/slots/:id/toggle-block", h.ToggleBlock)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	counselorID, err := h.counselorID(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.GetRecurringSchedule(c.Request().Context(), counselorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if entries == nil {
		entries = []RecurringEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) SaveSchedule(c echo.Context) error {
	counselorID, err := h.counselorID(c)
	if err != nil {
		return err
	}

	var req struct {
		Days []DaySchedule `json:"days"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	summary, err := h.svc.ReplaceSchedule(c.Request().Context(), counselorID, req.Days)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListSlots(c echo.Context) error {
	counselorID, err := h.counselorID(c)
	if err != nil {
		return err
	}

	weekStart := time.Now().Truncate(24 * time.Hour)
	if raw := c.QueryParam("week_start"); raw != "" {
		weekStart, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "week_start must be YYYY-MM-DD")
		}
	}

	slots, err := h.svc.ListWeek(c.Request().Context(), counselorID, weekStart)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if slots == nil {
		slots = []*Slot{}
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) ToggleBlock(c echo.Context) error {
	counselorID, err := h.counselorID(c)
	if err != nil {
		return err
	}
	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	blocked, err := h.svc.ToggleBlock(c.Request().Context(), slotID, counselorID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]bool{"is_blocked": blocked})
	case errors.Is(err, ErrSlotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "slot not found")
	case errors.Is(err, ErrNotSlotOwner):
		return echo.NewHTTPError(http.StatusForbidden, "slot belongs to another counselor")
	case errors.Is(err, ErrSlotBooked):
		return echo.NewHTTPError(http.StatusConflict, "slot is already booked")
	case errors.Is(err, ErrSlotInPast):
		return echo.NewHTTPError(http.StatusConflict, "slot is in the past")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// counselorID resolves the caller's profile id from the token subject.
func (h *Handler) counselorID(c echo.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	id, err := h.profiles.ProfileIDByUser(c.Request().Context(), userID)
	if errors.Is(err, counselor.ErrProfileNotFound) {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "counselor profile not found")
	}
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return id, nil
}
