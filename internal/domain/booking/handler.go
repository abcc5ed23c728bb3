package booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mindlens/mindlens-api/internal/domain/counselor"
	"github.com/mindlens/mindlens-api/internal/platform/auth"
	"github.com/mindlens/mindlens-api/pkg/pagination"
)

// ProfileResolver maps an authenticated user to their counselor profile id.
// Appointment rows key counselors by profile id, not by the token subject.
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
	api.POST("/bookings", h.Book, auth.RequireRole("patient"))
	api.GET("/bookings/:id", h.GetByID, auth.RequireRole("patient", "counselor"))
	api.GET("/bookings/patient", h.ListForPatient, auth.RequireRole("patient"))
	api.GET("/bookings/counselor", h.ListForCounselor, auth.RequireRole("counselor"))
}

func (h *Handler) Book(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}

	var req struct {
		SlotID uuid.UUID `json:"slot_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SlotID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "slot_id is required")
	}

	appt, err := h.svc.Book(c.Request().Context(), req.SlotID, patientID)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, appt)
	case errors.Is(err, ErrSlotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "slot not found")
	case errors.Is(err, ErrSlotUnavailable):
		return echo.NewHTTPError(http.StatusConflict, "slot is not available for booking")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) GetByID(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	appt, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrAppointmentMissing) {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	// Appointments of other users are indistinguishable from missing ones.
	if !h.mayView(c, appt, caller) {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := callerID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForPatient(c.Request().Context(), patientID, pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*AppointmentDetail{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) ListForCounselor(c echo.Context) error {
	counselorID, err := h.counselorID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForCounselor(c.Request().Context(), counselorID, pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*AppointmentDetail{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) mayView(c echo.Context, appt *Appointment, caller uuid.UUID) bool {
	ctx := c.Request().Context()
	role := auth.RoleFromContext(ctx)
	if role == "admin" || appt.PatientID == caller {
		return true
	}
	if role == "counselor" {
		profileID, err := h.profiles.ProfileIDByUser(ctx, caller)
		return err == nil && profileID == appt.CounselorID
	}
	return false
}

// counselorID resolves the caller's profile id from the token subject.
func (h *Handler) counselorID(c echo.Context) (uuid.UUID, error) {
	userID, err := callerID(c)
	if err != nil {
		return uuid.Nil, err
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

func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	return id, nil
}
