package search

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mindlens/mindlens-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/counselors", h.Search)
}

func (h *Handler) Search(c echo.Context) error {
	params := Params{
		Query:  c.QueryParam("q"),
		SortBy: c.QueryParam("sort_by"),
	}

	if raw := c.QueryParam("specialty_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid specialty_id")
		}
		params.SpecialtyID = id
	}
	if raw := c.QueryParam("available_on"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "available_on must be YYYY-MM-DD")
		}
		params.AvailableOn = &day
	}
	if raw := c.QueryParam("min_rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 5 {
			return echo.NewHTTPError(http.StatusBadRequest, "min_rating must be between 0 and 5")
		}
		params.MinRating = v
	}
	if raw := c.QueryParam("min_experience"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "min_experience must be a non-negative integer")
		}
		params.MinExperience = v
	}
	if params.SortBy != "" && params.SortBy != SortByRating && params.SortBy != SortByExperience {
		return echo.NewHTTPError(http.StatusBadRequest, "sort_by must be rating or experience")
	}

	resp, err := h.svc.Search(c.Request().Context(), params, pagination.FromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}
