package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daechang/placetalk/internal/domain"
	"github.com/daechang/placetalk/internal/marker"
)

// MarkerHandler exposes the marker lifecycle over HTTP.
type MarkerHandler struct {
	service *marker.Service
}

// NewMarkerHandler creates a new MarkerHandler.
func NewMarkerHandler(service *marker.Service) *MarkerHandler {
	return &MarkerHandler{service: service}
}

// List handles GET /api/markers.
func (h *MarkerHandler) List(c echo.Context) error {
	markers, err := h.service.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, markers)
}

// Create handles POST /api/markers. The marker's chatroom is created in the
// same call; its chatId comes back on the created marker.
func (h *MarkerHandler) Create(c echo.Context) error {
	var req CreateMarkerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OwnerEmail == "" {
		req.OwnerEmail = SessionEmail(c)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Create(c.Request().Context(), domain.Marker{
		OwnerEmail:   req.OwnerEmail,
		Title:        req.Title,
		Price:        req.Price,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RoadAddress:  req.RoadAddress,
		JibunAddress: req.JibunAddress,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Delete handles DELETE /api/markers/:id and tears down the marker's
// chatroom with it.
func (h *MarkerHandler) Delete(c echo.Context) error {
	removed, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, removed)
}
