package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/api/middleware"
	"github.com/maasin/byahenow/internal/domain/driver"
	apperrors "github.com/maasin/byahenow/pkg/errors"
)

// PublishStatus handles POST /driver/update
func (h *Handlers) PublishStatus(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.PublishStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	upd, err := req.ToStatusUpdate()
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	rec, err := h.Presence.Publish(c.Request.Context(), id, upd)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PublishStatusResponse{Success: true, Driver: rec})
}

// ListDrivers handles GET /drivers?vehicleType=
func (h *Handlers) ListDrivers(c *gin.Context) {
	f, err := driver.ParseFilter(c.Query("vehicleType"))
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	drivers, err := h.Presence.Snapshot(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DriversResponse{Drivers: drivers})
}
