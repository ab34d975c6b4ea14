package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/api/dto"
)

// GetFares handles GET /fares
func (h *Handlers) GetFares(c *gin.Context) {
	catalog, err := h.Fares.GetFares(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FaresResponse{Fares: catalog})
}
