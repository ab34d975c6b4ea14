package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/api/middleware"
	apperrors "github.com/maasin/byahenow/pkg/errors"
)

// SubmitFeedback handles POST /feedback
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}

	fb, err := h.Feedback.RecordFeedback(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeedbackResponse{Success: true, Feedback: fb})
}
