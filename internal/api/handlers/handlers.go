package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/service/account"
	feedbacksvc "github.com/maasin/byahenow/internal/service/feedback"
	"github.com/maasin/byahenow/internal/service/fares"
	"github.com/maasin/byahenow/internal/service/presence"
	apperrors "github.com/maasin/byahenow/pkg/errors"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/maasin/byahenow/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Presence *presence.Service
	Fares    *fares.Service
	Feedback *feedbacksvc.Service
	Accounts *account.Service
	Hub      *websocket.Hub // nil when the realtime stream is disabled
	Logger   *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	presenceSvc *presence.Service,
	faresSvc *fares.Service,
	feedbackSvc *feedbacksvc.Service,
	accounts *account.Service,
	hub *websocket.Hub,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		Presence: presenceSvc,
		Fares:    faresSvc,
		Feedback: feedbackSvc,
		Accounts: accounts,
		Hub:      hub,
		Logger:   log.Named("http"),
	}
}

// respondError writes err as {"error", "code"} with the AppError status
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Status >= 500 {
		h.Logger.Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.String("code", appErr.Code),
			logger.Err(err),
		)
	}
	c.AbortWithStatusJSON(appErr.Status, dto.ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.respondError(c, apperrors.Validation(msg, err))
}
