package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/api/middleware"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/internal/identity"
	"github.com/maasin/byahenow/internal/service/account"
	apperrors "github.com/maasin/byahenow/pkg/errors"
)

// Signup handles POST /signup
func (h *Handlers) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Missing required fields", err)
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	profile, err := h.Accounts.Signup(c.Request.Context(), account.SignupInput{
		Registration: identity.Registration{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Role:     role,
		},
		PlateNumber: req.PlateNumber,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SignupResponse{Success: true, User: profile})
}

// Login handles POST /login
func (h *Handlers) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Email and password are required", err)
		return
	}

	token, profile, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, User: profile})
}

// GetProfile handles GET /profile
func (h *Handlers) GetProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	profile, err := h.Accounts.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{Profile: profile})
}

// UpdateProfile handles PUT /profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	upd, err := req.ToProfileUpdate()
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	profile, err := h.Accounts.UpdateProfile(c.Request.Context(), id, upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileResponse{Success: true, Profile: profile})
}
