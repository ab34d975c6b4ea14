package dto

import (
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/fare"
	"github.com/maasin/byahenow/internal/domain/feedback"
	"github.com/maasin/byahenow/internal/domain/user"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type PublishStatusResponse struct {
	Success bool           `json:"success"`
	Driver  *driver.Record `json:"driver"`
}

type DriversResponse struct {
	Drivers []*driver.Record `json:"drivers"`
}

type FaresResponse struct {
	Fares *fare.Catalog `json:"fares"`
}

type FeedbackResponse struct {
	Success  bool               `json:"success"`
	Feedback *feedback.Feedback `json:"feedback"`
}

type ProfileResponse struct {
	Success bool          `json:"success,omitempty"`
	Profile *user.Profile `json:"profile"`
}

type SignupResponse struct {
	Success bool          `json:"success"`
	User    *user.Profile `json:"user"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *user.Profile `json:"user"`
}
