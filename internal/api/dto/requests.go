package dto

import (
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/feedback"
	"github.com/maasin/byahenow/internal/domain/user"
)

// PublishStatusRequest is a driver's full presence record
type PublishStatusRequest struct {
	Status      string  `json:"status" binding:"required"`
	Route       string  `json:"route"`
	Capacity    string  `json:"capacity"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	VehicleType string  `json:"vehicleType"`
	PlateNumber string  `json:"plateNumber"`
}

// ToStatusUpdate maps the wire enums onto the domain types
func (r PublishStatusRequest) ToStatusUpdate() (driver.StatusUpdate, error) {
	status, err := driver.ParseStatus(r.Status)
	if err != nil {
		return driver.StatusUpdate{}, err
	}
	vt, err := driver.ParseOptionalVehicleType(r.VehicleType)
	if err != nil {
		return driver.StatusUpdate{}, err
	}
	return driver.StatusUpdate{
		Status:      status,
		Route:       r.Route,
		Capacity:    r.Capacity,
		Location:    driver.Location{Latitude: r.Latitude, Longitude: r.Longitude},
		VehicleType: vt,
		PlateNumber: r.PlateNumber,
	}, nil
}

// FeedbackRequest rates a trip
type FeedbackRequest struct {
	DriverID    string `json:"driverId"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	PlateNumber string `json:"plateNumber"`
}

func (r FeedbackRequest) ToInput() feedback.Input {
	return feedback.Input{
		Rating:      r.Rating,
		DriverID:    r.DriverID,
		PlateNumber: r.PlateNumber,
		Comment:     r.Comment,
	}
}

// UpdateProfileRequest holds the editable profile fields; omitted fields
// are left unchanged
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	PlateNumber *string `json:"plateNumber"`
	VehicleType *string `json:"vehicleType"`
}

// ToProfileUpdate validates the vehicle type if one was sent. An empty
// vehicle type clears it.
func (r UpdateProfileRequest) ToProfileUpdate() (user.ProfileUpdate, error) {
	upd := user.ProfileUpdate{Name: r.Name, PlateNumber: r.PlateNumber}
	if r.VehicleType != nil {
		vt, err := driver.ParseOptionalVehicleType(*r.VehicleType)
		if err != nil {
			return user.ProfileUpdate{}, err
		}
		upd.VehicleType = &vt
	}
	return upd, nil
}

// SignupRequest creates an account
type SignupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role" binding:"required"`
	PlateNumber string `json:"plateNumber"`
	VehicleType string `json:"vehicleType"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
