package driver

import "errors"

var (
	ErrDriverNotFound     = errors.New("driver not found")
	ErrInvalidStatus      = errors.New("status must be one of available, occupied, offline")
	ErrInvalidVehicleType = errors.New("vehicleType must be one of tricycle, multicab")
	ErrInvalidLocation    = errors.New("latitude must be within [-90,90] and longitude within [-180,180]")
	ErrInvalidFilter      = errors.New("vehicleType filter must be one of all, tricycle, multicab")
)
