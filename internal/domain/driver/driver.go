package driver

import (
	"math"
	"strings"
	"time"
)

// KeyPrefix is the store namespace holding one record per driver
const KeyPrefix = "driver:"

// Key returns the store key for a driver's presence record
func Key(driverID string) string {
	return KeyPrefix + driverID
}

// Status represents driver availability status
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusOffline   Status = "offline"
)

// VehicleType represents the type of vehicle
type VehicleType string

const (
	VehicleTricycle VehicleType = "tricycle"
	VehicleMulticab VehicleType = "multicab"
)

// Capacity values offered by the driver app. Capacity is free text on the
// wire and is not validated against this list.
const (
	CapacityFull      = "Full"
	CapacityOneSeat   = "1 seat available"
	CapacityTwoSeats  = "2 seats available"
	CapacityThreeSeat = "3 seats available"
	CapacityPlenty    = "Plenty of space"
)

// Location is a WGS84 coordinate pair in degrees
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is the latest broadcast of one driver. A publish replaces the whole
// record; there is no history.
type Record struct {
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Status      Status      `json:"status"`
	Route       string      `json:"route"`
	Capacity    string      `json:"capacity"`
	Location    Location    `json:"location"`
	VehicleType VehicleType `json:"vehicleType"`
	PlateNumber string      `json:"plateNumber"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// StatusUpdate is what a driver sends when publishing
type StatusUpdate struct {
	Status      Status
	Route       string
	Capacity    string
	Location    Location
	VehicleType VehicleType
	PlateNumber string
}

// ParseStatus maps a wire value onto the closed status set
func ParseStatus(s string) (Status, error) {
	if st := Status(strings.ToLower(strings.TrimSpace(s))); st.IsValid() {
		return st, nil
	}
	return "", ErrInvalidStatus
}

// ParseVehicleType maps a wire value onto the closed vehicle set
func ParseVehicleType(s string) (VehicleType, error) {
	if vt := VehicleType(strings.ToLower(strings.TrimSpace(s))); vt.IsValid() {
		return vt, nil
	}
	return "", ErrInvalidVehicleType
}

// ParseOptionalVehicleType is ParseVehicleType with a blank value meaning
// unset
func ParseOptionalVehicleType(s string) (VehicleType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return ParseVehicleType(s)
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusOffline:
		return true
	}
	return false
}

// IsValid validates the vehicle type
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleTricycle, VehicleMulticab:
		return true
	}
	return false
}

// Validate checks the coordinate ranges
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) || l.Latitude < -90 || l.Latitude > 90 {
		return ErrInvalidLocation
	}
	if math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) || l.Longitude < -180 || l.Longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}

// Validate checks an update before it is turned into a record. An empty
// vehicle type is allowed; the registry fills it from earlier data.
func (u StatusUpdate) Validate() error {
	if !u.Status.IsValid() {
		return ErrInvalidStatus
	}
	if u.VehicleType != "" && !u.VehicleType.IsValid() {
		return ErrInvalidVehicleType
	}
	return u.Location.Validate()
}

// Visible reports whether passengers should see the record. Offline records,
// records with no status and records with a status outside the known set are
// hidden.
func (r *Record) Visible() bool {
	return r.Status == StatusAvailable || r.Status == StatusOccupied
}
