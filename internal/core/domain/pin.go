package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrPinNotFound is returned when no pin exists for an identifier.
	ErrPinNotFound = errors.New("pin not found")
	// ErrInvalidPin is returned when pin input fails validation.
	ErrInvalidPin = errors.New("invalid pin")
)

// UnknownLocation is the place name used when reverse geocoding yields nothing.
const UnknownLocation = "Unknown location"

// Pin is a geolocated marker dropped by a user. Pins are immutable once created.
type Pin struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
}

// Point returns the pin's coordinates.
func (p Pin) Point() GeoPoint {
	return GeoPoint{Lat: p.Lat, Lon: p.Lng}
}

// NewPin is the client-supplied part of a pin.
type NewPin struct {
	Lat   float64
	Lng   float64
	Name  string
	Image string
}

// Place is a reverse geocoding answer.
type Place struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// SafeID reports whether id can name a storage record without escaping its
// namespace. Anything else is treated as not found.
func SafeID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00") && !strings.Contains(id, "..")
}
