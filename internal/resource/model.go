package resource

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/apperror"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName             = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrEmptyDescription      = apperror.New(http.StatusBadRequest, "description cannot be empty")
	ErrInvalidType           = apperror.New(http.StatusBadRequest, "invalid resource type")
	ErrInvalidCapacity       = apperror.New(http.StatusBadRequest, "capacity must be at least 1")
	ErrInvalidDuration       = apperror.New(http.StatusBadRequest, "booking duration bounds must satisfy 0 < min <= max")
	ErrInvalidOperatingHours = apperror.New(http.StatusBadRequest, "operating hours must be HH:MM")
	ErrHasActiveBookings     = apperror.New(http.StatusBadRequest, "cannot delete resource with active bookings")
	ErrHasBookingHistory     = apperror.New(http.StatusConflict, "cannot delete resource with booking history; mark it unavailable instead")
	ErrImageAlreadyAttached  = apperror.New(http.StatusConflict, "image already attached to resource")
)

type Type string

const (
	TypeLab       Type = "lab"
	TypeHall      Type = "hall"
	TypeEquipment Type = "equipment"
	TypeRoom      Type = "room"
	TypeOther     Type = "other"
)

// ValidTypes lists every accepted resource type.
var ValidTypes = []Type{TypeLab, TypeHall, TypeEquipment, TypeRoom, TypeOther}

func (t Type) Valid() bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

const (
	DefaultMinDuration = 30  // minutes
	DefaultMaxDuration = 240 // minutes
)

type Location struct {
	Building   string
	Floor      string
	RoomNumber string
}

// OperatingHours is informational; bookings are not checked against it.
type OperatingHours struct {
	Start string // HH:MM
	End   string // HH:MM
}

// DurationBounds are the allowed booking lengths in minutes, inclusive.
type DurationBounds struct {
	Min int
	Max int
}

// Resource represents a bookable unit (e.g., Chemistry Lab 2, Main Hall).
type Resource struct {
	ID               string
	Name             string
	Type             Type
	Description      string
	Capacity         int
	Location         Location
	Amenities        []string
	Images           []string // file IDs
	Available        bool
	OperatingHours   OperatingHours
	BookingDuration  DurationBounds
	RequiresApproval bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Search    string
	Type      string
	Available *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
