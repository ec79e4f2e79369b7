package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "booking not found")
	ErrResourceNotFound    = apperror.New(http.StatusNotFound, "resource not found")
	ErrResourceUnavailable = apperror.New(http.StatusBadRequest, "resource is not available")
	ErrInvalidInterval     = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrInThePast           = apperror.New(http.StatusBadRequest, "cannot book in the past")
	ErrDurationOutOfRange  = apperror.New(http.StatusBadRequest, "booking duration out of range")
	ErrCapacityExceeded    = apperror.New(http.StatusBadRequest, "number of attendees exceeds resource capacity")
	ErrSlotConflict        = apperror.New(http.StatusConflict, "time slot is already booked")
	ErrInvalidTransition   = apperror.New(http.StatusBadRequest, "invalid status transition")
	ErrAlreadyCancelled    = apperror.New(http.StatusBadRequest, "booking already cancelled")
	ErrNotAuthorized       = apperror.New(http.StatusForbidden, "not authorized")
	ErrInvalidInput        = apperror.New(http.StatusBadRequest, "invalid input parameters")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// Active reports whether a booking in this status holds its time slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses are the statuses that take part in conflict detection.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

type Booking struct {
	ID           string
	ResourceID   string
	ResourceName string
	UserID       string
	UserName     string
	UserEmail    string
	StartTime    time.Time
	EndTime      time.Time
	Purpose      string
	Attendees    int
	Status       Status
	AdminNotes   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Interval returns the booking's half-open [start, end) window.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

type Filter struct {
	UserID     string
	ResourceID string
	Status     string
	StartTime  *time.Time // Only bookings starting at or after this time
	EndTime    *time.Time // Only bookings starting at or before this time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalResources     int
	AvailableResources int
	TotalBookings      int
	PendingBookings    int
	TotalUsers         int
	TodayBookings      int
}
