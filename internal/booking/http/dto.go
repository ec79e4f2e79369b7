package http

import (
	"strings"
	"time"

	"github.com/nekogravitycat/campus-resource-booking/internal/booking"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/request"
)

type CreateBookingRequest struct {
	ResourceID string    `json:"resource_id" binding:"required,uuid"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	Purpose    string    `json:"purpose" binding:"required,max=500"`
	Attendees  int       `json:"attendees" binding:"required,min=1"`
}

// ListBookingsRequest defines query parameters for listing bookings.
// UserID is honoured on the admin listing only.
type ListBookingsRequest struct {
	request.ListParams
	ResourceID string     `form:"resource_id" binding:"omitempty,uuid"`
	UserID     string     `form:"user_id" binding:"omitempty,uuid"`
	Status     string     `form:"status" binding:"omitempty,oneof=pending approved declined cancelled"`
	StartDate  *time.Time `form:"start_date" time_format:"2006-01-02" time_utc:"1"`
	EndDate    *time.Time `form:"end_date" time_format:"2006-01-02" time_utc:"1"`
	SortBy     string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at status"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.StartDate != nil && r.EndDate != nil && r.StartDate.After(*r.EndDate) {
		return booking.ErrInvalidInterval
	}
	return nil
}

// Filter converts the query into a repository filter. EndDate covers the whole day.
func (r *ListBookingsRequest) Filter() booking.Filter {
	f := booking.Filter{
		UserID:     r.UserID,
		ResourceID: r.ResourceID,
		Status:     r.Status,
		StartTime:  r.StartDate,
		Page:       r.Page,
		PageSize:   r.PageSize,
		SortBy:     r.SortBy,
		SortOrder:  strings.ToUpper(r.SortOrder),
	}
	if r.EndDate != nil {
		end := r.EndDate.AddDate(0, 0, 1).Add(-time.Microsecond)
		f.EndTime = &end
	}
	return f
}

type DecisionRequest struct {
	AdminNotes string `json:"admin_notes" binding:"max=1000"`
}

type AvailabilityRequest struct {
	Date time.Time `form:"date" binding:"required" time_format:"2006-01-02" time_utc:"1"`
}

type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserTag struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type BookingResponse struct {
	ID         string      `json:"id"`
	Resource   ResourceTag `json:"resource"`
	User       UserTag     `json:"user"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
	Purpose    string      `json:"purpose"`
	Attendees  int         `json:"attendees"`
	Status     string      `json:"status"`
	AdminNotes string      `json:"admin_notes"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		Resource:   ResourceTag{ID: b.ResourceID, Name: b.ResourceName},
		User:       UserTag{ID: b.UserID, Name: b.UserName, Email: b.UserEmail},
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Purpose:    b.Purpose,
		Attendees:  b.Attendees,
		Status:     string(b.Status),
		AdminNotes: b.AdminNotes,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// SlotResponse is one occupied window in the availability view.
type SlotResponse struct {
	BookingID string    `json:"booking_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Purpose   string    `json:"purpose"`
}

type AvailabilityResponse struct {
	ResourceID string         `json:"resource_id"`
	Date       string         `json:"date"`
	Bookings   []SlotResponse `json:"bookings"`
}

type StatsResponse struct {
	TotalResources     int `json:"total_resources"`
	AvailableResources int `json:"available_resources"`
	TotalBookings      int `json:"total_bookings"`
	PendingBookings    int `json:"pending_bookings"`
	TotalUsers         int `json:"total_users"`
	TodayBookings      int `json:"today_bookings"`
}
