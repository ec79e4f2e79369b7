package http

import (
	"time"

	"github.com/nekogravitycat/campus-resource-booking/internal/file"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/request"
	"github.com/nekogravitycat/campus-resource-booking/internal/resource"
)

type LocationBody struct {
	Building   string `json:"building" binding:"max=100"`
	Floor      string `json:"floor" binding:"max=20"`
	RoomNumber string `json:"room_number" binding:"max=20"`
}

type OperatingHoursBody struct {
	Start string `json:"start" binding:"clock"`
	End   string `json:"end" binding:"clock"`
}

type DurationBody struct {
	Min *int `json:"min" binding:"omitempty,min=1"`
	Max *int `json:"max" binding:"omitempty,min=1"`
}

type CreateRequest struct {
	Name             string             `json:"name" binding:"required,max=200"`
	Type             string             `json:"type" binding:"required,oneof=lab hall equipment room other"`
	Description      string             `json:"description" binding:"required"`
	Capacity         int                `json:"capacity" binding:"required,min=1"`
	Location         LocationBody       `json:"location"`
	Amenities        []string           `json:"amenities" binding:"omitempty,dive,required"`
	Available        *bool              `json:"availability"`
	OperatingHours   OperatingHoursBody `json:"operating_hours"`
	BookingDuration  DurationBody       `json:"booking_duration"`
	RequiresApproval *bool              `json:"requires_approval"`
}

func (r *CreateRequest) ToService() resource.CreateRequest {
	return resource.CreateRequest{
		Name:             r.Name,
		Type:             resource.Type(r.Type),
		Description:      r.Description,
		Capacity:         r.Capacity,
		Location:         resource.Location(r.Location),
		Amenities:        r.Amenities,
		Available:        r.Available,
		OperatingHours:   resource.OperatingHours(r.OperatingHours),
		MinDuration:      r.BookingDuration.Min,
		MaxDuration:      r.BookingDuration.Max,
		RequiresApproval: r.RequiresApproval,
	}
}

type UpdateRequest struct {
	Name             *string             `json:"name" binding:"omitempty,max=200"`
	Type             *string             `json:"type" binding:"omitempty,oneof=lab hall equipment room other"`
	Description      *string             `json:"description"`
	Capacity         *int                `json:"capacity" binding:"omitempty,min=1"`
	Location         *LocationBody       `json:"location"`
	Amenities        *[]string           `json:"amenities"`
	Available        *bool               `json:"availability"`
	OperatingHours   *OperatingHoursBody `json:"operating_hours"`
	BookingDuration  *DurationBody       `json:"booking_duration"`
	RequiresApproval *bool               `json:"requires_approval"`
}

func (r *UpdateRequest) ToService() resource.UpdateRequest {
	out := resource.UpdateRequest{
		Name:             r.Name,
		Description:      r.Description,
		Capacity:         r.Capacity,
		Amenities:        r.Amenities,
		Available:        r.Available,
		RequiresApproval: r.RequiresApproval,
	}
	if r.Type != nil {
		t := resource.Type(*r.Type)
		out.Type = &t
	}
	if r.Location != nil {
		loc := resource.Location(*r.Location)
		out.Location = &loc
	}
	if r.OperatingHours != nil {
		hours := resource.OperatingHours(*r.OperatingHours)
		out.OperatingHours = &hours
	}
	if r.BookingDuration != nil {
		out.MinDuration = r.BookingDuration.Min
		out.MaxDuration = r.BookingDuration.Max
	}
	return out
}

type ListResourcesRequest struct {
	request.ListParams
	Search    string `form:"search" binding:"max=100"`
	Type      string `form:"type" binding:"omitempty,oneof=lab hall equipment room other"`
	Available *bool  `form:"availability"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=name capacity created_at"`
}

type ImageResponse struct {
	FileID       string `json:"file_id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type ResourceResponse struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Type             string             `json:"type"`
	Description      string             `json:"description"`
	Capacity         int                `json:"capacity"`
	Location         LocationBody       `json:"location"`
	Amenities        []string           `json:"amenities"`
	Images           []ImageResponse    `json:"images"`
	Available        bool               `json:"availability"`
	OperatingHours   OperatingHoursBody `json:"operating_hours"`
	BookingDuration  DurationResponse   `json:"booking_duration"`
	RequiresApproval bool               `json:"requires_approval"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type DurationResponse struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func NewResponse(r *resource.Resource) ResourceResponse {
	images := make([]ImageResponse, len(r.Images))
	for i, id := range r.Images {
		images[i] = ImageResponse{FileID: id, URL: file.FileURL(id), ThumbnailURL: file.ThumbnailURL(id)}
	}
	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return ResourceResponse{
		ID:               r.ID,
		Name:             r.Name,
		Type:             string(r.Type),
		Description:      r.Description,
		Capacity:         r.Capacity,
		Location:         LocationBody(r.Location),
		Amenities:        amenities,
		Images:           images,
		Available:        r.Available,
		OperatingHours:   OperatingHoursBody(r.OperatingHours),
		BookingDuration:  DurationResponse(r.BookingDuration),
		RequiresApproval: r.RequiresApproval,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
