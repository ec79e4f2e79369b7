package resource

import (
	"context"
	"strings"
	"time"

	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/request"
)

type CreateRequest struct {
	Name             string
	Type             Type
	Description      string
	Capacity         int
	Location         Location
	Amenities        []string
	Available        *bool
	OperatingHours   OperatingHours
	MinDuration      *int
	MaxDuration      *int
	RequiresApproval *bool
}

// UpdateRequest holds the fields to change; nil means "leave as is".
type UpdateRequest struct {
	Name             *string
	Type             *Type
	Description      *string
	Capacity         *int
	Location         *Location
	Amenities        *[]string
	Available        *bool
	OperatingHours   *OperatingHours
	MinDuration      *int
	MaxDuration      *int
	RequiresApproval *bool
}

// ActiveBookingCounter reports how many pending or approved bookings of a
// resource have not ended yet. The booking module provides it.
type ActiveBookingCounter interface {
	CountActive(ctx context.Context, resourceID string, now time.Time) (int, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error)
	Delete(ctx context.Context, id string) error
	AttachImage(ctx context.Context, id string, fileID string) (*Resource, error)
}

type service struct {
	repo     Repository
	bookings ActiveBookingCounter
	now      func() time.Time
}

func NewService(repo Repository, bookings ActiveBookingCounter) Service {
	return &service{
		repo:     repo,
		bookings: bookings,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	res := &Resource{
		Name:             strings.TrimSpace(req.Name),
		Type:             req.Type,
		Description:      strings.TrimSpace(req.Description),
		Capacity:         req.Capacity,
		Location:         req.Location,
		Amenities:        req.Amenities,
		Images:           []string{},
		Available:        true,
		OperatingHours:   req.OperatingHours,
		BookingDuration:  DurationBounds{Min: DefaultMinDuration, Max: DefaultMaxDuration},
		RequiresApproval: true,
	}
	if res.Amenities == nil {
		res.Amenities = []string{}
	}
	if req.Available != nil {
		res.Available = *req.Available
	}
	if req.MinDuration != nil {
		res.BookingDuration.Min = *req.MinDuration
	}
	if req.MaxDuration != nil {
		res.BookingDuration.Max = *req.MaxDuration
	}
	if req.RequiresApproval != nil {
		res.RequiresApproval = *req.RequiresApproval
	}

	if err := validate(res); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		res.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		res.Type = *req.Type
	}
	if req.Description != nil {
		res.Description = strings.TrimSpace(*req.Description)
	}
	if req.Capacity != nil {
		res.Capacity = *req.Capacity
	}
	if req.Location != nil {
		res.Location = *req.Location
	}
	if req.Amenities != nil {
		res.Amenities = *req.Amenities
	}
	if req.Available != nil {
		res.Available = *req.Available
	}
	if req.OperatingHours != nil {
		res.OperatingHours = *req.OperatingHours
	}
	if req.MinDuration != nil {
		res.BookingDuration.Min = *req.MinDuration
	}
	if req.MaxDuration != nil {
		res.BookingDuration.Max = *req.MaxDuration
	}
	if req.RequiresApproval != nil {
		res.RequiresApproval = *req.RequiresApproval
	}

	if err := validate(res); err != nil {
		return nil, err
	}

	res.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.bookings.CountActive(ctx, id, s.now())
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrHasActiveBookings
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) AttachImage(ctx context.Context, id string, fileID string) (*Resource, error) {
	return s.repo.AppendImage(ctx, id, fileID, s.now())
}

// validate checks the invariants every stored resource must satisfy.
func validate(res *Resource) error {
	if res.Name == "" {
		return ErrEmptyName
	}
	if !res.Type.Valid() {
		return ErrInvalidType
	}
	if res.Description == "" {
		return ErrEmptyDescription
	}
	if res.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if res.BookingDuration.Min <= 0 || res.BookingDuration.Min > res.BookingDuration.Max {
		return ErrInvalidDuration
	}
	for _, h := range []string{res.OperatingHours.Start, res.OperatingHours.End} {
		if h != "" && !request.IsClock(h) {
			return ErrInvalidOperatingHours
		}
	}
	return nil
}
