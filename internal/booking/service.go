package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/campus-resource-booking/internal/notification"
	"github.com/nekogravitycat/campus-resource-booking/internal/resource"
)

// maxTransitionAttempts bounds the reload-and-retry loop when a concurrent
// update changes the status between read and write.
const maxTransitionAttempts = 3

// Notifier receives status-change events. Delivery is best effort.
type Notifier interface {
	Notify(e notification.Event) bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Get(ctx context.Context, id string, actor Actor) (*Booking, error)
	ListMine(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Approve(ctx context.Context, id string, actor Actor, notes string) (*Booking, error)
	Decline(ctx context.Context, id string, actor Actor, notes string) (*Booking, error)
	Cancel(ctx context.Context, id string, actor Actor) (*Booking, error)
	Availability(ctx context.Context, resourceID string, date time.Time) ([]*Booking, error)
	Stats(ctx context.Context) (*Stats, error)
	CountActive(ctx context.Context, resourceID string, now time.Time) (int, error)
}

type service struct {
	repo       Repository
	resService resource.Service
	notifier   Notifier
	log        *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, resService resource.Service, notifier Notifier, log *zap.Logger) Service {
	return &service{
		repo:       repo,
		resService: resService,
		notifier:   notifier,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	res, err := s.resService.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	b, err := ValidateAndCreate(ctx, req, rulesFor(res), s.repo.HasOverlap, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	b.ResourceName = res.Name

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("resource_id", b.ResourceID),
		zap.String("user_id", b.UserID),
		zap.String("status", string(b.Status)),
	)
	return b, nil
}

func rulesFor(res *resource.Resource) Rules {
	return Rules{
		ResourceID:       res.ID,
		Available:        res.Available,
		Capacity:         res.Capacity,
		MinDuration:      res.BookingDuration.Min,
		MaxDuration:      res.BookingDuration.Max,
		RequiresApproval: res.RequiresApproval,
	}
}

func (s *service) Get(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && b.UserID != actor.UserID {
		return nil, ErrNotAuthorized
	}
	return b, nil
}

func (s *service) ListMine(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error) {
	if userID == "" {
		return nil, 0, ErrInvalidInput
	}
	filter.UserID = userID
	return s.repo.List(ctx, filter)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Approve(ctx context.Context, id string, actor Actor, notes string) (*Booking, error) {
	return s.transition(ctx, id, ActionApprove, actor, notes)
}

func (s *service) Decline(ctx context.Context, id string, actor Actor, notes string) (*Booking, error) {
	return s.transition(ctx, id, ActionDecline, actor, notes)
}

func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*Booking, error) {
	return s.transition(ctx, id, ActionCancel, actor, "")
}

func (s *service) transition(ctx context.Context, id string, action Action, actor Actor, notes string) (*Booking, error) {
	for attempt := 1; ; attempt++ {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		next, err := Transition(current, action, actor, s.now(), notes)
		if err != nil {
			return nil, err
		}

		err = s.repo.UpdateStatus(ctx, next, current.Status)
		if err == nil {
			s.log.Info("booking status changed",
				zap.String("booking_id", next.ID),
				zap.String("from", string(current.Status)),
				zap.String("to", string(next.Status)),
				zap.String("actor", actor.UserID),
			)
			s.notify(next)
			return next, nil
		}
		if !errors.Is(err, ErrStaleStatus) || attempt >= maxTransitionAttempts {
			return nil, err
		}
		// Re-read so the next Transition sees the status that won.
	}
}

func (s *service) notify(b *Booking) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(notification.Event{
		BookingID:      b.ID,
		Status:         string(b.Status),
		ResourceName:   b.ResourceName,
		RecipientName:  b.UserName,
		RecipientEmail: b.UserEmail,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Purpose:        b.Purpose,
		Notes:          b.AdminNotes,
	})
}

// Availability lists the pending and approved bookings of the resource that
// start on date's calendar day (UTC).
func (s *service) Availability(ctx context.Context, resourceID string, date time.Time) ([]*Booking, error) {
	if _, err := s.resService.GetByID(ctx, resourceID); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	day := startOfDay(date)
	bookings, err := s.repo.ListActiveBetween(ctx, resourceID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*Booking{}
	}
	return bookings, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx, startOfDay(s.now()))
}

func (s *service) CountActive(ctx context.Context, resourceID string, now time.Time) (int, error) {
	return s.repo.CountActive(ctx, resourceID, now)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
