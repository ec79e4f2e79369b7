package booking

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// Back-to-back intervals (one ends exactly when the other starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Rules is the read-only snapshot of a resource that a booking is validated against.
type Rules struct {
	ResourceID       string
	Available        bool
	Capacity         int
	MinDuration      int // minutes
	MaxDuration      int // minutes
	RequiresApproval bool
}

// OverlapCheck reports whether any pending or approved booking of resourceID
// overlaps [start, end). excludeBookingID, when not empty, is ignored.
type OverlapCheck func(ctx context.Context, resourceID string, start, end time.Time, excludeBookingID string) (bool, error)

type CreateRequest struct {
	ResourceID string
	UserID     string
	StartTime  time.Time
	EndTime    time.Time
	Purpose    string
	Attendees  int
}

// ValidateAndCreate checks a booking request against the resource rules and the
// existing bookings, cheapest check first, and returns the booking to persist.
// It performs no I/O of its own; hasOverlap is the only call out.
func ValidateAndCreate(ctx context.Context, req CreateRequest, rules Rules, hasOverlap OverlapCheck, now time.Time) (*Booking, error) {
	if !rules.Available {
		return nil, ErrResourceUnavailable
	}

	window := Interval{Start: req.StartTime, End: req.EndTime}
	if !window.Start.Before(window.End) {
		return nil, ErrInvalidInterval
	}

	if req.StartTime.Before(now) {
		return nil, ErrInThePast
	}

	d := window.Duration()
	if d < time.Duration(rules.MinDuration)*time.Minute || d > time.Duration(rules.MaxDuration)*time.Minute {
		return nil, ErrDurationOutOfRange.With(
			fmt.Sprintf("booking duration must be between %d and %d minutes", rules.MinDuration, rules.MaxDuration),
			map[string]any{"min": rules.MinDuration, "max": rules.MaxDuration},
		)
	}

	if req.Attendees < 1 || req.Attendees > rules.Capacity {
		return nil, ErrCapacityExceeded.With(
			fmt.Sprintf("number of attendees must be between 1 and the resource capacity of %d", rules.Capacity),
			map[string]any{"capacity": rules.Capacity},
		)
	}

	// Rule failures take precedence; hasOverlap is never called with incomplete input.
	if strings.TrimSpace(req.Purpose) == "" || req.UserID == "" || req.ResourceID == "" {
		return nil, ErrInvalidInput
	}

	conflict, err := hasOverlap(ctx, req.ResourceID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, SlotConflict(req.StartTime, req.EndTime)
	}

	status := StatusApproved
	if rules.RequiresApproval {
		status = StatusPending
	}

	return &Booking{
		ResourceID: req.ResourceID,
		UserID:     req.UserID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Purpose:    req.Purpose,
		Attendees:  req.Attendees,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SlotConflict builds the detailed conflict error for the requested window.
func SlotConflict(start, end time.Time) error {
	return ErrSlotConflict.With(ErrSlotConflict.Message, map[string]any{
		"start": start.UTC().Format(time.RFC3339),
		"end":   end.UTC().Format(time.RFC3339),
	})
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
	ActionCancel  Action = "cancel"
)

// Actor is whoever asks for a transition. Authentication happens elsewhere;
// only identity and the admin flag are consulted here.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// Transition applies action to b and returns the updated copy; b itself is left untouched.
//
//	pending            --approve (admin)--> approved
//	pending            --decline (admin)--> declined
//	pending | approved --cancel  (owner)--> cancelled
//
// notes are stored on approve and decline only.
func Transition(b *Booking, action Action, actor Actor, now time.Time, notes string) (*Booking, error) {
	next := *b

	switch action {
	case ActionApprove, ActionDecline:
		if !actor.IsAdmin {
			return nil, ErrNotAuthorized
		}
		if b.Status != StatusPending {
			return nil, invalidTransition(b.Status, action)
		}
		next.Status = StatusApproved
		if action == ActionDecline {
			next.Status = StatusDeclined
		}
		next.AdminNotes = notes

	case ActionCancel:
		if actor.UserID == "" || actor.UserID != b.UserID {
			return nil, ErrNotAuthorized
		}
		if b.Status == StatusCancelled {
			return nil, ErrAlreadyCancelled
		}
		if !b.Status.Active() {
			return nil, invalidTransition(b.Status, action)
		}
		next.Status = StatusCancelled

	default:
		return nil, invalidTransition(b.Status, action)
	}

	next.UpdatedAt = now
	return &next, nil
}

func invalidTransition(from Status, action Action) error {
	return ErrInvalidTransition.With(
		fmt.Sprintf("cannot %s a booking that is %s", action, from),
		map[string]any{"from": string(from), "action": string(action)},
	)
}
