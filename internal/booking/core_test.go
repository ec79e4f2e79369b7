package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/apperror"
)

var now = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func hallRules() Rules {
	return Rules{
		ResourceID:       "res-1",
		Available:        true,
		Capacity:         10,
		MinDuration:      30,
		MaxDuration:      240,
		RequiresApproval: true,
	}
}

func noOverlap(context.Context, string, time.Time, time.Time, string) (bool, error) {
	return false, nil
}

// memOverlap answers overlap queries from an in-memory booking list.
func memOverlap(bookings ...*Booking) OverlapCheck {
	return func(_ context.Context, resourceID string, start, end time.Time, exclude string) (bool, error) {
		want := Interval{Start: start, End: end}
		for _, b := range bookings {
			if b.ResourceID != resourceID || b.ID == exclude || !b.Status.Active() {
				continue
			}
			if b.Interval().Overlaps(want) {
				return true, nil
			}
		}
		return false, nil
	}
}

func request(start, end time.Time, attendees int) CreateRequest {
	return CreateRequest{
		ResourceID: "res-1",
		UserID:     "user-1",
		StartTime:  start,
		EndTime:    end,
		Purpose:    "Study group",
		Attendees:  attendees,
	}
}

func at(h, m int) time.Time {
	return now.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestValidateAndCreateInitialStatus(t *testing.T) {
	rules := hallRules()

	b, err := ValidateAndCreate(context.Background(), request(at(1, 0), at(2, 0), 4), rules, noOverlap, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, now, b.CreatedAt)
	assert.Equal(t, now, b.UpdatedAt)
	assert.Empty(t, b.AdminNotes)

	rules.RequiresApproval = false
	b, err = ValidateAndCreate(context.Background(), request(at(1, 0), at(2, 0), 4), rules, noOverlap, now)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, b.Status)
}

func TestValidateAndCreateCheckOrder(t *testing.T) {
	unavailable := hallRules()
	unavailable.Available = false

	checked := false
	failingCheck := func(context.Context, string, time.Time, time.Time, string) (bool, error) {
		checked = true
		return true, nil
	}

	tests := []struct {
		name  string
		req   CreateRequest
		rules Rules
		want  error
	}{
		{"unavailable beats everything", request(at(-5, 0), at(-6, 0), 99), unavailable, ErrResourceUnavailable},
		{"inverted interval beats past", request(at(-1, 0), at(-2, 0), 99), hallRules(), ErrInvalidInterval},
		{"empty interval", request(at(1, 0), at(1, 0), 1), hallRules(), ErrInvalidInterval},
		{"past beats duration", request(at(-1, 0), at(-1, 5), 99), hallRules(), ErrInThePast},
		{"duration beats capacity", request(at(1, 0), at(1, 5), 99), hallRules(), ErrDurationOutOfRange},
		{"capacity beats overlap", request(at(1, 0), at(2, 0), 11), hallRules(), ErrCapacityExceeded},
		{"overlap last", request(at(1, 0), at(2, 0), 10), hallRules(), ErrSlotConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checked = false
			_, err := ValidateAndCreate(context.Background(), tt.req, tt.rules, failingCheck, now)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, errors.Is(tt.want, ErrSlotConflict), checked)
		})
	}
}

func TestValidateAndCreateRejectsMissingInput(t *testing.T) {
	checked := false
	hasOverlap := func(context.Context, string, time.Time, time.Time, string) (bool, error) {
		checked = true
		return false, nil
	}

	req := request(at(1, 0), at(2, 0), 1)
	req.Purpose = "  "
	_, err := ValidateAndCreate(context.Background(), req, hallRules(), hasOverlap, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, checked)
}

func TestInvertedIntervalWinsOverMissingFields(t *testing.T) {
	req := request(at(2, 0), at(1, 0), 1)
	req.Purpose = ""
	req.UserID = ""
	_, err := ValidateAndCreate(context.Background(), req, hallRules(), noOverlap, now)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	req.EndTime = req.StartTime
	_, err = ValidateAndCreate(context.Background(), req, hallRules(), noOverlap, now)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestStartAtNowIsAccepted(t *testing.T) {
	_, err := ValidateAndCreate(context.Background(), request(now, at(0, 30), 1), hallRules(), noOverlap, now)
	assert.NoError(t, err)

	_, err = ValidateAndCreate(context.Background(), request(now.Add(-time.Second), at(0, 30), 1), hallRules(), noOverlap, now)
	assert.ErrorIs(t, err, ErrInThePast)
}

func TestDurationBoundaries(t *testing.T) {
	tests := []struct {
		minutes int
		ok      bool
	}{
		{29, false},
		{30, true},
		{240, true},
		{241, false},
	}

	for _, tt := range tests {
		start := at(1, 0)
		end := start.Add(time.Duration(tt.minutes) * time.Minute)
		_, err := ValidateAndCreate(context.Background(), request(start, end, 1), hallRules(), noOverlap, now)
		if tt.ok {
			assert.NoError(t, err, "%d minutes", tt.minutes)
			continue
		}
		require.ErrorIs(t, err, ErrDurationOutOfRange, "%d minutes", tt.minutes)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, map[string]any{"min": 30, "max": 240}, appErr.Details)
		assert.Equal(t, "booking duration must be between 30 and 240 minutes", appErr.Message)
	}
}

func TestCapacityBoundaries(t *testing.T) {
	_, err := ValidateAndCreate(context.Background(), request(at(1, 0), at(2, 0), 10), hallRules(), noOverlap, now)
	assert.NoError(t, err)

	_, err = ValidateAndCreate(context.Background(), request(at(1, 0), at(2, 0), 11), hallRules(), noOverlap, now)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 10, appErr.Details["capacity"])

	_, err = ValidateAndCreate(context.Background(), request(at(1, 0), at(2, 0), 0), hallRules(), noOverlap, now)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestOverlapSemantics(t *testing.T) {
	ten := Interval{Start: at(1, 0), End: at(2, 0)}

	assert.False(t, ten.Overlaps(Interval{Start: at(2, 0), End: at(3, 0)}), "back-to-back")
	assert.False(t, Interval{Start: at(2, 0), End: at(3, 0)}.Overlaps(ten), "back-to-back reversed")
	assert.True(t, ten.Overlaps(Interval{Start: at(1, 30), End: at(2, 30)}))
	assert.True(t, ten.Overlaps(Interval{Start: at(1, 15), End: at(1, 45)}), "contained")
	assert.True(t, ten.Overlaps(ten), "identical")
}

func TestOverlapCheckIgnoresInactiveBookings(t *testing.T) {
	existing := []*Booking{
		{ID: "c", ResourceID: "res-1", StartTime: at(1, 0), EndTime: at(2, 0), Status: StatusCancelled},
		{ID: "d", ResourceID: "res-1", StartTime: at(1, 0), EndTime: at(2, 0), Status: StatusDeclined},
		{ID: "o", ResourceID: "res-2", StartTime: at(1, 0), EndTime: at(2, 0), Status: StatusApproved},
	}

	_, err := ValidateAndCreate(context.Background(), request(at(1, 0), at(2, 0), 1), hallRules(), memOverlap(existing...), now)
	assert.NoError(t, err)
}

func TestSlotConflictDetails(t *testing.T) {
	hasOverlap := memOverlap(&Booking{ID: "a", ResourceID: "res-1", StartTime: at(1, 0), EndTime: at(2, 0), Status: StatusPending})

	_, err := ValidateAndCreate(context.Background(), request(at(1, 30), at(2, 30), 1), hallRules(), hasOverlap, now)
	require.ErrorIs(t, err, ErrSlotConflict)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "2026-05-04T10:30:00Z", appErr.Details["start"])
	assert.Equal(t, "2026-05-04T11:30:00Z", appErr.Details["end"])
}

func TestOverlapCheckErrorIsReturnedUnchanged(t *testing.T) {
	boom := errors.New("db down")
	hasOverlap := func(context.Context, string, time.Time, time.Time, string) (bool, error) { return false, boom }

	_, err := ValidateAndCreate(context.Background(), request(at(1, 0), at(2, 0), 1), hallRules(), hasOverlap, now)
	assert.Equal(t, boom, err)
}

var (
	admin = Actor{UserID: "admin-1", IsAdmin: true}
	owner = Actor{UserID: "user-1"}
	other = Actor{UserID: "user-2"}
)

func booked(status Status) *Booking {
	return &Booking{
		ID:         "b-1",
		ResourceID: "res-1",
		UserID:     "user-1",
		StartTime:  at(1, 0),
		EndTime:    at(2, 0),
		Status:     status,
		AdminNotes: "original",
		UpdatedAt:  now,
	}
}

func TestTransitionTable(t *testing.T) {
	later := now.Add(time.Minute)

	tests := []struct {
		name   string
		from   Status
		action Action
		actor  Actor
		want   Status
		err    error
	}{
		{"admin approves pending", StatusPending, ActionApprove, admin, StatusApproved, nil},
		{"admin declines pending", StatusPending, ActionDecline, admin, StatusDeclined, nil},
		{"owner cancels pending", StatusPending, ActionCancel, owner, StatusCancelled, nil},
		{"owner cancels approved", StatusApproved, ActionCancel, owner, StatusCancelled, nil},

		{"approve twice", StatusApproved, ActionApprove, admin, "", ErrInvalidTransition},
		{"decline approved", StatusApproved, ActionDecline, admin, "", ErrInvalidTransition},
		{"approve declined", StatusDeclined, ActionApprove, admin, "", ErrInvalidTransition},
		{"approve cancelled", StatusCancelled, ActionApprove, admin, "", ErrInvalidTransition},
		{"cancel declined", StatusDeclined, ActionCancel, owner, "", ErrInvalidTransition},
		{"cancel twice", StatusCancelled, ActionCancel, owner, "", ErrAlreadyCancelled},

		{"user approves", StatusPending, ActionApprove, owner, "", ErrNotAuthorized},
		{"user declines", StatusPending, ActionDecline, other, "", ErrNotAuthorized},
		{"stranger cancels", StatusPending, ActionCancel, other, "", ErrNotAuthorized},
		{"admin cancels someone else's", StatusPending, ActionCancel, admin, "", ErrNotAuthorized},
		{"anonymous cancels", StatusPending, ActionCancel, Actor{}, "", ErrNotAuthorized},
		{"unknown action", StatusPending, Action("reschedule"), admin, "", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := booked(tt.from)
			got, err := Transition(in, tt.action, tt.actor, later, "checked")

			assert.Equal(t, tt.from, in.Status, "input must not be mutated")
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, later, got.UpdatedAt)
		})
	}
}

func TestTransitionNotes(t *testing.T) {
	approved, err := Transition(booked(StatusPending), ActionApprove, admin, now, "bring a key")
	require.NoError(t, err)
	assert.Equal(t, "bring a key", approved.AdminNotes)

	cancelled, err := Transition(booked(StatusPending), ActionCancel, owner, now, "ignored")
	require.NoError(t, err)
	assert.Equal(t, "original", cancelled.AdminNotes)
}

func TestInvalidTransitionDetails(t *testing.T) {
	_, err := Transition(booked(StatusApproved), ActionApprove, admin, now, "")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "cannot approve a booking that is approved", appErr.Message)
	assert.Equal(t, map[string]any{"from": "approved", "action": "approve"}, appErr.Details)
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	var store []*Booking
	hasOverlap := func(ctx context.Context, resourceID string, start, end time.Time, exclude string) (bool, error) {
		return memOverlap(store...)(ctx, resourceID, start, end, exclude)
	}

	first, err := ValidateAndCreate(ctx, request(at(1, 0), at(1, 30), 5), hallRules(), hasOverlap, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, first.Status)
	first.ID = "b-1"
	store = append(store, first)

	_, err = ValidateAndCreate(ctx, request(at(1, 15), at(1, 45), 5), hallRules(), hasOverlap, now)
	require.ErrorIs(t, err, ErrSlotConflict)

	approvedAt := now.Add(10 * time.Minute)
	approved, err := Transition(first, ActionApprove, admin, approvedAt, "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.True(t, approved.UpdatedAt.After(first.UpdatedAt))
	assert.Empty(t, approved.AdminNotes)

	cancelled, err := Transition(approved, ActionCancel, Actor{UserID: "user-1"}, approvedAt.Add(time.Minute), "")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	store[0] = cancelled
	_, err = ValidateAndCreate(ctx, request(at(1, 15), at(1, 45), 5), hallRules(), hasOverlap, now)
	assert.NoError(t, err, "cancelled booking frees the slot")
}
