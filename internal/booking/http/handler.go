package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/campus-resource-booking/internal/auth"
	"github.com/nekogravitycat/campus-resource-booking/internal/booking"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/request"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{UserID: auth.GetUserID(c), IsAdmin: auth.IsAdmin(c)}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", request.FieldErrors(err))
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		ResourceID: req.ResourceID,
		UserID:     auth.GetUserID(c),
		StartTime:  req.StartTime.UTC(),
		EndTime:    req.EndTime.UTC(),
		Purpose:    req.Purpose,
		Attendees:  req.Attendees,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// ListMine lists the caller's own bookings.
func (h *Handler) ListMine(c *gin.Context) {
	req, ok := bindList(c)
	if !ok {
		return
	}

	bookings, total, err := h.service.ListMine(c.Request.Context(), auth.GetUserID(c), req.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, bookings, req, total)
}

// List lists every booking; admin only.
func (h *Handler) List(c *gin.Context) {
	req, ok := bindList(c)
	if !ok {
		return
	}

	bookings, total, err := h.service.List(c.Request.Context(), req.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, bookings, req, total)
}

func bindList(c *gin.Context) (*ListBookingsRequest, bool) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", request.FieldErrors(err))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return nil, false
	}
	return &req, true
}

func writePage(c *gin.Context, bookings []*booking.Booking, req *ListBookingsRequest, total int) {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", request.FieldErrors(err))
		return
	}

	b, err := h.service.Get(c.Request.Context(), uri.ID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", request.FieldErrors(err))
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

func (h *Handler) Decline(c *gin.Context) {
	h.decide(c, h.service.Decline)
}

type decision func(ctx context.Context, id string, actor booking.Actor, notes string) (*booking.Booking, error)

func (h *Handler) decide(c *gin.Context, apply decision) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", request.FieldErrors(err))
		return
	}

	var req DecisionRequest
	// An empty body means no notes.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body", request.FieldErrors(err))
			return
		}
	}

	b, err := apply(c.Request.Context(), uri.ID, actorFrom(c), req.AdminNotes)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability shows which windows of a resource are taken on a given day.
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid resource id", request.FieldErrors(err))
		return
	}
	var q AvailabilityRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "date is required in YYYY-MM-DD format", request.FieldErrors(err))
		return
	}

	bookings, err := h.service.Availability(c.Request.Context(), uri.ID, q.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	slots := make([]SlotResponse, len(bookings))
	for i, b := range bookings {
		slots[i] = SlotResponse{
			BookingID: b.ID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Status:    string(b.Status),
			Purpose:   b.Purpose,
		}
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		ResourceID: uri.ID,
		Date:       q.Date.Format("2006-01-02"),
		Bookings:   slots,
	})
}

func (h *Handler) Stats(c *gin.Context) {
	s, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{
		TotalResources:     s.TotalResources,
		AvailableResources: s.AvailableResources,
		TotalBookings:      s.TotalBookings,
		PendingBookings:    s.PendingBookings,
		TotalUsers:         s.TotalUsers,
		TodayBookings:      s.TodayBookings,
	})
}
