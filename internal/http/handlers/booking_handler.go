// README: Booking handlers for the lifecycle, ratings, and receipts.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cabswift/internal/docs"
	"cabswift/internal/http/middleware"
	"cabswift/internal/modules/booking"
	"cabswift/internal/types"
)

type BookingHandler struct {
	booking *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type stopReq struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
	At      string  `json:"at"` // RFC3339
}

type passengerReq struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Seat       string `json:"seat"`
	IsChild    bool   `json:"is_child"`
	Wheelchair bool   `json:"wheelchair"`
}

type extrasReq struct {
	DriverAllowance int64 `json:"driver_allowance"`
	NightCharge     int64 `json:"night_charge"`
	TollCharge      int64 `json:"toll_charge"`
}

type createBookingReq struct {
	VehicleID     string         `json:"vehicle_id"`
	TripType      string         `json:"trip_type"`
	Pickup        stopReq        `json:"pickup"`
	Drop          stopReq        `json:"drop"`
	Passengers    []passengerReq `json:"passengers"`
	DistanceKm    float64        `json:"distance_km"`
	Extras        extrasReq      `json:"extras"`
	Discount      int64          `json:"discount"`
	PaymentMethod string         `json:"payment_method"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	riderID := c.GetString(middleware.ContextUserID)
	if riderID == "" || req.VehicleID == "" || req.TripType == "" {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}

	pickup, err := toStop(req.Pickup)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid pickup time")
		return
	}
	drop, err := toStop(req.Drop)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid drop time")
		return
	}

	passengers := make([]booking.Passenger, len(req.Passengers))
	for i, p := range req.Passengers {
		passengers[i] = booking.Passenger{
			Name: p.Name, Age: p.Age, Gender: p.Gender, Seat: p.Seat,
			IsChild: p.IsChild, Wheelchair: p.Wheelchair,
		}
	}

	id, err := h.booking.Create(c.Request.Context(), booking.CreateCommand{
		RiderID:    types.ID(riderID),
		VehicleID:  types.ID(req.VehicleID),
		TripType:   booking.TripType(req.TripType),
		Pickup:     pickup,
		Drop:       drop,
		Passengers: passengers,
		DistanceKm: req.DistanceKm,
		Extras: booking.Extras{
			DriverAllowance: req.Extras.DriverAllowance,
			NightCharge:     req.Extras.NightCharge,
			TollCharge:      req.Extras.TollCharge,
		},
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"booking_id": id, "status": booking.StatusPending})
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.booking.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, bookingResponse(b))
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.applyTransition(c, h.booking.Confirm)
}

func (h *BookingHandler) EnRoute(c *gin.Context) {
	h.applyTransition(c, h.booking.DriverEnRoute)
}

func (h *BookingHandler) Arrived(c *gin.Context) {
	h.applyTransition(c, h.booking.DriverArrived)
}

func (h *BookingHandler) Start(c *gin.Context) {
	h.applyTransition(c, h.booking.StartTrip)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.applyTransition(c, h.booking.CompleteTrip)
}

func (h *BookingHandler) applyTransition(c *gin.Context, fn func(ctx context.Context, cmd booking.TransitionCommand) error) {
	err := fn(c.Request.Context(), booking.TransitionCommand{
		BookingID: types.ID(c.Param("id")),
		ActorType: c.GetString(middleware.ContextRole),
		ActorID:   types.ID(c.GetString(middleware.ContextUserID)),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	b, err := h.booking.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": b.Status})
}

type assignReq struct {
	DriverID string `json:"driver_id"`
}

func (h *BookingHandler) Assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.booking.AssignDriver(c.Request.Context(), booking.AssignCommand{
		BookingID: types.ID(c.Param("id")),
		DriverID:  types.ID(req.DriverID),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": booking.StatusDriverAssigned})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var req cancelReq
	_ = c.ShouldBindJSON(&req)

	actor := c.GetString(middleware.ContextRole)
	if actor == "" {
		actor = "rider"
	}
	err := h.booking.Cancel(c.Request.Context(), booking.CancelCommand{
		BookingID: types.ID(c.Param("id")),
		ActorType: actor,
		ActorID:   types.ID(c.GetString(middleware.ContextUserID)),
		Reason:    req.Reason,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	b, err := h.booking.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"status":           b.Status,
		"cancellation_fee": b.Cancellation.Fee,
		"refund_amount":    b.Cancellation.Refund,
	})
}

type rateReq struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

func (h *BookingHandler) Rate(c *gin.Context) {
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	role := c.GetString(middleware.ContextRole)
	if role == "" {
		role = "rider"
	}
	err := h.booking.Rate(c.Request.Context(), booking.RateCommand{
		BookingID: types.ID(c.Param("id")),
		Role:      role,
		Stars:     req.Stars,
		Comment:   req.Comment,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"rated": true})
}

func (h *BookingHandler) Receipt(c *gin.Context) {
	b, err := h.booking.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if b.Status != booking.StatusTripCompleted && b.Status != booking.StatusCancelled {
		writeError(c, http.StatusConflict, "receipt available only for finished bookings")
		return
	}
	pdf, name, err := docs.Receipt(b)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "receipt generation failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func toStop(r stopReq) (booking.Stop, error) {
	s := booking.Stop{
		Point:   types.Point{Lat: r.Lat, Lng: r.Lng},
		Address: r.Address,
	}
	if r.At != "" {
		at, err := time.Parse(time.RFC3339, r.At)
		if err != nil {
			return booking.Stop{}, err
		}
		s.At = at
	}
	return s, nil
}

func bookingResponse(b *booking.Booking) gin.H {
	resp := gin.H{
		"booking_id": b.ID,
		"number":     b.Number,
		"status":     b.Status,
		"trip_type":  b.TripType,
		"vehicle_id": b.VehicleID,
		"driver_id":  b.DriverID,
		"pricing": gin.H{
			"base_fare":   b.Pricing.BaseFare,
			"distance_km": b.Pricing.DistanceKm,
			"per_km_rate": b.Pricing.PerKmRate,
			"subtotal":    b.Pricing.Subtotal,
			"tax":         b.Pricing.Tax,
			"discount":    b.Pricing.Discount,
			"total":       b.Pricing.Total,
			"currency":    b.Pricing.Currency,
		},
		"can_be_cancelled": booking.CanBeCancelled(b.Status),
		"is_active":        booking.IsActive(b.Status),
	}
	if b.Cancellation.IsCancelled {
		resp["cancellation"] = gin.H{
			"by":     b.Cancellation.By,
			"reason": b.Cancellation.Reason,
			"fee":    b.Cancellation.Fee,
			"refund": b.Cancellation.Refund,
		}
	}
	return resp
}
