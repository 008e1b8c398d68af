package handlers

import (
	"net/http"
	"strings"

	"sitebackend/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func bookingFilter(c *gin.Context) models.BookingFilter {
	return models.BookingFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		From:   strings.TrimSpace(c.Query("from")),
		To:     strings.TrimSpace(c.Query("to")),
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
}

// POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b, "links": h.Bookings.Links(b.Token)})
}

// GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	f := bookingFilter(c)
	list, err := h.Bookings.List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list, "count": len(list)})
}

// GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// PATCH /api/bookings/:id
func (h *Handlers) UpdateBooking(c *gin.Context) {
	var req models.UpdateBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// DELETE /api/bookings/:id
func (h *Handlers) DeleteBooking(c *gin.Context) {
	if err := h.Bookings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
}

// POST /api/bookings/cancel
func (h *Handlers) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.CancelByToken(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled", "booking": b})
}

// POST /api/bookings/reschedule
func (h *Handlers) RescheduleBooking(c *gin.Context) {
	var req models.RescheduleBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Bookings.RescheduleByToken(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "booking rescheduled",
		"original": res.Original,
		"booking":  res.Booking,
		"links":    h.Bookings.Links(res.Booking.Token),
	})
}

// GET /api/bookings/verify-token?token=
func (h *Handlers) VerifyBookingToken(c *gin.Context) {
	b, err := h.Bookings.VerifyToken(c.Request.Context(), c.Query("token"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "booking": b})
}

// POST /api/bookings/trigger-email
func (h *Handlers) TriggerBookingEmail(c *gin.Context) {
	var req models.TriggerEmailRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.TriggerEmail(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "email request queued", "booking_id": b.ID})
}

// GET /api/bookings/export
func (h *Handlers) ExportBookings(c *gin.Context) {
	data, filename, err := h.Export.ExportBookings(c.Request.Context(), bookingFilter(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	const xlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsx, data)
}

// GET /api/bookings/:id/confirmation
func (h *Handlers) BookingConfirmationPDF(c *gin.Context) {
	data, filename, err := h.Docs.BookingConfirmation(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
