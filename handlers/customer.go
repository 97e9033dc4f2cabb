package handlers

import (
	"net/http"

	"booktable-api/services"

	"github.com/gin-gonic/gin"
)

type BookRequest struct {
	TableID   uint   `json:"table_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	PartySize int    `json:"number_of_people" binding:"required"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// BookTable reserves a table slot (customer only)
func (h *Handler) BookTable(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.svc.Booking.Book(c.Request.Context(), caller(c), services.BookRequest{
		RestaurantID: restaurantID,
		TableID:      req.TableID,
		Date:         req.Date,
		Time:         req.Time,
		PartySize:    req.PartySize,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Table booked successfully",
		"reservation_id": res.ID,
	})
}

// CancelReservation deletes one of the caller's reservations
func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Booking.Cancel(c.Request.Context(), caller(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled successfully"})
}

// GetMyReservations returns all reservations for the logged-in customer
func (h *Handler) GetMyReservations(c *gin.Context) {
	list, err := h.svc.Booking.MyReservations(c.Request.Context(), caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "reservations": list})
}

// GetReservationQRCode renders a PNG QR code for an owned reservation
func (h *Handler) GetReservationQRCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Booking.Reservation(c.Request.Context(), caller(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	png, err := services.ReservationQRCode(res)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// AddReview rates a restaurant once per customer
func (h *Handler) AddReview(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	review, err := h.svc.Reviews.AddReview(c.Request.Context(), caller(c), restaurantID, req.Rating, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added successfully", "review": review})
}
