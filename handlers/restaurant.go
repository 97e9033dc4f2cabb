package handlers

import (
	"net/http"

	"booktable-api/services"

	"github.com/gin-gonic/gin"
)

type CreateRestaurantRequest struct {
	Name         string `json:"name" binding:"required"`
	Cuisine      string `json:"cuisine" binding:"required"`
	CostRating   int    `json:"cost_rating" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	ZipCode      string `json:"zip_code" binding:"required"`
	Address      string `json:"address"`
	Description  string `json:"description"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	HoursOpen    string `json:"hours_open"`
	HoursClose   string `json:"hours_close"`
}

type UpdateRestaurantRequest struct {
	Name         *string `json:"name"`
	Cuisine      *string `json:"cuisine"`
	CostRating   *int    `json:"cost_rating"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	ZipCode      *string `json:"zip_code"`
	Address      *string `json:"address"`
	Description  *string `json:"description"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	HoursOpen    *string `json:"hours_open"`
	HoursClose   *string `json:"hours_close"`
}

type TableRequest struct {
	Size           int      `json:"size" binding:"required"`
	AvailableTimes []string `json:"available_times" binding:"required"`
}

type UpdateTableRequest struct {
	Size           *int     `json:"size"`
	AvailableTimes []string `json:"available_times"`
}

type PhotoRequest struct {
	PhotoURL    string `json:"photo_url" binding:"required"`
	Description string `json:"description"`
}

// CreateRestaurant registers a restaurant for the manager; it stays hidden
// until an admin approves it
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.Restaurants.Create(c.Request.Context(), caller(c), services.RestaurantInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Restaurant submitted for approval",
		"restaurant_id": r.ID,
		"restaurant":    r,
	})
}

// GetMyRestaurants returns the manager's restaurants with approval status
func (h *Handler) GetMyRestaurants(c *gin.Context) {
	list, err := h.svc.Restaurants.ListOwned(c.Request.Context(), caller(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "restaurants": list})
}

// UpdateRestaurant changes descriptive fields of an owned restaurant
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := h.svc.Restaurants.Update(c.Request.Context(), caller(c), id, services.RestaurantUpdate(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated", "restaurant": r})
}

// AddTable adds a bookable table to an owned restaurant
func (h *Handler) AddTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.svc.Restaurants.AddTable(c.Request.Context(), caller(c), id, services.TableInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Table added", "table": t})
}

// UpdateTable changes the size or slots of a table
func (h *Handler) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.svc.Restaurants.UpdateTable(c.Request.Context(), caller(c), id, services.TableUpdate(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table updated", "table": t})
}

// AddPhoto attaches a photo URL to an owned restaurant
func (h *Handler) AddPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req PhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.svc.Restaurants.AddPhoto(c.Request.Context(), caller(c), id, services.PhotoInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Photo added", "photo": p})
}

// GetRestaurantReservations lists bookings for an owned restaurant
func (h *Handler) GetRestaurantReservations(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Restaurants.Reservations(c.Request.Context(), caller(c), id, c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "reservations": list})
}
