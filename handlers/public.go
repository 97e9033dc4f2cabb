package handlers

import (
	"net/http"
	"sort"

	"booktable-api/services"
	"booktable-api/statemachine"

	"github.com/gin-gonic/gin"
)

type SearchQuery struct {
	City    string `form:"city"`
	State   string `form:"state"`
	ZipCode string `form:"zip_code"`
	Cuisine string `form:"cuisine"`
}

type AvailabilityQuery struct {
	Date   string `form:"date" binding:"required"`
	Time   string `form:"time" binding:"required"`
	People int    `form:"people" binding:"required"`
	SearchQuery
}

// SearchRestaurants lists approved restaurants matching the filters (public)
func (h *Handler) SearchRestaurants(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.svc.Search.SearchRestaurants(c.Request.Context(), services.RestaurantFilter{
		City: q.City, State: q.State, ZipCode: q.ZipCode, Cuisine: q.Cuisine,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "restaurants": list})
}

// SearchAvailability returns nominal slots near the requested time (public)
func (h *Handler) SearchAvailability(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	slots, err := h.svc.Search.FindSlots(c.Request.Context(), services.AvailabilityQuery{
		Date:   q.Date,
		Time:   q.Time,
		People: q.People,
		RestaurantFilter: services.RestaurantFilter{
			City: q.City, State: q.State, ZipCode: q.ZipCode, Cuisine: q.Cuisine,
		},
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(slots), "slots": slots})
}

// GetRestaurant returns a single approved restaurant
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.svc.Restaurants.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": r, "maps_url": services.MapsURL(*r)})
}

// GetReviews lists reviews of an approved restaurant
func (h *Handler) GetReviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.svc.Reviews.ListReviews(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
}

// GetApprovalStates documents the approval state machine
func (h *Handler) GetApprovalStates(c *gin.Context) {
	transitions := statemachine.GetAllTransitions()
	info := make([]gin.H, 0, len(transitions))
	terminal := map[string]bool{}
	for _, t := range transitions {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
		if statemachine.IsTerminal(t.To) {
			terminal[string(t.To)] = true
		}
	}
	states := make([]string, 0, len(terminal))
	for s := range terminal {
		states = append(states, s)
	}
	sort.Strings(states)
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": states,
		"description":     "Restaurant listing approval lifecycle",
	})
}
