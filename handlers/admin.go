package handlers

import (
	"net/http"

	"booktable-api/models"

	"github.com/gin-gonic/gin"
)

type ApprovalUpdateRequest struct {
	Status models.ApprovalStatus `json:"status" binding:"required,oneof=approved rejected"`
	Notes  string                `json:"notes"`
}

// AdminPendingApprovals lists restaurants waiting for a decision
func (h *Handler) AdminPendingApprovals(c *gin.Context) {
	list, err := h.svc.Approvals.Pending(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "approvals": list})
}

// AdminDecideApproval approves or rejects a pending restaurant
func (h *Handler) AdminDecideApproval(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ApprovalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	approval, err := h.svc.Approvals.Decide(c.Request.Context(), caller(c), id, req.Status, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Restaurant " + string(approval.Status) + " successfully",
		"approval": approval,
	})
}

// AdminRemoveRestaurant deletes a restaurant and all its data
func (h *Handler) AdminRemoveRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Restaurants.Remove(c.Request.Context(), caller(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant and all associated data removed successfully"})
}

// AdminReservationAnalytics summarises bookings for the week or month
func (h *Handler) AdminReservationAnalytics(c *gin.Context) {
	report, err := h.svc.Analytics.Reservations(c.Request.Context(), caller(c), c.DefaultQuery("timeframe", "month"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AdminGetAllUsers returns all users, optionally by role
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.svc.Analytics.ListUsers(c.Request.Context(), caller(c), models.UserRole(c.Query("role")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}
