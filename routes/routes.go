package routes

import (
	"booktable-api/handlers"
	"booktable-api/middleware"
	"booktable-api/models"
	"booktable-api/realtime"

	"github.com/gin-gonic/gin"
)

// Deps are the pieces the route table needs besides the handlers.
type Deps struct {
	JWT     *middleware.JWT
	Limiter *middleware.RateLimiter
	Hub     *realtime.Hub
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, d Deps) {
	limit := func(c *gin.Context) { c.Next() }
	if d.Limiter != nil {
		limit = d.Limiter.Limit()
	}
	auth := d.JWT.AuthRequired()

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", limit, h.Register)
		public.POST("/auth/login", limit, h.Login)

		public.GET("/restaurants/search", h.SearchRestaurants)
		public.GET("/restaurants/availability", h.SearchAvailability)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/reviews", h.GetReviews)

		public.GET("/approval-states", h.GetApprovalStates)
	}

	if d.Hub != nil {
		r.GET("/ws/restaurants/:id", d.Hub.ServeWS)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(auth)
	{
		authed.GET("/profile", h.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(auth, middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/restaurants/:id/book", limit, h.BookTable)
		customer.POST("/restaurants/:id/reviews", h.AddReview)
		customer.DELETE("/reservations/:id", h.CancelReservation)
		customer.GET("/customer/reservations", h.GetMyReservations)
		customer.GET("/customer/reservations/:id/qrcode", h.GetReservationQRCode)
	}

	// ── Restaurant manager routes ──────────────────────────────────
	manager := r.Group("/api/manager")
	manager.Use(auth, middleware.RoleRequired(models.RoleManager))
	{
		manager.POST("/restaurants", h.CreateRestaurant)
		manager.GET("/restaurants", h.GetMyRestaurants)
		manager.PUT("/restaurants/:id", h.UpdateRestaurant)
		manager.POST("/restaurants/:id/tables", h.AddTable)
		manager.POST("/restaurants/:id/photos", h.AddPhoto)
		manager.GET("/restaurants/:id/reservations", h.GetRestaurantReservations)
		manager.PUT("/tables/:id", h.UpdateTable)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(auth, middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/approvals/pending", h.AdminPendingApprovals)
		admin.PUT("/approvals/:id", h.AdminDecideApproval)
		admin.DELETE("/restaurants/:id", h.AdminRemoveRestaurant)
		admin.GET("/analytics/reservations", h.AdminReservationAnalytics)
		admin.GET("/users", h.AdminGetAllUsers)
	}
}
