package services

import (
	"context"

	"booktable-api/apperr"
	"booktable-api/models"

	"gorm.io/gorm"
)

type AnalyticsService struct {
	deps *Deps
}

type DateCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type RestaurantCount struct {
	Restaurant string `json:"restaurant"`
	Count      int64  `json:"count"`
}

type ReservationAnalytics struct {
	Timeframe              string            `json:"timeframe"`
	StartDate              string            `json:"start_date"`
	EndDate                string            `json:"end_date"`
	TotalReservations      int64             `json:"total_reservations"`
	DailyTrend             []DateCount       `json:"daily_trend"`
	HourlyDistribution     []LabelCount      `json:"hourly_distribution"`
	RestaurantDistribution []RestaurantCount `json:"restaurant_distribution"`
}

var timeframes = map[string]int{
	"week":  7,
	"month": 30,
}

// Reservations summarises bookings dated in the window ending today.
func (s *AnalyticsService) Reservations(ctx context.Context, caller Caller, timeframe string) (*ReservationAnalytics, error) {
	if caller.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("only admins can access analytics")
	}
	if timeframe == "" {
		timeframe = "month"
	}
	days, ok := timeframes[timeframe]
	if !ok {
		return nil, apperr.Validation("timeframe must be 'week' or 'month'")
	}

	now := s.deps.now()
	end := now.Format("2006-01-02")
	start := now.AddDate(0, 0, -days).Format("2006-01-02")
	out := &ReservationAnalytics{
		Timeframe:              timeframe,
		StartDate:              start,
		EndDate:                end,
		DailyTrend:             []DateCount{},
		HourlyDistribution:     []LabelCount{},
		RestaurantDistribution: []RestaurantCount{},
	}

	db := s.deps.DB.WithContext(ctx)
	base := func() *gorm.DB {
		return db.Model(&models.Reservation{}).Where("reservations.date BETWEEN ? AND ?", start, end)
	}
	if err := base().Count(&out.TotalReservations).Error; err != nil {
		return nil, apperr.Internal("failed to count reservations", err)
	}
	if err := base().Select("reservations.date AS date, COUNT(*) AS count").
		Group("reservations.date").Order("reservations.date").Scan(&out.DailyTrend).Error; err != nil {
		return nil, apperr.Internal("failed to build daily trend", err)
	}
	if err := base().Select("reservations.time AS label, COUNT(*) AS count").
		Group("reservations.time").Order("reservations.time").Scan(&out.HourlyDistribution).Error; err != nil {
		return nil, apperr.Internal("failed to build hourly distribution", err)
	}
	if err := base().
		Joins("JOIN restaurants ON restaurants.id = reservations.restaurant_id").
		Select("restaurants.name AS restaurant, COUNT(*) AS count").
		Group("restaurants.id, restaurants.name").
		Order("count DESC, restaurants.name").
		Limit(5).
		Scan(&out.RestaurantDistribution).Error; err != nil {
		return nil, apperr.Internal("failed to rank restaurants", err)
	}
	return out, nil
}

func (s *AnalyticsService) ListUsers(ctx context.Context, caller Caller, role models.UserRole) ([]models.User, error) {
	if caller.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("only admins can list users")
	}
	q := s.deps.DB.WithContext(ctx).Order("id")
	if role != "" {
		if !role.Valid() {
			return nil, apperr.Validation("unknown role")
		}
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	return users, nil
}
