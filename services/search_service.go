package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"booktable-api/apperr"
	"booktable-api/booking"
	"booktable-api/models"

	"gorm.io/gorm"
)

// SearchService is the read path: it lists nominal capacity and never
// consults the ledger. Booking is the authoritative check.
type SearchService struct {
	deps *Deps
}

type RestaurantFilter struct {
	City    string
	State   string
	ZipCode string
	Cuisine string
}

type AvailabilityQuery struct {
	Date   string
	Time   string
	People int
	RestaurantFilter
}

// SlotMatch is one bookable (restaurant, table, time) candidate.
type SlotMatch struct {
	RestaurantID   uint    `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	TableID        uint    `json:"table_id"`
	TableSize      int     `json:"table_size"`
	AvailableTime  string  `json:"available_time"`
	City           string  `json:"city"`
	Cuisine        string  `json:"cuisine"`
	CostRating     int     `json:"cost_rating"`
	Rating         float64 `json:"rating"`
}

// tableSlot is the cached per-restaurant part of a match.
type tableSlot struct {
	TableID uint   `json:"t"`
	Size    int    `json:"s"`
	Time    string `json:"h"`
}

// approvedRestaurants applies the Approval Gate and the optional filters.
// Text filters are case-insensitive substrings; zip code must match exactly.
func approvedRestaurants(db *gorm.DB, f RestaurantFilter) *gorm.DB {
	q := db.Model(&models.Restaurant{}).
		Joins("JOIN approvals ON approvals.restaurant_id = restaurants.id AND approvals.status = ?", models.ApprovalApproved)
	if f.City != "" {
		q = q.Where("LOWER(restaurants.city) LIKE ?", like(f.City))
	}
	if f.State != "" {
		q = q.Where("LOWER(restaurants.state) LIKE ?", like(f.State))
	}
	if f.Cuisine != "" {
		q = q.Where("LOWER(restaurants.cuisine) LIKE ?", like(f.Cuisine))
	}
	if f.ZipCode != "" {
		q = q.Where("restaurants.zip_code = ?", strings.TrimSpace(f.ZipCode))
	}
	return q.Order("restaurants.id")
}

func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// FindSlots returns every nominal slot within the tolerance window of the
// requested time on tables that seat the party. Results are ordered by
// restaurant, then table, then slot. An empty result is not an error.
func (s *SearchService) FindSlots(ctx context.Context, q AvailabilityQuery) ([]SlotMatch, error) {
	if _, err := booking.ParseDate(q.Date); err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}
	target, err := booking.ParseTimeOfDay(q.Time)
	if err != nil {
		return nil, apperr.Validation("time must be HH:MM")
	}
	if q.People < 1 {
		return nil, apperr.Validation("people must be at least 1")
	}

	db := s.deps.DB.WithContext(ctx)
	var restaurants []models.Restaurant
	if err := approvedRestaurants(db, q.RestaurantFilter).Find(&restaurants).Error; err != nil {
		return nil, apperr.Internal("failed to search restaurants", err)
	}

	cacheKey := fmt.Sprintf("%s|%d", target, q.People)
	out := []SlotMatch{}
	for i := range restaurants {
		r := &restaurants[i]
		slots, err := s.restaurantSlots(ctx, db, r.ID, cacheKey, target, q.People)
		if err != nil {
			return nil, err
		}
		for _, ts := range slots {
			out = append(out, SlotMatch{
				RestaurantID:   r.ID,
				RestaurantName: r.Name,
				TableID:        ts.TableID,
				TableSize:      ts.Size,
				AvailableTime:  ts.Time,
				City:           r.City,
				Cuisine:        r.Cuisine,
				CostRating:     r.CostRating,
				Rating:         r.Rating,
			})
		}
	}
	return out, nil
}

func (s *SearchService) restaurantSlots(ctx context.Context, db *gorm.DB, restaurantID uint, key string, target booking.TimeOfDay, people int) ([]tableSlot, error) {
	var entryKey string
	if s.deps.Cache != nil {
		k, err := s.deps.Cache.Key(ctx, restaurantID, key)
		if err != nil {
			s.deps.logger().Warn("search cache read failed", slog.Any("error", err))
		} else {
			var cached []tableSlot
			hit, err := s.deps.Cache.Get(ctx, k, &cached)
			if err != nil {
				s.deps.logger().Warn("search cache read failed", slog.Any("error", err))
			} else if hit {
				return cached, nil
			}
			entryKey = k
		}
	}

	var tables []models.Table
	err := db.Where("restaurant_id = ? AND size >= ?", restaurantID, people).Order("id").Find(&tables).Error
	if err != nil {
		return nil, apperr.Internal("failed to load tables", err)
	}

	slots := []tableSlot{}
	for _, t := range tables {
		for _, slot := range booking.MatchingSlots(booking.NominalSlots(t.Times), target) {
			slots = append(slots, tableSlot{TableID: t.ID, Size: t.Size, Time: slot.String()})
		}
	}

	if entryKey != "" {
		if err := s.deps.Cache.Set(ctx, entryKey, slots); err != nil {
			s.deps.logger().Warn("search cache write failed", slog.Any("error", err))
		}
	}
	return slots, nil
}

// RestaurantSummary is a search result row with a maps link.
type RestaurantSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Cuisine       string  `json:"cuisine"`
	CostRating    int     `json:"cost_rating"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zip_code"`
	Rating        float64 `json:"rating"`
	TotalBookings int     `json:"total_bookings"`
	MapsURL       string  `json:"maps_url"`
}

func (s *SearchService) SearchRestaurants(ctx context.Context, f RestaurantFilter) ([]RestaurantSummary, error) {
	var restaurants []models.Restaurant
	if err := approvedRestaurants(s.deps.DB.WithContext(ctx), f).Find(&restaurants).Error; err != nil {
		return nil, apperr.Internal("failed to search restaurants", err)
	}
	out := make([]RestaurantSummary, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, RestaurantSummary{
			ID:            r.ID,
			Name:          r.Name,
			Cuisine:       r.Cuisine,
			CostRating:    r.CostRating,
			City:          r.City,
			State:         r.State,
			ZipCode:       r.ZipCode,
			Rating:        r.Rating,
			TotalBookings: r.TotalBookings,
			MapsURL:       MapsURL(r),
		})
	}
	return out, nil
}

// MapsURL builds a Google Maps search link from name, zip, city and state.
func MapsURL(r models.Restaurant) string {
	query := strings.Join(strings.Fields(strings.Join([]string{r.Name, r.ZipCode, r.City, r.State}, " ")), " ")
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}
