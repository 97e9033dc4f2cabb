package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"booktable-api/apperr"
	"booktable-api/events"
	"booktable-api/models"

	"gorm.io/gorm"
)

// ReviewService is the only writer of restaurants.rating.
type ReviewService struct {
	deps *Deps
}

// AddReview stores the caller's single review of a restaurant and
// recomputes the restaurant rating from every stored review.
func (s *ReviewService) AddReview(ctx context.Context, caller Caller, restaurantID uint, rating int, comment string) (*models.Review, error) {
	if caller.Role != models.RoleCustomer {
		return nil, apperr.Forbidden("only customers can add reviews")
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	var (
		review models.Review
		avg    float64
	)
	err := s.deps.inTx(ctx, func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := forUpdate(tx).First(&restaurant, restaurantID).Error; err != nil {
			return notFoundOr(err, "restaurant not found")
		}
		if err := requireApproved(tx, restaurant.ID); err != nil {
			return err
		}

		var existing models.Review
		err := tx.Where("user_id = ? AND restaurant_id = ?", caller.UserID, restaurant.ID).First(&existing).Error
		if err == nil {
			return apperr.DuplicateReview("you have already reviewed this restaurant")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing review: %w", err)
		}

		review = models.Review{
			UserID:       caller.UserID,
			RestaurantID: restaurant.ID,
			Rating:       rating,
			Comment:      comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.DuplicateReview("you have already reviewed this restaurant")
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		var ratings []int
		if err := tx.Model(&models.Review{}).Where("restaurant_id = ?", restaurant.ID).Pluck("rating", &ratings).Error; err != nil {
			return fmt.Errorf("failed to load ratings: %w", err)
		}
		avg = MeanRating(ratings)
		return tx.Model(&models.Restaurant{}).Where("id = ?", restaurant.ID).UpdateColumn("rating", avg).Error
	})
	if err != nil {
		return nil, err
	}

	ev := events.New(events.ReviewAdded, restaurantID)
	ev.UserID = caller.UserID
	ev.Rating = avg
	s.deps.publish(ctx, ev)
	return &review, nil
}

// MeanRating is round(mean(ratings), 1), or 0 with no ratings. The sum is
// taken over integers so the result does not depend on order.
func MeanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

type ReviewView struct {
	ReviewID uint   `json:"review_id"`
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func (s *ReviewService) ListReviews(ctx context.Context, restaurantID uint) ([]ReviewView, error) {
	db := s.deps.DB.WithContext(ctx)
	if err := requireApproved(db, restaurantID); err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := db.Preload("User").Where("restaurant_id = ?", restaurantID).Order("id").Find(&reviews).Error; err != nil {
		return nil, apperr.Internal("failed to load reviews", err)
	}
	out := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		v := ReviewView{ReviewID: r.ID, Rating: r.Rating, Comment: r.Comment}
		if r.User != nil {
			v.UserName = r.User.FullName
		}
		out = append(out, v)
	}
	return out, nil
}
