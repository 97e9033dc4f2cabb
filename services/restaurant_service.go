package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booktable-api/apperr"
	"booktable-api/booking"
	"booktable-api/models"

	"gorm.io/gorm"
)

// RestaurantService covers listing management by managers, the public
// detail view and admin removal. It never writes rating or total_bookings.
type RestaurantService struct {
	deps *Deps
}

type RestaurantInput struct {
	Name         string `validate:"required,max=200"`
	Cuisine      string `validate:"required,max=100"`
	CostRating   int    `validate:"min=1,max=5"`
	City         string `validate:"required"`
	State        string `validate:"required"`
	ZipCode      string `validate:"required"`
	Address      string
	Description  string
	ContactEmail string `validate:"omitempty,email"`
	ContactPhone string
	HoursOpen    string `validate:"omitempty,datetime=15:04"`
	HoursClose   string `validate:"omitempty,datetime=15:04"`
}

// RestaurantUpdate carries optional descriptive changes.
type RestaurantUpdate struct {
	Name         *string `validate:"omitempty,min=1,max=200"`
	Cuisine      *string `validate:"omitempty,min=1,max=100"`
	CostRating   *int    `validate:"omitempty,min=1,max=5"`
	City         *string `validate:"omitempty,min=1"`
	State        *string `validate:"omitempty,min=1"`
	ZipCode      *string `validate:"omitempty,min=1"`
	Address      *string
	Description  *string
	ContactEmail *string `validate:"omitempty,email"`
	ContactPhone *string
	HoursOpen    *string `validate:"omitempty,datetime=15:04"`
	HoursClose   *string `validate:"omitempty,datetime=15:04"`
}

type TableInput struct {
	Size           int      `validate:"gt=0"`
	AvailableTimes []string `validate:"required,min=1"`
}

type TableUpdate struct {
	Size           *int `validate:"omitempty,gt=0"`
	AvailableTimes []string
}

type PhotoInput struct {
	PhotoURL    string `validate:"required,url"`
	Description string
}

// Create stores a restaurant owned by the caller together with its pending
// approval record.
func (s *RestaurantService) Create(ctx context.Context, caller Caller, in RestaurantInput) (*models.Restaurant, error) {
	if caller.Role != models.RoleManager {
		return nil, apperr.Forbidden("only restaurant managers can add restaurants")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	owner := caller.UserID
	r := models.Restaurant{
		OwnerID:      &owner,
		Name:         strings.TrimSpace(in.Name),
		Cuisine:      strings.TrimSpace(in.Cuisine),
		CostRating:   in.CostRating,
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		ZipCode:      strings.TrimSpace(in.ZipCode),
		Address:      in.Address,
		Description:  in.Description,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		HoursOpen:    in.HoursOpen,
		HoursClose:   in.HoursClose,
	}
	err := s.deps.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit("Approval", "Tables", "Photos").Create(&r).Error; err != nil {
			return fmt.Errorf("failed to create restaurant: %w", err)
		}
		approval := models.Approval{RestaurantID: r.ID, Status: models.ApprovalPending}
		if err := tx.Create(&approval).Error; err != nil {
			return fmt.Errorf("failed to create approval: %w", err)
		}
		r.Approval = &approval
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.logger().Info("restaurant created, awaiting approval",
		slog.Uint64("restaurant_id", uint64(r.ID)), slog.Uint64("owner_id", uint64(owner)))
	return &r, nil
}

func (s *RestaurantService) ListOwned(ctx context.Context, caller Caller) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := s.deps.DB.WithContext(ctx).
		Preload("Approval").Preload("Tables").Preload("Photos").
		Where("owner_id = ?", caller.UserID).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("failed to load restaurants", err)
	}
	return out, nil
}

// owned loads a restaurant and checks the caller manages it.
func owned(db *gorm.DB, caller Caller, restaurantID uint) (*models.Restaurant, error) {
	if caller.Role != models.RoleManager {
		return nil, apperr.Forbidden("only restaurant managers can manage restaurants")
	}
	var r models.Restaurant
	if err := db.First(&r, restaurantID).Error; err != nil {
		return nil, notFoundOr(err, "restaurant not found")
	}
	if r.OwnerID == nil || *r.OwnerID != caller.UserID {
		return nil, apperr.Forbidden("you do not manage this restaurant")
	}
	return &r, nil
}

func (s *RestaurantService) Update(ctx context.Context, caller Caller, restaurantID uint, in RestaurantUpdate) (*models.Restaurant, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	db := s.deps.DB.WithContext(ctx)
	r, err := owned(db, caller, restaurantID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	set("name", in.Name)
	set("cuisine", in.Cuisine)
	set("city", in.City)
	set("state", in.State)
	set("zip_code", in.ZipCode)
	set("address", in.Address)
	set("description", in.Description)
	set("contact_email", in.ContactEmail)
	set("contact_phone", in.ContactPhone)
	set("hours_open", in.HoursOpen)
	set("hours_close", in.HoursClose)
	if in.CostRating != nil {
		updates["cost_rating"] = *in.CostRating
	}
	if len(updates) == 0 {
		return r, nil
	}

	if err := db.Model(r).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed to update restaurant", err)
	}
	if err := db.First(r, r.ID).Error; err != nil {
		return nil, apperr.Internal("failed to reload restaurant", err)
	}
	s.deps.invalidate(ctx, r.ID)
	return r, nil
}

func normaliseTimes(times []string) ([]string, error) {
	if err := booking.ValidateSlots(times); err != nil {
		return nil, apperr.Validation("available_times: " + err.Error())
	}
	out := make([]string, 0, len(times))
	for _, t := range booking.NominalSlots(times) {
		out = append(out, t.String())
	}
	return out, nil
}

func (s *RestaurantService) AddTable(ctx context.Context, caller Caller, restaurantID uint, in TableInput) (*models.Table, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	times, err := normaliseTimes(in.AvailableTimes)
	if err != nil {
		return nil, err
	}
	db := s.deps.DB.WithContext(ctx)
	r, err := owned(db, caller, restaurantID)
	if err != nil {
		return nil, err
	}

	t := models.Table{RestaurantID: r.ID, Size: in.Size, AvailableTimes: models.JoinTimes(times)}
	if err := db.Create(&t).Error; err != nil {
		return nil, apperr.Internal("failed to create table", err)
	}
	t.Times = times
	s.deps.invalidate(ctx, r.ID)
	return &t, nil
}

func (s *RestaurantService) UpdateTable(ctx context.Context, caller Caller, tableID uint, in TableUpdate) (*models.Table, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	db := s.deps.DB.WithContext(ctx)
	var t models.Table
	if err := db.First(&t, tableID).Error; err != nil {
		return nil, notFoundOr(err, "table not found")
	}
	if _, err := owned(db, caller, t.RestaurantID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Size != nil {
		updates["size"] = *in.Size
	}
	if in.AvailableTimes != nil {
		times, err := normaliseTimes(in.AvailableTimes)
		if err != nil {
			return nil, err
		}
		updates["available_times"] = models.JoinTimes(times)
	}
	if len(updates) > 0 {
		if err := db.Model(&t).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update table", err)
		}
	}
	if err := db.First(&t, t.ID).Error; err != nil {
		return nil, apperr.Internal("failed to reload table", err)
	}
	s.deps.invalidate(ctx, t.RestaurantID)
	return &t, nil
}

func (s *RestaurantService) AddPhoto(ctx context.Context, caller Caller, restaurantID uint, in PhotoInput) (*models.Photo, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	db := s.deps.DB.WithContext(ctx)
	r, err := owned(db, caller, restaurantID)
	if err != nil {
		return nil, err
	}
	p := models.Photo{RestaurantID: r.ID, PhotoURL: in.PhotoURL, Description: in.Description}
	if err := db.Create(&p).Error; err != nil {
		return nil, apperr.Internal("failed to add photo", err)
	}
	return &p, nil
}

// GetPublic returns an approved restaurant with its tables and photos.
func (s *RestaurantService) GetPublic(ctx context.Context, restaurantID uint) (*models.Restaurant, error) {
	db := s.deps.DB.WithContext(ctx)
	if err := requireApproved(db, restaurantID); err != nil {
		return nil, err
	}
	var r models.Restaurant
	err := db.Preload("Tables", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Photos").
		First(&r, restaurantID).Error
	if err != nil {
		return nil, notFoundOr(err, "restaurant not found")
	}
	return &r, nil
}

// Reservations lists bookings at a restaurant the caller manages, optionally
// for one date.
func (s *RestaurantService) Reservations(ctx context.Context, caller Caller, restaurantID uint, date string) ([]models.Reservation, error) {
	if date != "" {
		if _, err := booking.ParseDate(date); err != nil {
			return nil, apperr.Validation("date must be YYYY-MM-DD")
		}
	}
	db := s.deps.DB.WithContext(ctx)
	if _, err := owned(db, caller, restaurantID); err != nil {
		return nil, err
	}
	q := db.Where("restaurant_id = ?", restaurantID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	var out []models.Reservation
	if err := q.Order("date, time, table_id").Find(&out).Error; err != nil {
		return nil, apperr.Internal("failed to load reservations", err)
	}
	return out, nil
}

// Remove deletes a restaurant and everything that belongs to it in one
// transaction.
func (s *RestaurantService) Remove(ctx context.Context, caller Caller, restaurantID uint) error {
	if caller.Role != models.RoleAdmin {
		return apperr.Forbidden("only admins can remove restaurants")
	}
	err := s.deps.inTx(ctx, func(tx *gorm.DB) error {
		var r models.Restaurant
		if err := forUpdate(tx).First(&r, restaurantID).Error; err != nil {
			return notFoundOr(err, "restaurant not found")
		}
		for _, m := range []any{&models.Review{}, &models.Reservation{}, &models.Table{}, &models.Photo{}, &models.Approval{}} {
			if err := tx.Where("restaurant_id = ?", r.ID).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to delete %T: %w", m, err)
			}
		}
		return tx.Delete(&models.Restaurant{}, r.ID).Error
	})
	if err != nil {
		return err
	}
	s.deps.logger().Info("restaurant removed", slog.Uint64("restaurant_id", uint64(restaurantID)))
	s.deps.invalidate(ctx, restaurantID)
	return nil
}
