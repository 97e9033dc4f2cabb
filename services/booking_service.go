package services

import (
	"context"
	"fmt"
	"log/slog"

	"booktable-api/apperr"
	"booktable-api/booking"
	"booktable-api/events"
	"booktable-api/models"
	"booktable-api/notify"

	"gorm.io/gorm"
)

// BookingService is the only writer of reservations and of
// restaurants.total_bookings.
type BookingService struct {
	deps *Deps
}

type BookRequest struct {
	RestaurantID uint
	TableID      uint
	Date         string
	Time         string
	PartySize    int
}

// Book validates the request against the table's nominal slots and the
// ledger and inserts the reservation. Checks run in a fixed order and the
// first failure wins.
func (s *BookingService) Book(ctx context.Context, caller Caller, req BookRequest) (*models.Reservation, error) {
	if caller.Role != models.RoleCustomer {
		return nil, apperr.Forbidden("only customers can book tables")
	}
	if _, err := booking.ParseDate(req.Date); err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}
	start, err := booking.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, apperr.Validation("time must be HH:MM")
	}
	if req.PartySize < 1 {
		return nil, apperr.Validation("number_of_people must be at least 1")
	}

	var (
		res        models.Reservation
		restaurant models.Restaurant
	)
	err = s.deps.inTx(ctx, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&restaurant, req.RestaurantID).Error; err != nil {
			return notFoundOr(err, "restaurant not found")
		}
		if err := requireApproved(tx, restaurant.ID); err != nil {
			return err
		}

		var table models.Table
		if err := tx.Where("id = ? AND restaurant_id = ?", req.TableID, restaurant.ID).First(&table).Error; err != nil {
			return notFoundOr(err, "table not found for this restaurant")
		}
		if !booking.Offers(booking.NominalSlots(table.Times), start) {
			return apperr.InvalidSlot(fmt.Sprintf("%s is not offered for this table", start))
		}
		if req.PartySize > table.Size {
			return apperr.Validation(fmt.Sprintf("table seats %d, party of %d requested", table.Size, req.PartySize))
		}

		booked, err := bookedStarts(tx, table.ID, req.Date)
		if err != nil {
			return err
		}
		if booking.HasConflict(booked, start) {
			return apperr.Conflict("this table is already reserved within the selected time window")
		}

		res = models.Reservation{
			UserID:       caller.UserID,
			RestaurantID: restaurant.ID,
			TableID:      table.ID,
			Date:         req.Date,
			Time:         start.String(),
			PartySize:    req.PartySize,
		}
		if err := tx.Create(&res).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("this table is already reserved within the selected time window")
			}
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		return tx.Model(&models.Restaurant{}).Where("id = ?", restaurant.ID).
			UpdateColumn("total_bookings", gorm.Expr("total_bookings + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	s.deps.logger().Info("reservation created",
		slog.Uint64("reservation_id", uint64(res.ID)),
		slog.Uint64("restaurant_id", uint64(res.RestaurantID)),
		slog.Uint64("table_id", uint64(res.TableID)),
		slog.String("date", res.Date), slog.String("time", res.Time))

	s.afterBooking(ctx, events.ReservationCreated, &res, &restaurant)
	res.Restaurant = &restaurant
	return &res, nil
}

// Cancel deletes a reservation owned by the caller. The booking counter is
// decremented, never below zero, only when the reservation had not passed.
func (s *BookingService) Cancel(ctx context.Context, caller Caller, reservationID uint) error {
	if caller.Role != models.RoleCustomer {
		return apperr.Forbidden("only customers can cancel bookings")
	}

	var (
		res        models.Reservation
		restaurant models.Restaurant
	)
	today := s.deps.today()
	err := s.deps.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&res, reservationID).Error; err != nil {
			return notFoundOr(err, "reservation not found")
		}
		if res.UserID != caller.UserID {
			return apperr.Forbidden("you can only cancel your own reservations")
		}
		if err := forUpdate(tx).First(&restaurant, res.RestaurantID).Error; err != nil {
			return notFoundOr(err, "restaurant not found")
		}

		del := tx.Delete(&models.Reservation{}, res.ID)
		if del.Error != nil {
			return fmt.Errorf("failed to delete reservation: %w", del.Error)
		}
		if del.RowsAffected == 0 {
			return apperr.NotFound("reservation not found")
		}
		if res.Date < today {
			return nil
		}
		return tx.Model(&models.Restaurant{}).Where("id = ?", res.RestaurantID).
			UpdateColumn("total_bookings", gorm.Expr("CASE WHEN total_bookings > 0 THEN total_bookings - 1 ELSE 0 END")).Error
	})
	if err != nil {
		return err
	}

	s.deps.logger().Info("reservation cancelled",
		slog.Uint64("reservation_id", uint64(res.ID)),
		slog.Uint64("restaurant_id", uint64(res.RestaurantID)))

	s.afterBooking(ctx, events.ReservationCancelled, &res, &restaurant)
	return nil
}

func (s *BookingService) afterBooking(ctx context.Context, t events.Type, res *models.Reservation, restaurant *models.Restaurant) {
	s.deps.invalidate(ctx, res.RestaurantID)

	ev := events.New(t, res.RestaurantID)
	ev.ReservationID = res.ID
	ev.TableID = res.TableID
	ev.UserID = res.UserID
	ev.Date = res.Date
	ev.Time = res.Time
	ev.PartySize = res.PartySize
	s.deps.publish(ctx, ev)

	var user models.User
	if err := s.deps.DB.WithContext(ctx).First(&user, res.UserID).Error; err != nil {
		s.deps.logger().Warn("notification skipped, user lookup failed", slog.Any("error", err))
		return
	}
	details := bookingDetails(res, restaurant)
	switch t {
	case events.ReservationCreated:
		s.deps.notify(notify.BookingConfirmation(user.Email, user.FullName, user.Phone, details))
	case events.ReservationCancelled:
		s.deps.notify(notify.BookingCancellation(user.Email, user.FullName, user.Phone, details))
	}
}

// ReservationView is a reservation as its owner sees it.
type ReservationView struct {
	ReservationID uint   `json:"reservation_id"`
	RestaurantID  uint   `json:"restaurant_id"`
	Restaurant    string `json:"restaurant"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	TableID       uint   `json:"table_id"`
	PartySize     int    `json:"number_of_people"`
}

func (s *BookingService) MyReservations(ctx context.Context, caller Caller) ([]ReservationView, error) {
	var rows []models.Reservation
	err := s.deps.DB.WithContext(ctx).Preload("Restaurant").
		Where("user_id = ?", caller.UserID).
		Order("date desc, time desc").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to load reservations", err)
	}
	out := make([]ReservationView, 0, len(rows))
	for _, r := range rows {
		v := ReservationView{
			ReservationID: r.ID,
			RestaurantID:  r.RestaurantID,
			Date:          r.Date,
			Time:          r.Time,
			TableID:       r.TableID,
			PartySize:     r.PartySize,
		}
		if r.Restaurant != nil {
			v.Restaurant = r.Restaurant.Name
		}
		out = append(out, v)
	}
	return out, nil
}

// Reservation returns one reservation owned by the caller.
func (s *BookingService) Reservation(ctx context.Context, caller Caller, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := s.deps.DB.WithContext(ctx).Preload("Restaurant").First(&res, id).Error; err != nil {
		return nil, notFoundOr(err, "reservation not found")
	}
	if res.UserID != caller.UserID {
		return nil, apperr.Forbidden("this reservation does not belong to you")
	}
	return &res, nil
}

func bookedStarts(tx *gorm.DB, tableID uint, date string) ([]booking.TimeOfDay, error) {
	var times []string
	err := tx.Model(&models.Reservation{}).
		Where("table_id = ? AND date = ?", tableID, date).
		Pluck("time", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	out := make([]booking.TimeOfDay, 0, len(times))
	for _, raw := range times {
		t, err := booking.ParseTimeOfDay(raw)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// requireApproved hides restaurants that are not approved behind NotFound.
func requireApproved(tx *gorm.DB, restaurantID uint) error {
	var approval models.Approval
	err := tx.Where("restaurant_id = ?", restaurantID).First(&approval).Error
	if err != nil {
		return notFoundOr(err, "restaurant not found")
	}
	if approval.Status != models.ApprovalApproved {
		return apperr.NotFound("restaurant not found")
	}
	return nil
}

func bookingDetails(res *models.Reservation, r *models.Restaurant) notify.BookingDetails {
	d := notify.BookingDetails{
		ReservationID: res.ID,
		Date:          res.Date,
		Time:          res.Time,
		People:        res.PartySize,
	}
	if r != nil {
		d.RestaurantName = r.Name
		d.Address = r.Address
		d.Contact = r.ContactPhone
	}
	return d
}
