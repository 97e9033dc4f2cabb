package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"booktable-api/apperr"
	"booktable-api/events"
	"booktable-api/models"
	"booktable-api/statemachine"

	"gorm.io/gorm"
)

type ApprovalService struct {
	deps *Deps
}

type PendingApproval struct {
	ApprovalID     uint                  `json:"approval_id"`
	RestaurantID   uint                  `json:"restaurant_id"`
	RestaurantName string                `json:"restaurant_name"`
	Status         models.ApprovalStatus `json:"status"`
	City           string                `json:"city"`
	State          string                `json:"state"`
	ZipCode        string                `json:"zip_code"`
	Cuisine        string                `json:"cuisine"`
	CostRating     int                   `json:"cost_rating"`
}

func (s *ApprovalService) Pending(ctx context.Context) ([]PendingApproval, error) {
	db := s.deps.DB.WithContext(ctx)
	var approvals []models.Approval
	if err := db.Where("status = ?", models.ApprovalPending).Order("id").Find(&approvals).Error; err != nil {
		return nil, apperr.Internal("failed to load approvals", err)
	}
	if len(approvals) == 0 {
		return []PendingApproval{}, nil
	}

	ids := make([]uint, len(approvals))
	for i, a := range approvals {
		ids[i] = a.RestaurantID
	}
	var restaurants []models.Restaurant
	if err := db.Where("id IN ?", ids).Find(&restaurants).Error; err != nil {
		return nil, apperr.Internal("failed to load restaurants", err)
	}
	byID := make(map[uint]models.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID] = r
	}

	out := make([]PendingApproval, 0, len(approvals))
	for _, a := range approvals {
		r := byID[a.RestaurantID]
		out = append(out, PendingApproval{
			ApprovalID:     a.ID,
			RestaurantID:   a.RestaurantID,
			RestaurantName: r.Name,
			Status:         a.Status,
			City:           r.City,
			State:          r.State,
			ZipCode:        r.ZipCode,
			Cuisine:        r.Cuisine,
			CostRating:     r.CostRating,
		})
	}
	return out, nil
}

// Decide moves a pending approval to approved or rejected. A decision on an
// approval that is no longer pending fails with InvalidState; the update is
// conditional on the pending status so concurrent decisions cannot both win.
func (s *ApprovalService) Decide(ctx context.Context, caller Caller, approvalID uint, to models.ApprovalStatus, notes string) (*models.Approval, error) {
	if caller.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("only admins can update approval status")
	}
	if to != models.ApprovalApproved && to != models.ApprovalRejected {
		return nil, apperr.Validation("status must be approved or rejected")
	}

	var approval models.Approval
	err := s.deps.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&approval, approvalID).Error; err != nil {
			return notFoundOr(err, "approval record not found")
		}
		if err := statemachine.CanTransition(approval.Status, to, caller.Role); err != nil {
			if errors.Is(err, statemachine.ErrTerminal) {
				return apperr.InvalidState(fmt.Sprintf("this restaurant has already been %s", approval.Status))
			}
			return apperr.Validation(err.Error())
		}

		now := s.deps.now()
		result := tx.Model(&models.Approval{}).
			Where("id = ? AND status = ?", approval.ID, approval.Status).
			Updates(map[string]any{
				"status":      to,
				"admin_notes": notes,
				"reviewed_by": caller.UserID,
				"reviewed_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update approval: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.InvalidState("this restaurant has already been decided")
		}
		return tx.First(&approval, approval.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.deps.logger().Info("approval decided",
		slog.Uint64("approval_id", uint64(approval.ID)),
		slog.Uint64("restaurant_id", uint64(approval.RestaurantID)),
		slog.String("status", string(approval.Status)))

	s.deps.invalidate(ctx, approval.RestaurantID)
	ev := events.New(events.ApprovalDecided, approval.RestaurantID)
	ev.Status = string(approval.Status)
	ev.UserID = caller.UserID
	s.deps.publish(ctx, ev)
	return &approval, nil
}
