package models

import "time"

// ApprovalStatus gates public visibility of a restaurant
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type Approval struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	RestaurantID uint           `json:"restaurant_id" gorm:"not null;uniqueIndex"`
	Status       ApprovalStatus `json:"status" gorm:"not null;default:'pending';index"`
	AdminNotes   string         `json:"admin_notes"`
	ReviewedBy   *uint          `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
