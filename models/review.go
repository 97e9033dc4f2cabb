package models

import "time"

type Review struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_author"`
	User         *User     `json:"-" gorm:"foreignKey:UserID"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_review_author;index"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}
