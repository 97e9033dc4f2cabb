package models

import "time"

// Reservation holds a confirmed booking. Date is YYYY-MM-DD and Time is
// HH:MM; the unique index on (table, date, time) backs up the overlap check.
type Reservation struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	UserID       uint        `json:"user_id" gorm:"not null;index"`
	User         *User       `json:"-" gorm:"foreignKey:UserID"`
	RestaurantID uint        `json:"restaurant_id" gorm:"not null;index"`
	Restaurant   *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	TableID      uint        `json:"table_id" gorm:"not null;uniqueIndex:idx_table_slot"`
	Date         string      `json:"date" gorm:"size:10;not null;uniqueIndex:idx_table_slot;index"`
	Time         string      `json:"time" gorm:"size:5;not null;uniqueIndex:idx_table_slot"`
	PartySize    int         `json:"number_of_people" gorm:"column:number_of_people;not null"`
	CreatedAt    time.Time   `json:"created_at"`
}
