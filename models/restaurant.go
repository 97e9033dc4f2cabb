package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Restaurant struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OwnerID       *uint     `json:"owner_id" gorm:"index"`
	Owner         *User     `json:"-" gorm:"foreignKey:OwnerID"`
	Name          string    `json:"name" gorm:"not null"`
	Cuisine       string    `json:"cuisine" gorm:"not null"`
	CostRating    int       `json:"cost_rating"`
	City          string    `json:"city" gorm:"not null"`
	State         string    `json:"state" gorm:"not null"`
	ZipCode       string    `json:"zip_code" gorm:"not null"`
	Address       string    `json:"address"`
	Description   string    `json:"description"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone"`
	HoursOpen     string    `json:"hours_open"`
	HoursClose    string    `json:"hours_close"`
	Rating        float64   `json:"rating" gorm:"default:0"`
	TotalBookings int       `json:"total_bookings" gorm:"default:0"`
	Tables        []Table   `json:"tables,omitempty" gorm:"foreignKey:RestaurantID"`
	Photos        []Photo   `json:"photos,omitempty" gorm:"foreignKey:RestaurantID"`
	Approval      *Approval `json:"approval,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Table is a bookable table. AvailableTimes is the stored comma separated
// list of HH:MM tokens; Times mirrors it as a list for API output.
type Table struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RestaurantID   uint      `json:"restaurant_id" gorm:"not null;index"`
	Size           int       `json:"size" gorm:"not null"`
	AvailableTimes string    `json:"-"`
	Times          []string  `json:"available_times" gorm:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (t *Table) AfterFind(tx *gorm.DB) error {
	t.Times = SplitTimes(t.AvailableTimes)
	return nil
}

type Photo struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	PhotoURL     string    `json:"photo_url" gorm:"not null"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// SplitTimes turns the stored representation into its tokens, trimmed,
// empty tokens dropped. Tokens are not validated here.
func SplitTimes(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// JoinTimes is the inverse of SplitTimes.
func JoinTimes(times []string) string {
	return strings.Join(times, ",")
}
