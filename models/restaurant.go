package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a set of tags as a JSON-encoded text column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

type Restaurant struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"index;not null" json:"userId"`
	User                  User       `gorm:"foreignKey:UserID" json:"-"`
	RestaurantName        string     `gorm:"type:varchar(255);not null" json:"restaurantName"`
	City                  string     `gorm:"type:varchar(255);not null" json:"city"`
	Country               string     `gorm:"type:varchar(255);not null" json:"country"`
	DeliveryPrice         int64      `gorm:"not null" json:"deliveryPrice"`
	EstimatedDeliveryTime int        `gorm:"not null" json:"estimatedDeliveryTime"`
	Cuisines              StringList `gorm:"type:text" json:"cuisines"`
	MenuItems             []MenuItem `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"menuItems"`
	ImageURL              string     `gorm:"type:varchar(512)" json:"imageUrl"`
	LastUpdated           time.Time  `gorm:"not null" json:"lastUpdated"`
}

// MenuItem prices are in minor currency units.
type MenuItem struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RestaurantID uint   `gorm:"index;not null" json:"-"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Price        int64  `gorm:"not null" json:"price"`
}

// FindMenuItem looks an item up within the restaurant's current menu.
func (r *Restaurant) FindMenuItem(id uint) (*MenuItem, bool) {
	for i := range r.MenuItems {
		if r.MenuItems[i].ID == id {
			return &r.MenuItems[i], true
		}
	}
	return nil, false
}
