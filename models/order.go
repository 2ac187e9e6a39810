package models

import "time"

const (
	OrderStatusPlaced    = "placed"
	OrderStatusPaid      = "paid"
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is a member of the status enum. Any
// member is accepted on a manual update; only placed->paid is system-driven.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPlaced, OrderStatusPaid, OrderStatusPending,
		OrderStatusCompleted, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DeliveryDetails is a snapshot taken at checkout time; later profile edits
// do not touch it.
type DeliveryDetails struct {
	Email        string `gorm:"type:varchar(255);not null" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	AddressLine1 string `gorm:"type:varchar(255);not null" json:"addressLine1"`
	City         string `gorm:"type:varchar(255);not null" json:"city"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Reference       string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	RestaurantID    uint            `gorm:"index;not null" json:"restaurantId"`
	Restaurant      Restaurant      `gorm:"foreignKey:RestaurantID" json:"restaurant"`
	UserID          uint            `gorm:"index;not null" json:"userId"`
	User            User            `gorm:"foreignKey:UserID" json:"user"`
	DeliveryDetails DeliveryDetails `gorm:"embedded;embeddedPrefix:delivery_" json:"deliveryDetails"`
	CartItems       []OrderCartItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"cartItems"`
	TotalAmount     int64           `json:"totalAmount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'placed'" json:"status"`
	CreatedAt       time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderCartItem records what the customer asked for, distinct from the menu
// item it references; a later menu edit does not invalidate it.
type OrderCartItem struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	OrderID    uint   `gorm:"index;not null" json:"-"`
	MenuItemID uint   `gorm:"not null" json:"menuItemId"`
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	Quantity   int    `gorm:"not null" json:"quantity"`
}
