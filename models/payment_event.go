package models

import "time"

// PaymentEvent records a processed gateway webhook event. The unique EventID
// column is what makes duplicate delivery a no-op.
type PaymentEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"eventId"`
	OrderID     uint      `gorm:"index" json:"orderId"`
	ProcessedAt time.Time `gorm:"not null" json:"processedAt"`
}
