package models

import "time"

// User is created on first login; the Auth0ID column carries the identity
// provider subject and is the only credential-ish field we ever store.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Auth0ID      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"auth0Id"`
	Email        string    `gorm:"type:varchar(255);not null" json:"email"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	AddressLine1 string    `gorm:"type:varchar(255)" json:"addressLine1"`
	City         string    `gorm:"type:varchar(255)" json:"city"`
	Country      string    `gorm:"type:varchar(255)" json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
