package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile mirrors an externally-authenticated user. The storefront never
// authenticates anyone itself; it only links orders, addresses and saved
// products to the user id handed in by the edge.
type UserProfile struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"user_id"`
	Email     string         `gorm:"type:varchar(254)" json:"email"`
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	Addresses []Address      `json:"addresses,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

type Address struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserProfileID  string    `gorm:"type:varchar(36);not null;index" json:"user_profile_id"`
	StreetAddress1 string    `gorm:"type:varchar(80);not null" json:"street_address1"`
	StreetAddress2 string    `gorm:"type:varchar(80)" json:"street_address2"`
	TownOrCity     string    `gorm:"type:varchar(40);not null" json:"town_or_city"`
	County         string    `gorm:"type:varchar(80)" json:"county"`
	Postcode       string    `gorm:"type:varchar(20);not null" json:"postcode"`
	Country        string    `gorm:"type:varchar(40);not null" json:"country"`
	Default        bool      `gorm:"column:is_default;index" json:"default"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}

type SavedProduct struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserProfileID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_profile_product" json:"user_profile_id"`
	ProductID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_profile_product" json:"product_id"`
	Product       *Product  `json:"product,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (SavedProduct) TableName() string {
	return "saved_products"
}
