package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	FriendlyName string `gorm:"type:varchar(50)" json:"friendly_name"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	SKU         string          `gorm:"type:varchar(32);index" json:"sku"`
	Name        string          `gorm:"type:varchar(254);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Details     string          `gorm:"type:text" json:"details,omitempty"` // category-specific attributes, JSON
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Rating      *float64        `gorm:"type:decimal(3,1)" json:"rating,omitempty"`
	ImageURL    string          `gorm:"type:varchar(1024)" json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
