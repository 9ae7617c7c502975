package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a finalized purchase. Money columns are computed server-side at
// materialization time and never accepted from client input. OriginalBag
// keeps the serialized bag snapshot the order was built from.
type Order struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber   string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	UserProfileID *string         `gorm:"type:varchar(36);index" json:"user_profile_id,omitempty"`
	FullName      string          `gorm:"type:varchar(50);not null" json:"full_name"`
	Email         string          `gorm:"type:varchar(254);not null" json:"email"`
	PhoneNumber   string          `gorm:"type:varchar(20);not null" json:"phone_number"`
	Country       string          `gorm:"type:varchar(40);not null" json:"country"`
	Postcode      string          `gorm:"type:varchar(20);not null" json:"postcode"`
	TownOrCity    string          `gorm:"type:varchar(40);not null" json:"town_or_city"`
	StreetAddress1 string         `gorm:"type:varchar(80);not null" json:"street_address1"`
	StreetAddress2 string         `gorm:"type:varchar(80)" json:"street_address2"`
	County        string          `gorm:"type:varchar(80)" json:"county"`
	ItemTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"item_total"`
	DeliveryCost  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"delivery_cost"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"grand_total"`
	StripePID     string          `gorm:"type:varchar(254);index" json:"stripe_pid"`
	OriginalBag   string          `gorm:"type:text" json:"original_bag"`
	LineItems     []OrderLineItem `gorm:"constraint:OnDelete:CASCADE" json:"line_items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// BeforeCreate fills the row id and the public order number. The order number
// is the handle shared with the customer, distinct from the primary key.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = strings.ToUpper(shortuuid.New())
	}
	return nil
}

type OrderLineItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID string          `gorm:"type:varchar(36);not null" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderLineItem) TableName() string {
	return "order_line_items"
}
