package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductBatch is a received inventory lot with its own cost and expiry.
// Stock is depleted from the earliest-expiring batch first.
type ProductBatch struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	BatchCode     string     `gorm:"column:batch_code;not null"`
	BuyPriceCents int64      `gorm:"column:buy_price_cents;not null"`
	RemainingQty  int        `gorm:"column:remaining_qty;not null;default:0"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
