package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionItem snapshots one sold line. Cost and price are captured at
// sale time so history stays accurate when the catalog changes.
type TransactionItem struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID     uuid.UUID  `gorm:"column:transaction_id;type:uuid;not null;index"`
	ProductID         uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	BatchID           uuid.UUID  `gorm:"column:batch_id;type:uuid;not null"`
	UnitID            uuid.UUID  `gorm:"column:unit_id;type:uuid;not null"`
	Quantity          int        `gorm:"column:quantity;not null"`
	CostCents         int64      `gorm:"column:cost_cents;not null"`
	PricePerUnitCents int64      `gorm:"column:price_per_unit_cents;not null"`
	DiscountID        *uuid.UUID `gorm:"column:discount_id;type:uuid"`
	DiscountCents     int64      `gorm:"column:discount_cents;not null;default:0"`
	SubtotalCents     int64      `gorm:"column:subtotal_cents;not null"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
}
