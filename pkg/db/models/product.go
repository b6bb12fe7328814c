package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a sellable catalog item.
type Product struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU        string         `gorm:"column:sku;not null;uniqueIndex"`
	Name       string         `gorm:"column:name;not null"`
	UnitID     uuid.UUID      `gorm:"column:unit_id;type:uuid;not null"`
	PriceCents int64          `gorm:"column:price_cents;not null"`
	StockQty   int            `gorm:"column:stock_qty;not null;default:0"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	Tags       pq.StringArray `gorm:"column:tags;type:text[]"`
	Batches    []ProductBatch `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Discounts  []Discount     `gorm:"many2many:product_discounts"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
