package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
)

// Discount is a promotion attached to a product, member, tier, or redeemable
// globally by code. Value is a percent for percentage discounts and a
// minor-unit amount for fixed discounts.
type Discount struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string              `gorm:"column:name;not null"`
	Code             *string             `gorm:"column:code;uniqueIndex"`
	Scope            enums.DiscountScope `gorm:"column:scope;type:text;not null"`
	Type             enums.DiscountType  `gorm:"column:type;type:text;not null"`
	Value            decimal.Decimal     `gorm:"column:value;type:numeric(12,2);not null"`
	IsActive         bool                `gorm:"column:is_active;not null;default:true"`
	StartsAt         time.Time           `gorm:"column:starts_at;not null"`
	EndsAt           time.Time           `gorm:"column:ends_at;not null"`
	MaxUses          *int                `gorm:"column:max_uses"`
	UsedCount        int                 `gorm:"column:used_count;not null;default:0"`
	MinPurchaseCents *int64              `gorm:"column:min_purchase_cents"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
