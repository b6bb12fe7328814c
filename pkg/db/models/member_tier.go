package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberTier is a loyalty level unlocked by cumulative earned points.
type MemberTier struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	MinPoints  int64           `gorm:"column:min_points;not null"`
	Multiplier decimal.Decimal `gorm:"column:multiplier;type:numeric(6,2);not null;default:1"`
	Discounts  []Discount      `gorm:"many2many:member_tier_discounts"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
