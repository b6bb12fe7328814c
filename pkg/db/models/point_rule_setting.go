package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointRuleSettingID is the fixed primary key of the single settings row.
const PointRuleSettingID int64 = 1

// PointRuleSetting is the single-row configuration for loyalty point accrual.
type PointRuleSetting struct {
	ID              int64           `gorm:"column:id;primaryKey;default:1"`
	Enabled         bool            `gorm:"column:enabled;not null;default:true"`
	BaseAmountCents int64           `gorm:"column:base_amount_cents;not null"`
	Multiplier      decimal.Decimal `gorm:"column:multiplier;type:numeric(6,2);not null;default:1"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular-config table name explicit.
func (PointRuleSetting) TableName() string {
	return "point_rule_settings"
}
