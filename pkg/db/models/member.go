package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a loyalty program participant. TotalPoints is the spendable
// balance; TotalPointsEarned only ever grows and gates tier advancement.
type Member struct {
	ID                uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string      `gorm:"column:name;not null"`
	Phone             *string     `gorm:"column:phone;uniqueIndex"`
	TotalPoints       int64       `gorm:"column:total_points;not null;default:0"`
	TotalPointsEarned int64       `gorm:"column:total_points_earned;not null;default:0"`
	IsBanned          bool        `gorm:"column:is_banned;not null;default:false"`
	BanReason         *string     `gorm:"column:ban_reason"`
	TierID            *uuid.UUID  `gorm:"column:tier_id;type:uuid"`
	Tier              *MemberTier `gorm:"foreignKey:TierID"`
	Discounts         []Discount  `gorm:"many2many:member_discounts"`
	CreatedAt         time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
