package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberPoint is one append-only ledger row of points earned by a member.
// The member's cached totals are derived from this ledger.
type MemberPoint struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID      uuid.UUID `gorm:"column:member_id;type:uuid;not null;index"`
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;index"`
	PointsEarned  int64     `gorm:"column:points_earned;not null"`
	DateEarned    time.Time `gorm:"column:date_earned;not null"`
	Notes         *string   `gorm:"column:notes"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
