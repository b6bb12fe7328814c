package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
)

// Transaction is the append-only record of one completed checkout. Totals
// are snapshotted at sale time and never recomputed.
type Transaction struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TranID        string              `gorm:"column:tran_id;not null;uniqueIndex"`
	CashierID     uuid.UUID           `gorm:"column:cashier_id;type:uuid;not null;index"`
	MemberID      *uuid.UUID          `gorm:"column:member_id;type:uuid;index"`
	DiscountID    *uuid.UUID          `gorm:"column:discount_id;type:uuid"`
	DiscountCents int64               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents    int64               `gorm:"column:total_cents;not null"`
	FinalCents    int64               `gorm:"column:final_cents;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentCents  int64               `gorm:"column:payment_cents;not null"`
	ChangeCents   int64               `gorm:"column:change_cents;not null;default:0"`
	Items         []TransactionItem   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
