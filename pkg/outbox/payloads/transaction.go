package payloads

import (
	"github.com/google/uuid"
)

// TransactionCreatedEvent is emitted when a sale commits.
type TransactionCreatedEvent struct {
	TransactionID uuid.UUID  `json:"transaction_id"`
	TranID        string     `json:"tran_id"`
	CashierID     uuid.UUID  `json:"cashier_id"`
	MemberID      *uuid.UUID `json:"member_id,omitempty"`
	TotalCents    int64      `json:"total_cents"`
	DiscountCents int64      `json:"discount_cents"`
	FinalCents    int64      `json:"final_cents"`
	PaymentMethod string     `json:"payment_method"`
	PointsEarned  int64      `json:"points_earned"`
}
