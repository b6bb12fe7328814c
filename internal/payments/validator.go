package payments

import (
	"fmt"

	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
)

// Input is the payment half of a checkout request.
type Input struct {
	Method       enums.PaymentMethod
	PaymentCents int64
}

// Result is the outcome of payment validation. A rejected payment is a
// normal result with Success false; only the message varies by cause.
// PaidCents is the amount the transaction records: the tendered cash, or the
// amount due for non-cash methods.
type Result struct {
	Success     bool
	Message     string
	PaidCents   int64
	ChangeCents int64
}

// Validate checks tendered payment against the amount due. Cash must cover
// the total and yields change. Non-cash methods are authorized upstream by
// the provider, so they settle at the amount due with no tendered-amount
// check and never produce change.
func Validate(input Input, finalCents int64) Result {
	if !input.Method.IsValid() {
		return Result{Message: fmt.Sprintf("unsupported payment method %q", string(input.Method))}
	}
	if finalCents < 0 {
		return Result{Message: "amount due cannot be negative"}
	}

	if input.Method.IsCash() {
		if input.PaymentCents <= 0 {
			return Result{Message: "cash amount must be positive"}
		}
		if input.PaymentCents < finalCents {
			return Result{Message: "insufficient cash tendered"}
		}
		return Result{
			Success:     true,
			PaidCents:   input.PaymentCents,
			ChangeCents: input.PaymentCents - finalCents,
		}
	}

	return Result{Success: true, PaidCents: finalCents}
}
