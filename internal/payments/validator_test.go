package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      Input
		finalCents int64
		want       Result
	}{
		{
			name:       "cash exact",
			input:      Input{Method: enums.PaymentMethodCash, PaymentCents: 5000},
			finalCents: 5000,
			want:       Result{Success: true, PaidCents: 5000},
		},
		{
			name:       "cash with change",
			input:      Input{Method: enums.PaymentMethodCash, PaymentCents: 10000},
			finalCents: 7350,
			want:       Result{Success: true, PaidCents: 10000, ChangeCents: 2650},
		},
		{
			name:       "cash insufficient",
			input:      Input{Method: enums.PaymentMethodCash, PaymentCents: 4999},
			finalCents: 5000,
			want:       Result{Message: "insufficient cash tendered"},
		},
		{
			name:       "cash zero",
			input:      Input{Method: enums.PaymentMethodCash, PaymentCents: 0},
			finalCents: 5000,
			want:       Result{Message: "cash amount must be positive"},
		},
		{
			name:       "cash negative",
			input:      Input{Method: enums.PaymentMethodCash, PaymentCents: -100},
			finalCents: 5000,
			want:       Result{Message: "cash amount must be positive"},
		},
		{
			name:       "card settles at amount due",
			input:      Input{Method: enums.PaymentMethodCard, PaymentCents: 5000},
			finalCents: 5000,
			want:       Result{Success: true, PaidCents: 5000},
		},
		{
			name:       "card without tendered amount",
			input:      Input{Method: enums.PaymentMethodCard},
			finalCents: 10000,
			want:       Result{Success: true, PaidCents: 10000},
		},
		{
			name:       "qris ignores tendered amount",
			input:      Input{Method: enums.PaymentMethodQRIS, PaymentCents: 4000},
			finalCents: 5000,
			want:       Result{Success: true, PaidCents: 5000},
		},
		{
			name:       "unknown method",
			input:      Input{Method: enums.PaymentMethod("crypto"), PaymentCents: 5000},
			finalCents: 5000,
			want:       Result{Message: `unsupported payment method "crypto"`},
		},
		{
			name:       "negative amount due",
			input:      Input{Method: enums.PaymentMethodCash, PaymentCents: 5000},
			finalCents: -1,
			want:       Result{Message: "amount due cannot be negative"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Validate(tc.input, tc.finalCents)
			assert.Equal(t, tc.want, got)
		})
	}
}
