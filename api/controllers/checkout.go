package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rakapradana/kasirpoint-backend/api/middleware"
	"github.com/rakapradana/kasirpoint-backend/api/responses"
	"github.com/rakapradana/kasirpoint-backend/api/validators"
	"github.com/rakapradana/kasirpoint-backend/internal/cart"
	"github.com/rakapradana/kasirpoint-backend/internal/discounts"
	"github.com/rakapradana/kasirpoint-backend/internal/payments"
	"github.com/rakapradana/kasirpoint-backend/internal/transactions"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
)

type checkoutItemRequest struct {
	ProductID  uuid.UUID  `json:"product_id" validate:"required,uuid4"`
	Quantity   int        `json:"quantity" validate:"required,gt=0"`
	DiscountID *uuid.UUID `json:"discount_id,omitempty" validate:"omitempty,uuid4"`
}

// amount_cents is only meaningful for cash; non-cash methods are settled by
// the provider before checkout reaches us.
type checkoutPaymentRequest struct {
	Method      string `json:"method" validate:"required"`
	AmountCents int64  `json:"amount_cents,omitempty" validate:"required_if=Method cash,omitempty,gt=0"`
}

type checkoutRequest struct {
	Items        []checkoutItemRequest  `json:"items" validate:"required,min=1,dive"`
	MemberID     *uuid.UUID             `json:"member_id,omitempty" validate:"omitempty,uuid4"`
	DiscountCode string                 `json:"discount_code,omitempty"`
	DiscountID   *uuid.UUID             `json:"discount_id,omitempty" validate:"omitempty,uuid4"`
	Payment      checkoutPaymentRequest `json:"payment" validate:"required"`
}

type checkoutItemResponse struct {
	ProductID         uuid.UUID  `json:"product_id"`
	Quantity          int        `json:"quantity"`
	PricePerUnitCents int64      `json:"price_per_unit_cents"`
	DiscountID        *uuid.UUID `json:"discount_id,omitempty"`
	DiscountCents     int64      `json:"discount_cents"`
	SubtotalCents     int64      `json:"subtotal_cents"`
}

type checkoutResponse struct {
	Success       bool                   `json:"success"`
	Stage         string                 `json:"stage,omitempty"`
	Message       string                 `json:"message,omitempty"`
	TransactionID *uuid.UUID             `json:"transaction_id,omitempty"`
	TranID        string                 `json:"tran_id,omitempty"`
	TotalCents    int64                  `json:"total_cents,omitempty"`
	DiscountCents int64                  `json:"discount_cents,omitempty"`
	FinalCents    int64                  `json:"final_cents,omitempty"`
	PaymentMethod string                 `json:"payment_method,omitempty"`
	PaymentCents  int64                  `json:"payment_cents,omitempty"`
	ChangeCents   int64                  `json:"change_cents,omitempty"`
	PointsEarned  int64                  `json:"points_earned,omitempty"`
	CreatedAt     *time.Time             `json:"created_at,omitempty"`
	Items         []checkoutItemResponse `json:"items,omitempty"`
}

// Checkout rings up a sale: the cart, payment and optional member pass the
// validation gates, then the transaction commits atomically.
func Checkout(exec transactions.Executor, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if exec == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		cashierID, err := cashierIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.Payment.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method"))
			return
		}

		lines := make([]cart.Line, 0, len(payload.Items))
		for _, item := range payload.Items {
			lines = append(lines, cart.Line{
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				DiscountID: item.DiscountID,
			})
		}

		result, err := exec.Execute(r.Context(), transactions.CheckoutInput{
			CashierID: cashierID,
			Lines:     lines,
			MemberID:  payload.MemberID,
			Discount: discounts.Request{
				Code:       payload.DiscountCode,
				DiscountID: payload.DiscountID,
			},
			Payment: payments.Input{
				Method:       method,
				PaymentCents: payload.Payment.AmountCents,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !result.Success {
			responses.WriteSuccessStatus(w, http.StatusUnprocessableEntity, checkoutResponse{
				Stage:   result.Stage,
				Message: result.Message,
			})
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

func cashierIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.CashierIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing cashier identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid cashier identity")
	}
	return id, nil
}

func newCheckoutResponse(result *transactions.CheckoutResult) checkoutResponse {
	transaction := result.Transaction
	items := make([]checkoutItemResponse, 0, len(transaction.Items))
	for _, item := range transaction.Items {
		items = append(items, checkoutItemResponse{
			ProductID:         item.ProductID,
			Quantity:          item.Quantity,
			PricePerUnitCents: item.PricePerUnitCents,
			DiscountID:        item.DiscountID,
			DiscountCents:     item.DiscountCents,
			SubtotalCents:     item.SubtotalCents,
		})
	}
	createdAt := transaction.CreatedAt
	return checkoutResponse{
		Success:       true,
		TransactionID: &transaction.ID,
		TranID:        transaction.TranID,
		TotalCents:    transaction.TotalCents,
		DiscountCents: transaction.DiscountCents,
		FinalCents:    transaction.FinalCents,
		PaymentMethod: transaction.PaymentMethod.String(),
		PaymentCents:  transaction.PaymentCents,
		ChangeCents:   transaction.ChangeCents,
		PointsEarned:  result.PointsEarned,
		CreatedAt:     &createdAt,
		Items:         items,
	}
}
