package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rakapradana/kasirpoint-backend/api/responses"
	"github.com/rakapradana/kasirpoint-backend/api/validators"
	"github.com/rakapradana/kasirpoint-backend/internal/transactions"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
	"github.com/rakapradana/kasirpoint-backend/pkg/pagination"
)

type transactionSummary struct {
	ID            uuid.UUID  `json:"id"`
	TranID        string     `json:"tran_id"`
	CashierID     uuid.UUID  `json:"cashier_id"`
	MemberID      *uuid.UUID `json:"member_id,omitempty"`
	DiscountCents int64      `json:"discount_cents"`
	TotalCents    int64      `json:"total_cents"`
	FinalCents    int64      `json:"final_cents"`
	PaymentMethod string     `json:"payment_method"`
	ChangeCents   int64      `json:"change_cents"`
	CreatedAt     time.Time  `json:"created_at"`
}

type transactionListResponse struct {
	Transactions []transactionSummary `json:"transactions"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}

type transactionDetailResponse struct {
	transactionSummary
	PaymentCents int64                  `json:"payment_cents"`
	Items        []checkoutItemResponse `json:"items"`
}

// TransactionList serves the paginated sale history with optional filters.
func TransactionList(query transactions.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if query == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction query unavailable"))
			return
		}

		filter, params, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := query.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summaries := make([]transactionSummary, 0, len(page.Transactions))
		for i := range page.Transactions {
			summaries = append(summaries, newTransactionSummary(&page.Transactions[i]))
		}

		responses.WriteSuccess(w, transactionListResponse{
			Transactions: summaries,
			NextCursor:   page.NextCursor,
		})
	}
}

// TransactionDetail serves a single sale with its line items. The path
// segment accepts either the row uuid or the printed receipt number.
func TransactionDetail(query transactions.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if query == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction query unavailable"))
			return
		}

		ref := strings.TrimSpace(chi.URLParam(r, "transactionRef"))

		var transaction *models.Transaction
		var err error
		if id, parseErr := uuid.Parse(ref); parseErr == nil {
			transaction, err = query.GetByID(r.Context(), id)
		} else {
			transaction, err = query.GetByTranID(r.Context(), ref)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

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

		responses.WriteSuccess(w, transactionDetailResponse{
			transactionSummary: newTransactionSummary(transaction),
			PaymentCents:       transaction.PaymentCents,
			Items:              items,
		})
	}
}

func parseListQuery(r *http.Request) (transactions.ListFilter, pagination.Params, error) {
	var filter transactions.ListFilter
	var params pagination.Params

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return filter, params, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	if filter.CashierID, err = validators.ParseQueryUUID(r, "cashier_id"); err != nil {
		return filter, params, err
	}
	if filter.MemberID, err = validators.ParseQueryUUID(r, "member_id"); err != nil {
		return filter, params, err
	}
	if filter.From, err = validators.ParseQueryDate(r, "from"); err != nil {
		return filter, params, err
	}
	if filter.To, err = validators.ParseQueryDate(r, "to"); err != nil {
		return filter, params, err
	}
	if filter.To != nil {
		end := filter.To.AddDate(0, 0, 1)
		filter.To = &end
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("payment_method")); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return filter, params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method")
		}
		filter.PaymentMethod = &method
	}

	return filter, params, nil
}

func newTransactionSummary(transaction *models.Transaction) transactionSummary {
	return transactionSummary{
		ID:            transaction.ID,
		TranID:        transaction.TranID,
		CashierID:     transaction.CashierID,
		MemberID:      transaction.MemberID,
		DiscountCents: transaction.DiscountCents,
		TotalCents:    transaction.TotalCents,
		FinalCents:    transaction.FinalCents,
		PaymentMethod: transaction.PaymentMethod.String(),
		ChangeCents:   transaction.ChangeCents,
		CreatedAt:     transaction.CreatedAt,
	}
}
