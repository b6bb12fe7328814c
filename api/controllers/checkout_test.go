package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakapradana/kasirpoint-backend/api/middleware"
	"github.com/rakapradana/kasirpoint-backend/internal/transactions"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
)

type stubExecutor struct {
	result *transactions.CheckoutResult
	err    error
	input  *transactions.CheckoutInput
}

func (s *stubExecutor) Execute(ctx context.Context, input transactions.CheckoutInput) (*transactions.CheckoutResult, error) {
	s.input = &input
	return s.result, s.err
}

func checkoutBody(t *testing.T, productID uuid.UUID) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": 2},
		},
		"payment": map[string]any{
			"method":       "cash",
			"amount_cents": 5000,
		},
	})
	require.NoError(t, err)
	return body
}

func performCheckout(t *testing.T, exec transactions.Executor, cashierID string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cashierID != "" {
		req = req.WithContext(middleware.WithCashierID(req.Context(), cashierID))
	}

	recorder := httptest.NewRecorder()
	Checkout(exec, nil)(recorder, req)
	return recorder
}

func TestCheckoutCommitted(t *testing.T) {
	t.Parallel()

	cashierID := uuid.New()
	productID := uuid.New()
	transaction := &models.Transaction{
		ID:            uuid.New(),
		TranID:        "TRX-20260314-0001",
		CashierID:     cashierID,
		TotalCents:    3000,
		FinalCents:    3000,
		PaymentMethod: enums.PaymentMethodCash,
		PaymentCents:  5000,
		ChangeCents:   2000,
		Items: []models.TransactionItem{
			{ProductID: productID, Quantity: 2, PricePerUnitCents: 1500, SubtotalCents: 3000},
		},
	}
	exec := &stubExecutor{result: &transactions.CheckoutResult{
		Success:      true,
		Transaction:  transaction,
		PointsEarned: 3,
	}}

	recorder := performCheckout(t, exec, cashierID.String(), checkoutBody(t, productID))
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Success)
	assert.Equal(t, "TRX-20260314-0001", envelope.Data.TranID)
	assert.Equal(t, int64(2000), envelope.Data.ChangeCents)
	assert.Equal(t, int64(3), envelope.Data.PointsEarned)
	require.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, productID, envelope.Data.Items[0].ProductID)

	require.NotNil(t, exec.input)
	assert.Equal(t, cashierID, exec.input.CashierID)
	assert.Equal(t, enums.PaymentMethodCash, exec.input.Payment.Method)
	assert.Equal(t, int64(5000), exec.input.Payment.PaymentCents)
}

func TestCheckoutRejectionIsUnprocessable(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{result: &transactions.CheckoutResult{
		Stage:   transactions.StagePayment,
		Message: "insufficient cash tendered",
	}}

	recorder := performCheckout(t, exec, uuid.NewString(), checkoutBody(t, uuid.New()))
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code, recorder.Body.String())

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Success)
	assert.Equal(t, transactions.StagePayment, envelope.Data.Stage)
	assert.Equal(t, "insufficient cash tendered", envelope.Data.Message)
}

func TestCheckoutNonCashWithoutAmount(t *testing.T) {
	t.Parallel()

	cashierID := uuid.New()
	productID := uuid.New()
	exec := &stubExecutor{result: &transactions.CheckoutResult{
		Success: true,
		Transaction: &models.Transaction{
			ID:            uuid.New(),
			TranID:        "TRX-20260314-0002",
			CashierID:     cashierID,
			TotalCents:    3000,
			FinalCents:    3000,
			PaymentMethod: enums.PaymentMethodCard,
			PaymentCents:  3000,
		},
	}}

	body, err := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": 2},
		},
		"payment": map[string]any{
			"method": "card",
		},
	})
	require.NoError(t, err)

	recorder := performCheckout(t, exec, cashierID.String(), body)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	require.NotNil(t, exec.input)
	assert.Equal(t, enums.PaymentMethodCard, exec.input.Payment.Method)
	assert.Zero(t, exec.input.Payment.PaymentCents)
}

func TestCheckoutCashRequiresAmount(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": uuid.NewString(), "quantity": 1},
		},
		"payment": map[string]any{
			"method": "cash",
		},
	})
	require.NoError(t, err)

	recorder := performCheckout(t, &stubExecutor{}, uuid.NewString(), body)
	require.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())
}

func TestCheckoutRequiresCashierIdentity(t *testing.T) {
	t.Parallel()

	recorder := performCheckout(t, &stubExecutor{}, "", checkoutBody(t, uuid.New()))
	require.Equal(t, http.StatusUnauthorized, recorder.Code, recorder.Body.String())
}

func TestCheckoutRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	recorder := performCheckout(t, &stubExecutor{}, uuid.NewString(), []byte(`{"items": []`))
	require.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": uuid.NewString(), "quantity": 1},
		},
		"payment": map[string]any{
			"method":       "crypto",
			"amount_cents": 5000,
		},
	})
	require.NoError(t, err)

	recorder := performCheckout(t, &stubExecutor{}, uuid.NewString(), body)
	require.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())
}

func TestCheckoutExecutorErrorsSurfaceAsEnvelope(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{err: fmt.Errorf("database gone")}
	recorder := performCheckout(t, exec, uuid.NewString(), checkoutBody(t, uuid.New()))
	require.Equal(t, http.StatusInternalServerError, recorder.Code, recorder.Body.String())

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Error.Code)
}
