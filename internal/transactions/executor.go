package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/internal/cart"
	"github.com/rakapradana/kasirpoint-backend/internal/catalog"
	"github.com/rakapradana/kasirpoint-backend/internal/discounts"
	"github.com/rakapradana/kasirpoint-backend/internal/payments"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/logger"
	"github.com/rakapradana/kasirpoint-backend/pkg/metrics"
	"github.com/rakapradana/kasirpoint-backend/pkg/outbox"
	"github.com/rakapradana/kasirpoint-backend/pkg/outbox/payloads"
)

// Pipeline stages, used for rejection results and metrics labels.
const (
	StageCashier  = "cashier"
	StageCart     = "cart"
	StageMember   = "member"
	StageDiscount = "discount"
	StagePayment  = "payment"
	StageCommit   = "commit"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartValidator interface {
	Validate(ctx context.Context, lines []cart.Line) (*cart.Result, error)
}

type memberService interface {
	Validate(ctx context.Context, id uuid.UUID) (*models.Member, error)
	ProcessPoints(ctx context.Context, tx *gorm.DB, member *models.Member, transactionID uuid.UUID, finalCents int64) (int64, error)
}

type cashierValidator interface {
	ValidateCashier(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type discountResolver interface {
	Resolve(ctx context.Context, req discounts.Request, member *models.Member, subtotalCents int64) (*discounts.Resolution, error)
}

type idGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CheckoutInput is a complete checkout request: the cart, who rang it, who is
// buying, the requested discount, and the tendered payment.
type CheckoutInput struct {
	CashierID uuid.UUID
	Lines     []cart.Line
	MemberID  *uuid.UUID
	Discount  discounts.Request
	Payment   payments.Input
}

// CheckoutResult is the outcome of a checkout attempt. Validation rejections
// are normal results: Success is false, Stage names the gate that rejected,
// and Message explains it to the cashier. Only commit failures surface as
// errors from Execute.
type CheckoutResult struct {
	Success      bool
	Stage        string
	Message      string
	Transaction  *models.Transaction
	PointsEarned int64
}

// Executor runs the checkout pipeline end to end.
type Executor interface {
	Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type executor struct {
	tx            txRunner
	cashiers      cashierValidator
	cartValidator cartValidator
	memberSvc     memberService
	resolver      discountResolver
	catalogRepo   catalog.Repository
	discountRepo  discounts.Repository
	repo          Repository
	tranIDs       idGenerator
	outbox        outboxEmitter
	metrics       *metrics.CheckoutMetrics
	logg          *logger.Logger
	now           func() time.Time
}

// NewExecutor builds the checkout executor.
func NewExecutor(
	tx txRunner,
	cashiers cashierValidator,
	validator cartValidator,
	memberSvc memberService,
	resolver discountResolver,
	catalogRepo catalog.Repository,
	discountRepo discounts.Repository,
	repo Repository,
	tranIDs idGenerator,
	emitter outboxEmitter,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Executor, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cashiers == nil {
		return nil, fmt.Errorf("cashier validator required")
	}
	if validator == nil {
		return nil, fmt.Errorf("cart validator required")
	}
	if memberSvc == nil {
		return nil, fmt.Errorf("member service required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("discount resolver required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if tranIDs == nil {
		return nil, fmt.Errorf("tran id generator required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &executor{
		tx:            tx,
		cashiers:      cashiers,
		cartValidator: validator,
		memberSvc:     memberSvc,
		resolver:      resolver,
		catalogRepo:   catalogRepo,
		discountRepo:  discountRepo,
		repo:          repo,
		tranIDs:       tranIDs,
		outbox:        emitter,
		metrics:       checkoutMetrics,
		logg:          logg,
		now:           time.Now,
	}, nil
}

// Execute walks the gates in order and commits atomically at the end. Stock
// is re-checked inside the transaction with conditional decrements, so two
// registers racing over the last unit cannot both win.
func (e *executor) Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if _, err := e.cashiers.ValidateCashier(ctx, input.CashierID); err != nil {
		return e.reject(StageCashier, err)
	}

	cartResult, err := e.cartValidator.Validate(ctx, input.Lines)
	if err != nil {
		return nil, err
	}
	if !cartResult.Success {
		e.metrics.IncRejected(StageCart)
		return &CheckoutResult{Stage: StageCart, Message: cartResult.Message}, nil
	}

	var member *models.Member
	if input.MemberID != nil {
		member, err = e.memberSvc.Validate(ctx, *input.MemberID)
		if err != nil {
			return e.reject(StageMember, err)
		}
	}

	resolution, err := e.resolver.Resolve(ctx, input.Discount, member, cartResult.SubtotalCents)
	if err != nil {
		return e.reject(StageDiscount, err)
	}

	totalCents := cartResult.SubtotalCents
	var discountCents int64
	var discountID *uuid.UUID
	if resolution != nil {
		discountCents = resolution.AmountCents
		discountID = &resolution.Discount.ID
	}
	finalCents := totalCents - discountCents

	paymentResult := payments.Validate(input.Payment, finalCents)
	if !paymentResult.Success {
		e.metrics.IncRejected(StagePayment)
		return &CheckoutResult{Stage: StagePayment, Message: paymentResult.Message}, nil
	}

	transaction := &models.Transaction{
		CashierID:     input.CashierID,
		MemberID:      input.MemberID,
		DiscountID:    discountID,
		DiscountCents: discountCents,
		TotalCents:    totalCents,
		FinalCents:    finalCents,
		PaymentMethod: input.Payment.Method,
		PaymentCents:  paymentResult.PaidCents,
		ChangeCents:   paymentResult.ChangeCents,
		Items:         buildItems(cartResult.Items),
	}

	started := e.now()
	var pointsEarned int64
	err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		tranID, err := e.tranIDs.Generate(ctx)
		if err != nil {
			return fmt.Errorf("generating tran id: %w", err)
		}
		transaction.TranID = tranID

		repo := e.repo.WithTx(tx)
		if _, err := repo.Create(ctx, transaction); err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}

		if err := e.applyStockDecrements(ctx, tx, cartResult.Items); err != nil {
			return err
		}

		if err := e.applyDiscountUsage(ctx, tx, discountID, cartResult.Items); err != nil {
			return err
		}

		if member != nil {
			pointsEarned, err = e.memberSvc.ProcessPoints(ctx, tx, member, transaction.ID, finalCents)
			if err != nil {
				return err
			}
		}

		return e.emitCreatedEvent(ctx, tx, transaction, pointsEarned)
	})
	if err != nil {
		e.metrics.IncRejected(StageCommit)
		return nil, err
	}

	e.metrics.ObserveCommit(transaction.PaymentMethod.String(), e.now().Sub(started))
	e.metrics.IncProcessed(transaction.PaymentMethod.String())

	if e.logg != nil {
		logCtx := e.logg.WithTranID(ctx, transaction.TranID)
		e.logg.Info(logCtx, "transaction committed")
	}

	return &CheckoutResult{
		Success:      true,
		Transaction:  transaction,
		PointsEarned: pointsEarned,
	}, nil
}

// reject converts a gate failure into a rejection result. Unexpected errors
// (infrastructure, programming) still propagate as errors.
func (e *executor) reject(stage string, err error) (*CheckoutResult, error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		return nil, err
	}
	switch typed.Code() {
	case pkgerrors.CodeDependency, pkgerrors.CodeInternal:
		return nil, err
	}
	e.metrics.IncRejected(stage)
	return &CheckoutResult{Stage: stage, Message: typed.Message()}, nil
}

// applyStockDecrements re-checks stock with conditional updates, grouped per
// batch and per product so a line split across duplicates still counts once.
func (e *executor) applyStockDecrements(ctx context.Context, tx *gorm.DB, items []cart.ValidatedItem) error {
	repo := e.catalogRepo.WithTx(tx)

	batchQty := map[uuid.UUID]int{}
	productQty := map[uuid.UUID]int{}
	for _, item := range items {
		batchQty[item.BatchID] += item.Quantity
		productQty[item.ProductID] += item.Quantity
	}

	for batchID, qty := range batchQty {
		ok, err := repo.DecrementBatchQty(ctx, batchID, qty)
		if err != nil {
			return fmt.Errorf("decrementing batch %s: %w", batchID, err)
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "stock changed during checkout, please retry")
		}
	}

	for productID, qty := range productQty {
		ok, err := repo.DecrementStock(ctx, productID, qty)
		if err != nil {
			return fmt.Errorf("decrementing stock %s: %w", productID, err)
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "stock changed during checkout, please retry")
		}
	}

	return nil
}

// applyDiscountUsage counts one use per applied line plus one for the
// order-level discount, then bumps each counter under its max-uses guard.
func (e *executor) applyDiscountUsage(ctx context.Context, tx *gorm.DB, orderDiscountID *uuid.UUID, items []cart.ValidatedItem) error {
	uses := map[uuid.UUID]int{}
	if orderDiscountID != nil {
		uses[*orderDiscountID]++
	}
	for _, item := range items {
		if item.DiscountID != nil {
			uses[*item.DiscountID]++
		}
	}
	if len(uses) == 0 {
		return nil
	}

	repo := e.discountRepo.WithTx(tx)
	for id, count := range uses {
		ok, err := repo.IncrementUsage(ctx, id, count)
		if err != nil {
			return fmt.Errorf("incrementing discount usage %s: %w", id, err)
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "discount usage limit reached, please retry without it")
		}
	}
	return nil
}

func (e *executor) emitCreatedEvent(ctx context.Context, tx *gorm.DB, transaction *models.Transaction, pointsEarned int64) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventTransactionCreated,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   transaction.ID,
		Actor:         &outbox.ActorRef{UserID: transaction.CashierID, Role: "cashier"},
		Data: payloads.TransactionCreatedEvent{
			TransactionID: transaction.ID,
			TranID:        transaction.TranID,
			CashierID:     transaction.CashierID,
			MemberID:      transaction.MemberID,
			TotalCents:    transaction.TotalCents,
			DiscountCents: transaction.DiscountCents,
			FinalCents:    transaction.FinalCents,
			PaymentMethod: transaction.PaymentMethod.String(),
			PointsEarned:  pointsEarned,
		},
		Version: 1,
	}
	return e.outbox.Emit(ctx, tx, event)
}

func buildItems(items []cart.ValidatedItem) []models.TransactionItem {
	rows := make([]models.TransactionItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.TransactionItem{
			ProductID:         item.ProductID,
			BatchID:           item.BatchID,
			UnitID:            item.UnitID,
			Quantity:          item.Quantity,
			CostCents:         item.CostCents,
			PricePerUnitCents: item.PricePerUnitCents,
			DiscountID:        item.DiscountID,
			DiscountCents:     item.DiscountCents,
			SubtotalCents:     item.SubtotalCents,
		})
	}
	return rows
}
