package transactions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/internal/cart"
	"github.com/rakapradana/kasirpoint-backend/internal/catalog"
	"github.com/rakapradana/kasirpoint-backend/internal/discounts"
	"github.com/rakapradana/kasirpoint-backend/internal/payments"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/outbox"
	"github.com/rakapradana/kasirpoint-backend/pkg/pagination"
)

type stubTxRunner struct {
	rolledBack bool
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		s.rolledBack = true
		return err
	}
	return nil
}

type stubCashierValidator struct {
	err error
}

func (s *stubCashierValidator) ValidateCashier(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: id, Role: "cashier", IsActive: true}, nil
}

type stubCartValidator struct {
	result *cart.Result
	err    error
}

func (s *stubCartValidator) Validate(ctx context.Context, lines []cart.Line) (*cart.Result, error) {
	return s.result, s.err
}

type stubMemberService struct {
	member    *models.Member
	err       error
	points    int64
	pointsErr error
	processed bool
}

func (s *stubMemberService) Validate(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return s.member, s.err
}

func (s *stubMemberService) ProcessPoints(ctx context.Context, tx *gorm.DB, member *models.Member, transactionID uuid.UUID, finalCents int64) (int64, error) {
	s.processed = true
	return s.points, s.pointsErr
}

type stubResolver struct {
	resolution *discounts.Resolution
	err        error
}

func (s *stubResolver) Resolve(ctx context.Context, req discounts.Request, member *models.Member, subtotalCents int64) (*discounts.Resolution, error) {
	return s.resolution, s.err
}

type stubCatalogRepo struct {
	batchDecrements   map[uuid.UUID]int
	productDecrements map[uuid.UUID]int
	failBatch         map[uuid.UUID]bool
	failProduct       map[uuid.UUID]bool
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		batchDecrements:   map[uuid.UUID]int{},
		productDecrements: map[uuid.UUID]int{},
		failBatch:         map[uuid.UUID]bool{},
		failProduct:       map[uuid.UUID]bool{},
	}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	return map[uuid.UUID]*models.Product{}, nil
}

func (s *stubCatalogRepo) DecrementBatchQty(ctx context.Context, batchID uuid.UUID, qty int) (bool, error) {
	if s.failBatch[batchID] {
		return false, nil
	}
	s.batchDecrements[batchID] += qty
	return true, nil
}

func (s *stubCatalogRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	if s.failProduct[productID] {
		return false, nil
	}
	s.productDecrements[productID] += qty
	return true, nil
}

type stubUsageRepo struct {
	usage     map[uuid.UUID]int
	failUsage map[uuid.UUID]bool
}

func newStubUsageRepo() *stubUsageRepo {
	return &stubUsageRepo{usage: map[uuid.UUID]int{}, failUsage: map[uuid.UUID]bool{}}
}

func (s *stubUsageRepo) WithTx(tx *gorm.DB) discounts.Repository { return s }

func (s *stubUsageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsageRepo) FindGlobalByCode(ctx context.Context, code string) (*models.Discount, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsageRepo) FindForMember(ctx context.Context, memberID, discountID uuid.UUID) (*models.Discount, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsageRepo) FindForTier(ctx context.Context, tierID, discountID uuid.UUID) (*models.Discount, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsageRepo) IncrementUsage(ctx context.Context, id uuid.UUID, uses int) (bool, error) {
	if s.failUsage[id] {
		return false, nil
	}
	s.usage[id] += uses
	return true, nil
}

type stubTransactionRepo struct {
	created *models.Transaction
}

func (s *stubTransactionRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTransactionRepo) Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	transaction.ID = uuid.New()
	s.created = transaction
	return transaction, nil
}

func (s *stubTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTransactionRepo) FindByTranID(ctx context.Context, tranID string) (*models.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTransactionRepo) List(ctx context.Context, filter ListFilter, cursor *pagination.Cursor, limit int) ([]models.Transaction, error) {
	return nil, nil
}

type stubIDGenerator struct{}

func (stubIDGenerator) Generate(ctx context.Context) (string, error) {
	return "TRX-20260314-0001", nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type executorFixture struct {
	tx       *stubTxRunner
	cashiers *stubCashierValidator
	cart     *stubCartValidator
	members  *stubMemberService
	resolver *stubResolver
	catalog  *stubCatalogRepo
	usage    *stubUsageRepo
	repo     *stubTransactionRepo
	emitter  *stubEmitter
}

func newExecutorFixture() *executorFixture {
	return &executorFixture{
		tx:       &stubTxRunner{},
		cashiers: &stubCashierValidator{},
		cart:     &stubCartValidator{},
		members:  &stubMemberService{},
		resolver: &stubResolver{},
		catalog:  newStubCatalogRepo(),
		usage:    newStubUsageRepo(),
		repo:     &stubTransactionRepo{},
		emitter:  &stubEmitter{},
	}
}

func (f *executorFixture) build(t *testing.T) Executor {
	t.Helper()
	exec, err := NewExecutor(
		f.tx,
		f.cashiers,
		f.cart,
		f.members,
		f.resolver,
		f.catalog,
		f.usage,
		f.repo,
		stubIDGenerator{},
		f.emitter,
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("build executor: %v", err)
	}
	return exec
}

func validCartResult(productID, batchID uuid.UUID, qty int, priceCents int64) *cart.Result {
	subtotal := priceCents * int64(qty)
	return &cart.Result{
		Success:       true,
		SubtotalCents: subtotal,
		Items: []cart.ValidatedItem{
			{
				ProductID:         productID,
				ProductName:       "Kopi Susu",
				BatchID:           batchID,
				UnitID:            uuid.New(),
				Quantity:          qty,
				CostCents:         800,
				PricePerUnitCents: priceCents,
				SubtotalCents:     subtotal,
			},
		},
	}
}

func TestExecuteCommitsCashSale(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	batchID := uuid.New()

	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, batchID, 2, 1500)

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 2}},
		Payment:   payments.Input{Method: enums.PaymentMethodCash, PaymentCents: 5000},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got stage=%s message=%q", result.Stage, result.Message)
	}

	transaction := f.repo.created
	if transaction == nil {
		t.Fatal("transaction not persisted")
	}
	if transaction.TranID != "TRX-20260314-0001" {
		t.Fatalf("tran id mismatch: %q", transaction.TranID)
	}
	if transaction.TotalCents != 3000 || transaction.FinalCents != 3000 {
		t.Fatalf("totals mismatch: %+v", transaction)
	}
	if transaction.ChangeCents != 2000 {
		t.Fatalf("change mismatch: %d", transaction.ChangeCents)
	}
	if got := f.catalog.batchDecrements[batchID]; got != 2 {
		t.Fatalf("batch decrement mismatch: %d", got)
	}
	if got := f.catalog.productDecrements[productID]; got != 2 {
		t.Fatalf("product decrement mismatch: %d", got)
	}
	if len(f.emitter.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(f.emitter.events))
	}
	event := f.emitter.events[0]
	if event.EventType != enums.EventTransactionCreated {
		t.Fatalf("event type mismatch: %s", event.EventType)
	}
	if event.AggregateID != transaction.ID {
		t.Fatal("event must reference the committed transaction")
	}
}

func TestExecuteNonCashSettlesAmountDue(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	batchID := uuid.New()

	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, batchID, 2, 1500)

	// Card payments are authorized upstream; the request carries no tendered
	// amount and still commits at the amount due.
	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 2}},
		Payment:   payments.Input{Method: enums.PaymentMethodCard},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got stage=%s message=%q", result.Stage, result.Message)
	}

	transaction := f.repo.created
	if transaction == nil {
		t.Fatal("transaction not persisted")
	}
	if transaction.PaymentCents != 3000 {
		t.Fatalf("payment should settle at the amount due: %d", transaction.PaymentCents)
	}
	if transaction.ChangeCents != 0 {
		t.Fatalf("non-cash must not produce change: %d", transaction.ChangeCents)
	}
}

func TestExecuteAppliesOrderDiscount(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	batchID := uuid.New()
	discount := &models.Discount{ID: uuid.New(), Name: "Hemat"}

	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, batchID, 2, 5000)
	f.resolver.resolution = &discounts.Resolution{Discount: discount, AmountCents: 1500}

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 2}},
		Discount:  discounts.Request{Code: "HEMAT"},
		Payment:   payments.Input{Method: enums.PaymentMethodCard, PaymentCents: 8500},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}

	transaction := f.repo.created
	if transaction.DiscountCents != 1500 || transaction.FinalCents != 8500 {
		t.Fatalf("discount not applied: %+v", transaction)
	}
	if transaction.DiscountID == nil || *transaction.DiscountID != discount.ID {
		t.Fatal("discount id not recorded")
	}
	if got := f.usage.usage[discount.ID]; got != 1 {
		t.Fatalf("usage counter mismatch: %d", got)
	}
}

func TestExecuteCountsDuplicateLinesOnce(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	batchID := uuid.New()

	item := cart.ValidatedItem{
		ProductID:         productID,
		BatchID:           batchID,
		UnitID:            uuid.New(),
		Quantity:          3,
		PricePerUnitCents: 1000,
		SubtotalCents:     3000,
	}

	f := newExecutorFixture()
	f.cart.result = &cart.Result{
		Success:       true,
		SubtotalCents: 6000,
		Items:         []cart.ValidatedItem{item, item},
	}

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines: []cart.Line{
			{ProductID: productID, Quantity: 3},
			{ProductID: productID, Quantity: 3},
		},
		Payment: payments.Input{Method: enums.PaymentMethodCash, PaymentCents: 6000},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}

	// Both lines draw from the same batch: the guard must see their sum in a
	// single conditional decrement, not two independent ones.
	if got := f.catalog.batchDecrements[batchID]; got != 6 {
		t.Fatalf("expected grouped batch decrement of 6, got %d", got)
	}
	if got := f.catalog.productDecrements[productID]; got != 6 {
		t.Fatalf("expected grouped product decrement of 6, got %d", got)
	}
}

func TestExecuteStockConflictRollsBack(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	batchID := uuid.New()

	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, batchID, 2, 1500)
	f.catalog.failBatch[batchID] = true

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 2}},
		Payment:   payments.Input{Method: enums.PaymentMethodCash, PaymentCents: 5000},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if result != nil {
		t.Fatalf("no result expected on commit failure, got %+v", result)
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if !f.tx.rolledBack {
		t.Fatal("transaction must roll back")
	}
	if len(f.emitter.events) != 0 {
		t.Fatal("no event must be emitted on rollback")
	}
}

func TestExecuteDiscountCapConflictRollsBack(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	batchID := uuid.New()
	discount := &models.Discount{ID: uuid.New(), Name: "Terbatas"}

	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, batchID, 1, 10000)
	f.resolver.resolution = &discounts.Resolution{Discount: discount, AmountCents: 1000}
	f.usage.failUsage[discount.ID] = true

	exec := f.build(t)
	_, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 1}},
		Discount:  discounts.Request{Code: "TERBATAS"},
		Payment:   payments.Input{Method: enums.PaymentMethodCash, PaymentCents: 9000},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if !f.tx.rolledBack {
		t.Fatal("transaction must roll back")
	}
}

func TestExecuteRejectsUnknownCashier(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture()
	f.cashiers.err = pkgerrors.New(pkgerrors.CodeUnauthorized, "cashier account is not active")

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{CashierID: uuid.New()})
	if err != nil {
		t.Fatalf("gate failures are results, not errors: %v", err)
	}
	if result.Success || result.Stage != StageCashier {
		t.Fatalf("expected cashier rejection, got %+v", result)
	}
}

func TestExecuteRejectsInvalidCart(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture()
	f.cart.result = &cart.Result{Message: "line 1: insufficient stock"}

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: uuid.New(), Quantity: 99}},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Success || result.Stage != StageCart {
		t.Fatalf("expected cart rejection, got %+v", result)
	}
	if result.Message != "line 1: insufficient stock" {
		t.Fatalf("message must reach the cashier: %q", result.Message)
	}
}

func TestExecuteRejectsBannedMember(t *testing.T) {
	t.Parallel()

	memberID := uuid.New()
	f := newExecutorFixture()
	f.cart.result = validCartResult(uuid.New(), uuid.New(), 1, 1000)
	f.members.err = pkgerrors.New(pkgerrors.CodeForbidden, "chargeback abuse")

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: uuid.New(), Quantity: 1}},
		MemberID:  &memberID,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Success || result.Stage != StageMember {
		t.Fatalf("expected member rejection, got %+v", result)
	}
	if result.Message != "chargeback abuse" {
		t.Fatalf("ban reason must surface: %q", result.Message)
	}
}

func TestExecuteRejectsInsufficientPayment(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, uuid.New(), 2, 1500)

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 2}},
		Payment:   payments.Input{Method: enums.PaymentMethodCash, PaymentCents: 2000},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Success || result.Stage != StagePayment {
		t.Fatalf("expected payment rejection, got %+v", result)
	}
	if f.repo.created != nil {
		t.Fatal("nothing may be persisted before the payment gate passes")
	}
}

func TestExecuteProceedsWithoutUnresolvedDiscount(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, uuid.New(), 1, 4000)
	// Resolver yields nothing: the sale goes through at full price.

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 1}},
		Discount:  discounts.Request{Code: "GHOST"},
		Payment:   payments.Input{Method: enums.PaymentMethodQRIS, PaymentCents: 4000},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if f.repo.created.DiscountCents != 0 || f.repo.created.DiscountID != nil {
		t.Fatalf("no discount expected: %+v", f.repo.created)
	}
}

func TestExecuteRecordsMemberPoints(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	memberID := uuid.New()

	f := newExecutorFixture()
	f.cart.result = validCartResult(productID, uuid.New(), 1, 2000000)
	f.members.member = &models.Member{ID: memberID, Name: "Budi"}
	f.members.points = 2

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{
		CashierID: uuid.New(),
		Lines:     []cart.Line{{ProductID: productID, Quantity: 1}},
		MemberID:  &memberID,
		Payment:   payments.Input{Method: enums.PaymentMethodCash, PaymentCents: 2000000},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if !f.members.processed {
		t.Fatal("points must be processed inside the commit")
	}
	if result.PointsEarned != 2 {
		t.Fatalf("points mismatch: %d", result.PointsEarned)
	}
}

func TestExecuteDependencyErrorPropagates(t *testing.T) {
	t.Parallel()

	f := newExecutorFixture()
	f.cashiers.err = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection reset"), "load cashier")

	exec := f.build(t)
	result, err := exec.Execute(context.Background(), CheckoutInput{CashierID: uuid.New()})
	if err == nil {
		t.Fatal("infrastructure failures must propagate as errors")
	}
	if result != nil {
		t.Fatalf("no rejection result expected, got %+v", result)
	}
}
