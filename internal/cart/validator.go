package cart

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/rakapradana/kasirpoint-backend/internal/discounts"
	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
)

// Line is a single cart entry as submitted by the cashier.
type Line struct {
	ProductID  uuid.UUID
	Quantity   int
	DiscountID *uuid.UUID
}

// ValidatedItem is a cart line after validation, bound to the batch it will
// be drawn from and priced in cents.
type ValidatedItem struct {
	ProductID         uuid.UUID
	ProductName       string
	BatchID           uuid.UUID
	UnitID            uuid.UUID
	Quantity          int
	CostCents         int64
	PricePerUnitCents int64
	DiscountID        *uuid.UUID
	DiscountCents     int64
	SubtotalCents     int64
}

// Result carries the outcome of cart validation. A failed validation is a
// normal result, not an error: Success is false and Message explains every
// rejected line.
type Result struct {
	Success       bool
	Message       string
	SubtotalCents int64
	Items         []ValidatedItem
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// Validator checks a submitted cart against the live catalog.
type Validator interface {
	Validate(ctx context.Context, lines []Line) (*Result, error)
}

type validator struct {
	products productLoader
	now      func() time.Time
}

// NewValidator builds a cart validator backed by the provided product loader.
func NewValidator(products productLoader) (Validator, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &validator{products: products, now: time.Now}, nil
}

// Validate resolves every line against the catalog, binding each to the
// first-expiring batch that can cover it. Line failures accumulate so the
// cashier sees every problem at once.
func (v *validator) Validate(ctx context.Context, lines []Line) (*Result, error) {
	if len(lines) == 0 {
		return &Result{Message: "cart must contain at least one item"}, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	seen := map[uuid.UUID]struct{}{}
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := v.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	now := v.now()
	var lineErrs error
	var subtotal int64
	items := make([]ValidatedItem, 0, len(lines))

	for i, line := range lines {
		item, err := v.validateLine(line, products[line.ProductID], now)
		if err != nil {
			lineErrs = multierr.Append(lineErrs, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		subtotal += item.SubtotalCents
		items = append(items, *item)
	}

	if lineErrs != nil {
		return &Result{Message: renderMessage(lineErrs)}, nil
	}

	return &Result{
		Success:       true,
		SubtotalCents: subtotal,
		Items:         items,
	}, nil
}

func (v *validator) validateLine(line Line, product *models.Product, now time.Time) (*ValidatedItem, error) {
	if line.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if product == nil {
		return nil, fmt.Errorf("product %s not found", line.ProductID)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("product %q is not available", product.Name)
	}
	if product.StockQty < line.Quantity {
		return nil, fmt.Errorf("insufficient stock for %q: have %d, need %d", product.Name, product.StockQty, line.Quantity)
	}

	batch := pickBatch(product.Batches, line.Quantity, now)
	if batch == nil {
		return nil, fmt.Errorf("no sellable batch covers %d unit(s) of %q", line.Quantity, product.Name)
	}

	lineSubtotal := product.PriceCents * int64(line.Quantity)

	var discountCents int64
	if line.DiscountID != nil {
		discount := findProductDiscount(product, *line.DiscountID)
		if discount == nil {
			return nil, fmt.Errorf("discount does not apply to %q", product.Name)
		}
		if !discounts.Eligible(discount, now, lineSubtotal) {
			return nil, fmt.Errorf("discount %q is not eligible for %q", discount.Name, product.Name)
		}
		discountCents = discounts.LineAmount(discount, product.PriceCents, line.Quantity)
	}

	return &ValidatedItem{
		ProductID:         product.ID,
		ProductName:       product.Name,
		BatchID:           batch.ID,
		UnitID:            product.UnitID,
		Quantity:          line.Quantity,
		CostCents:         batch.BuyPriceCents,
		PricePerUnitCents: product.PriceCents,
		DiscountID:        line.DiscountID,
		DiscountCents:     discountCents,
		SubtotalCents:     lineSubtotal - discountCents,
	}, nil
}

// pickBatch selects the batch a line is drawn from: first-to-expire wins, and
// batches without an expiry date are considered last. Expired or depleted
// batches never qualify.
func pickBatch(batches []models.ProductBatch, qty int, now time.Time) *models.ProductBatch {
	candidates := make([]models.ProductBatch, 0, len(batches))
	for _, b := range batches {
		if b.RemainingQty < qty {
			continue
		}
		if b.ExpiresAt != nil && !b.ExpiresAt.After(now) {
			continue
		}
		candidates = append(candidates, b)
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].ExpiresAt, candidates[j].ExpiresAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return &candidates[0]
}

func findProductDiscount(product *models.Product, id uuid.UUID) *models.Discount {
	for i := range product.Discounts {
		if product.Discounts[i].ID == id {
			return &product.Discounts[i]
		}
	}
	return nil
}

func renderMessage(err error) string {
	errs := multierr.Errors(err)
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
