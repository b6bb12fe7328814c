package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
)

// Request identifies the order-level discount the cashier asked for. A code
// targets global discounts; an id targets discounts attached to the member or
// their tier.
type Request struct {
	Code       string
	DiscountID *uuid.UUID
}

// Empty reports whether no discount was requested at all.
func (r Request) Empty() bool {
	return strings.TrimSpace(r.Code) == "" && r.DiscountID == nil
}

// Resolution is the outcome of a successful resolve: the discount row plus the
// cents it takes off the cart subtotal.
type Resolution struct {
	Discount    *models.Discount
	AmountCents int64
}

// Resolver matches a discount request against the catalog. A request that
// matches nothing eligible yields a nil resolution, not an error; the sale
// proceeds without an order-level discount.
type Resolver interface {
	Resolve(ctx context.Context, req Request, member *models.Member, subtotalCents int64) (*Resolution, error)
}

type resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver builds a discount resolver backed by the provided repository.
func NewResolver(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &resolver{repo: repo, now: time.Now}, nil
}

// Resolve checks candidates in priority order: a global code wins over a
// member-attached discount, which wins over a tier-attached one.
func (r *resolver) Resolve(ctx context.Context, req Request, member *models.Member, subtotalCents int64) (*Resolution, error) {
	if req.Empty() {
		return nil, nil
	}
	if subtotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}

	now := r.now()

	if code := strings.TrimSpace(req.Code); code != "" {
		discount, err := r.repo.FindGlobalByCode(ctx, code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup discount code")
		}
		if res := r.evaluate(discount, now, subtotalCents); res != nil {
			return res, nil
		}
	}

	if req.DiscountID == nil || member == nil {
		return nil, nil
	}

	discount, err := r.repo.FindForMember(ctx, member.ID, *req.DiscountID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup member discount")
	}
	if res := r.evaluate(discount, now, subtotalCents); res != nil {
		return res, nil
	}

	if member.TierID == nil {
		return nil, nil
	}
	discount, err = r.repo.FindForTier(ctx, *member.TierID, *req.DiscountID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup tier discount")
	}
	return r.evaluate(discount, now, subtotalCents), nil
}

func (r *resolver) evaluate(discount *models.Discount, now time.Time, subtotalCents int64) *Resolution {
	if !Eligible(discount, now, subtotalCents) {
		return nil
	}
	return &Resolution{
		Discount:    discount,
		AmountCents: Amount(discount, subtotalCents),
	}
}
