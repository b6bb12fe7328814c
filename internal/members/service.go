package members

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
)

type settingsLoader interface {
	Get(ctx context.Context) (*models.PointRuleSetting, error)
}

// Service validates member standing and applies the point engine when a sale
// commits.
type Service interface {
	Validate(ctx context.Context, id uuid.UUID) (*models.Member, error)
	ProcessPoints(ctx context.Context, tx *gorm.DB, member *models.Member, transactionID uuid.UUID, finalCents int64) (int64, error)
}

type service struct {
	repo     Repository
	settings settingsLoader
	now      func() time.Time
}

// NewService builds a member service backed by the provided stack.
func NewService(repo Repository, settings settingsLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	return &service{repo: repo, settings: settings, now: time.Now}, nil
}

// Validate loads the member and rejects banned accounts. The ban reason, when
// recorded, is surfaced verbatim to the cashier.
func (s *service) Validate(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	if member.IsBanned {
		reason := "Member is banned"
		if member.BanReason != nil && *member.BanReason != "" {
			reason = *member.BanReason
		}
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, reason)
	}

	return member, nil
}

// ProcessPoints computes and records the points earned by a committed sale.
// It must run inside the sale's transaction: the counters, the ledger entry
// and any tier advancement land or roll back together. Returns the points
// earned, which is zero when the point rules are disabled.
func (s *service) ProcessPoints(ctx context.Context, tx *gorm.DB, member *models.Member, transactionID uuid.UUID, finalCents int64) (int64, error) {
	if member == nil {
		return 0, nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading point rules: %w", err)
	}
	if settings == nil || !settings.Enabled || settings.BaseAmountCents <= 0 {
		return 0, nil
	}

	earned := computeEarned(settings, member.Tier, finalCents)
	if earned <= 0 {
		return 0, nil
	}

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.AddPoints(ctx, member.ID, earned); err != nil {
		return 0, fmt.Errorf("adding points: %w", err)
	}

	entry := &models.MemberPoint{
		MemberID:      member.ID,
		TransactionID: transactionID,
		PointsEarned:  earned,
		DateEarned:    s.now(),
	}
	if err := txRepo.InsertPointEntry(ctx, entry); err != nil {
		return 0, fmt.Errorf("recording point entry: %w", err)
	}

	if err := s.maybeAdvanceTier(ctx, txRepo, member, member.TotalPointsEarned+earned); err != nil {
		return 0, err
	}

	return earned, nil
}

// computeEarned floors twice, matching the receipt math: whole base points
// first, then the multiplied result.
func computeEarned(settings *models.PointRuleSetting, tier *models.MemberTier, finalCents int64) int64 {
	basePoints := finalCents / settings.BaseAmountCents
	if basePoints <= 0 {
		return 0
	}

	multiplier := settings.Multiplier
	if tier != nil && tier.Multiplier.IsPositive() {
		multiplier = multiplier.Mul(tier.Multiplier)
	}

	return decimal.NewFromInt(basePoints).
		Mul(multiplier).
		Floor().
		IntPart()
}

// maybeAdvanceTier moves the member to the highest tier their lifetime points
// now clear. Tiers are never lowered here.
func (s *service) maybeAdvanceTier(ctx context.Context, repo Repository, member *models.Member, totalEarned int64) error {
	tiers, err := repo.ListTiers(ctx)
	if err != nil {
		return fmt.Errorf("listing tiers: %w", err)
	}

	var target *models.MemberTier
	for i := range tiers {
		if tiers[i].MinPoints <= totalEarned {
			target = &tiers[i]
		}
	}
	if target == nil {
		return nil
	}
	if member.Tier != nil && target.MinPoints <= member.Tier.MinPoints {
		return nil
	}
	if member.TierID != nil && *member.TierID == target.ID {
		return nil
	}

	if err := repo.SetTier(ctx, member.ID, target.ID); err != nil {
		return fmt.Errorf("advancing tier: %w", err)
	}
	return nil
}
