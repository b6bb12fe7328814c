package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	"github.com/rakapradana/kasirpoint-backend/pkg/enums"
)

// Repository exposes discount lookups plus the usage-counter mutation applied
// when a sale commits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
	FindGlobalByCode(ctx context.Context, code string) (*models.Discount, error)
	FindForMember(ctx context.Context, memberID, discountID uuid.UUID) (*models.Discount, error)
	FindForTier(ctx context.Context, tierID, discountID uuid.UUID) (*models.Discount, error)
	IncrementUsage(ctx context.Context, id uuid.UUID, uses int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discount repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) FindGlobalByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Where("code = ? AND scope = ?", code, enums.DiscountScopeGlobal).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) FindForMember(ctx context.Context, memberID, discountID uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Joins("JOIN member_discounts md ON md.discount_id = discounts.id").
		Where("md.member_id = ? AND discounts.id = ?", memberID, discountID).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *repository) FindForTier(ctx context.Context, tierID, discountID uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Joins("JOIN member_tier_discounts mtd ON mtd.discount_id = discounts.id").
		Where("mtd.member_tier_id = ? AND discounts.id = ?", tierID, discountID).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// IncrementUsage bumps used_count by the number of times the discount was
// applied in a single sale, guarding the max-uses cap in the same statement.
// It reports false when the cap would be exceeded.
func (r *repository) IncrementUsage(ctx context.Context, id uuid.UUID, uses int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ? AND (max_uses IS NULL OR used_count + ? <= max_uses)", id, uses).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", uses))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
