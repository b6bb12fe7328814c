package members

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
)

// Repository exposes member lookups and the point mutations applied when a
// sale commits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	AddPoints(ctx context.Context, id uuid.UUID, earned int64) error
	SetTier(ctx context.Context, id, tierID uuid.UUID) error
	InsertPointEntry(ctx context.Context, entry *models.MemberPoint) error
	ListTiers(ctx context.Context) ([]models.MemberTier, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a member repository backed by the provided DB.
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

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Preload("Tier").
		Preload("Discounts").
		Where("id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddPoints advances both counters together. total_points_earned only ever
// grows; redemptions draw down total_points elsewhere.
func (r *repository) AddPoints(ctx context.Context, id uuid.UUID, earned int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"total_points":        gorm.Expr("total_points + ?", earned),
			"total_points_earned": gorm.Expr("total_points_earned + ?", earned),
		}).Error
}

func (r *repository) SetTier(ctx context.Context, id, tierID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		UpdateColumn("tier_id", tierID).Error
}

func (r *repository) InsertPointEntry(ctx context.Context, entry *models.MemberPoint) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListTiers(ctx context.Context) ([]models.MemberTier, error) {
	var tiers []models.MemberTier
	err := r.db.WithContext(ctx).
		Order("min_points ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}
