package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
)

// Repository reads and writes the single point-rule row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetPointRules(ctx context.Context) (*models.PointRuleSetting, error)
	SavePointRules(ctx context.Context, rules *models.PointRuleSetting) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository backed by the provided DB.
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

func (r *repository) GetPointRules(ctx context.Context) (*models.PointRuleSetting, error) {
	var rules models.PointRuleSetting
	err := r.db.WithContext(ctx).
		Where("id = ?", models.PointRuleSettingID).
		First(&rules).Error
	if err != nil {
		return nil, err
	}
	return &rules, nil
}

func (r *repository) SavePointRules(ctx context.Context, rules *models.PointRuleSetting) error {
	rules.ID = models.PointRuleSettingID
	return r.db.WithContext(ctx).Save(rules).Error
}
