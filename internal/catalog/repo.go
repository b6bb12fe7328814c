package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
)

// Repository exposes product lookups and the stock mutations used when a sale
// is committed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	DecrementBatchQty(ctx context.Context, batchID uuid.UUID, qty int) (bool, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository backed by the provided DB.
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

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Batches").
		Preload("Discounts").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads every product referenced by a cart in a single query, keyed
// by id. Missing products are simply absent from the map.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	result := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Batches").
		Preload("Discounts").
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}

	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// DecrementBatchQty conditionally subtracts qty from a batch. It reports false
// when the batch no longer holds enough units, leaving the row untouched.
func (r *repository) DecrementBatchQty(ctx context.Context, batchID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductBatch{}).
		Where("id = ? AND remaining_qty >= ?", batchID, qty).
		UpdateColumn("remaining_qty", gorm.Expr("remaining_qty - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DecrementStock conditionally subtracts qty from the product-level counter.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
