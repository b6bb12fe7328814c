package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rakapradana/kasirpoint-backend/pkg/db/models"
	pkgerrors "github.com/rakapradana/kasirpoint-backend/pkg/errors"
	"github.com/rakapradana/kasirpoint-backend/pkg/pagination"
)

// Page is one page of transaction history.
type Page struct {
	Transactions []models.Transaction
	NextCursor   string
}

// Query serves the read side of the transaction history.
type Query interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	GetByTranID(ctx context.Context, tranID string) (*models.Transaction, error)
}

type query struct {
	repo Repository
}

// NewQuery builds the transaction query service.
func NewQuery(repo Repository) (Query, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	return &query{repo: repo}, nil
}

func (q *query) List(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := q.repo.List(ctx, filter, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	page := &Page{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	page.Transactions = rows
	return page, nil
}

func (q *query) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	transaction, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return transaction, nil
}

func (q *query) GetByTranID(ctx context.Context, tranID string) (*models.Transaction, error) {
	tranID = strings.TrimSpace(tranID)
	if tranID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tran id is required")
	}
	transaction, err := q.repo.FindByTranID(ctx, tranID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return transaction, nil
}
