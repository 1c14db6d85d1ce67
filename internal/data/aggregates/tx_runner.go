package aggregates

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/platform/dbctx"
)

var errNilDB = errors.New("transaction runner has nil db")

// TxRunner provides the transaction boundary for multi-row writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errNilDB
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// Savepoint runs fn in a nested transaction on dbc.Tx. An error from fn rolls back
// to the savepoint only; the enclosing transaction stays usable.
func Savepoint(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx == nil {
		return fn(dbc)
	}
	return dbc.Tx.Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}
