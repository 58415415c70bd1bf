package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok && tx != nil
}

// UnitOfWork groups repository writes into one transaction carried by ctx.
// A nested Do joins the transaction already in ctx.
type UnitOfWork struct {
	Pool *pgxpool.Pool
}

// Do commits when fn returns nil and rolls back otherwise.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}
	return pgx.BeginFunc(ctx, u.Pool, func(tx pgx.Tx) error {
		return fn(withTx(ctx, tx))
	})
}
