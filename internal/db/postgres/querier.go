// Package postgres — querier.go определяет минимальный интерфейс выполнения
// запросов, которому удовлетворяют и *pgxpool.Pool, и pgx.Tx.
// Репозитории принимают Querier там, где метод должен уметь работать
// как на пуле, так и внутри внешней транзакции.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier — общий знаменатель pgxpool.Pool и pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
