package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/travel_safety_system/internal/service"
)

// DB - подмножество методов pgxpool.Pool, которым пользуются репозитории
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// dbError помечает ошибку драйвера как ошибку хранилища, сохраняя исходную причину
func dbError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, service.ErrPersistence, err)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

type scanner interface {
	Scan(dest ...any) error
}
