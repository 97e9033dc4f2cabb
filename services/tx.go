package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"booktable-api/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTxAttempts = 3

func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

// inTx runs fn in one transaction bound to ctx. On PostgreSQL the
// transaction is serializable and retried on serialization failures.
// SQLite runs on a single connection, which already serialises writers.
func (d *Deps) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := d.DB.WithContext(ctx)
	var opts []*sql.TxOptions
	if isPostgres(db) {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = db.Transaction(fn, opts...)
		if !isSerializationFailure(err) {
			return wrapStorage(err)
		}
	}
	return apperr.Conflict("the slot changed while booking, please retry")
}

// wrapStorage passes domain errors through and marks anything else internal.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal("database error", err)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// forUpdate adds a row lock where the dialect supports one.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if isPostgres(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal("database error", err)
}
