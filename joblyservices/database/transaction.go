package database

import (
	"context"
	"database/sql"
	"errors"
)

type statementRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type transactionContextKey struct {
	service *Service
}

// Transaction runs run with a ctx that sends every statement of this service
// through one transaction. It commits when run returns nil and rolls back
// otherwise. Calls made inside run join the transaction already open.
func (service *Service) Transaction(ctx context.Context, run func(ctx context.Context) error) error {
	if _, found := ctx.Value(transactionContextKey{service: service}).(*sql.Tx); found {
		return run(ctx)
	}

	tx, err := service.standardLibraryDB.BeginTx(ctx, nil)
	if err != nil {
		return service.driver.mapError(err)
	}

	if err := run(context.WithValue(ctx, transactionContextKey{service: service}, tx)); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return service.driver.mapError(err)
	}

	return nil
}

func (service *Service) runner(ctx context.Context) statementRunner {
	if tx, found := ctx.Value(transactionContextKey{service: service}).(*sql.Tx); found {
		return tx
	}

	return service.standardLibraryDB
}
