package database

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrNoRows              = errors.New("no rows found")
	ErrBlankQuery          = errors.New("blank query")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

type Driver interface {
	Open() (*sql.DB, error)
	convertTypeBool() string
	convertTypeFloat() string
	convertTypeInt() string
	convertTypeString() string
	likeOperator() string
	lockClause() string
	mapError(err error) error
	renderTableCreate(table Table) ([]string, error)
	tableExists(ctx context.Context, service *Service, tableName string) (bool, error)
	usesLastInsertId() bool
	usesNumberedParameters() bool
}

type tableCount struct {
	Count int64 `db:"count"`
}

func countTables(ctx context.Context, service *Service, query string, tableName string) (bool, error) {
	result, err := SelectSingle[tableCount](ctx, service, query, tableName)
	if err != nil {
		return false, err
	}

	return result.Count > 0, nil
}
