package database

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lunagic/jobly/joblyservices/database/internal/utils"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
)

var ErrNoPrimaryKey = errors.New("entity has no primary key")

// NewRepository reads the table name, column list and primary key of T from
// its TableStructure and `db` tags.
func NewRepository[Key any, T Entity](service *Service) (Repository[Key, T], error) {
	entity := *new(T)

	repository := Repository[Key, T]{
		service: service,
		table:   entity.TableStructure().Name,
	}

	columns := []string{}
	if err := utils.LoopOverStructFields(reflect.ValueOf(entity), func(fieldDefinition reflect.StructField, fieldValue reflect.Value) error {
		tag := utils.ParseTag(fieldDefinition.Tag)
		if tag.Column == "" {
			return nil
		}

		columns = append(columns, sqlbuild.QuoteIdentifier(tag.Column))
		if tag.PrimaryKey {
			repository.primaryKey = tag.Column
			repository.autoIncrement = tag.AutoIncrement
		}

		return nil
	}); err != nil {
		return Repository[Key, T]{}, err
	}

	if repository.primaryKey == "" {
		return Repository[Key, T]{}, ErrNoPrimaryKey
	}

	repository.selectColumns = strings.Join(columns, ", ")

	return repository, nil
}

type Repository[Key any, T Entity] struct {
	service       *Service
	table         string
	primaryKey    string
	autoIncrement bool
	selectColumns string
}

func (repository Repository[Key, T]) Service() *Service {
	return repository.service
}

func (repository Repository[Key, T]) baseQuery() string {
	return fmt.Sprintf(
		`SELECT %s FROM %s`,
		repository.selectColumns,
		sqlbuild.QuoteIdentifier(repository.table),
	)
}

// SelectMultiple returns every row matching predicate ordered by orderBy, a
// list of column names.
func (repository Repository[Key, T]) SelectMultiple(ctx context.Context, predicate sqlbuild.Predicate, orderBy ...string) ([]T, error) {
	query := repository.baseQuery()
	if clause := predicate.Clause(); clause != "" {
		query += " " + clause
	}

	if len(orderBy) > 0 {
		query += " ORDER BY " + quoteColumns(orderBy)
	}

	return Select[T](ctx, repository.service, query, predicate.Values...)
}

func (repository Repository[Key, T]) SelectSingle(ctx context.Context, key Key) (T, error) {
	return SelectSingle[T](
		ctx,
		repository.service,
		fmt.Sprintf(`%s WHERE %s = $1`, repository.baseQuery(), sqlbuild.QuoteIdentifier(repository.primaryKey)),
		key,
	)
}

// Lock selects the row with the given key and holds a write lock on it until
// the surrounding Transaction ends. Outside a transaction it is a plain select.
func (repository Repository[Key, T]) Lock(ctx context.Context, key Key) (T, error) {
	return SelectSingle[T](
		ctx,
		repository.service,
		fmt.Sprintf(
			`%s WHERE %s = $1%s`,
			repository.baseQuery(),
			sqlbuild.QuoteIdentifier(repository.primaryKey),
			repository.service.driver.lockClause(),
		),
		key,
	)
}

// Insert writes values and returns the generated key when the primary key is
// auto incremented.
func (repository Repository[Key, T]) Insert(ctx context.Context, values *sqlbuild.Payload, columns sqlbuild.ColumnMap) (int64, error) {
	autoIncrementColumn := ""
	if repository.autoIncrement {
		autoIncrementColumn = repository.primaryKey
	}

	return repository.service.Insert(ctx, repository.table, values, columns, autoIncrementColumn)
}

// Update applies the fields of values to the row with the given key and
// returns the row as stored afterwards. Missing rows give ErrNoRows. The
// primary key itself must not be part of values.
func (repository Repository[Key, T]) Update(ctx context.Context, key Key, values *sqlbuild.Payload, columns sqlbuild.ColumnMap) (T, error) {
	setClause, err := sqlbuild.BuildSetClause(values, columns)
	if err != nil {
		return *new(T), err
	}

	result, err := repository.service.Execute(
		ctx,
		fmt.Sprintf(
			`UPDATE %s SET %s WHERE %s = $%d`,
			sqlbuild.QuoteIdentifier(repository.table),
			setClause.Clause,
			sqlbuild.QuoteIdentifier(repository.primaryKey),
			setClause.NextPlaceholder(),
		),
		append(setClause.Values, key)...,
	)
	if err != nil {
		return *new(T), err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return *new(T), err
	}

	if rowsAffected == 0 {
		return *new(T), ErrNoRows
	}

	return repository.SelectSingle(ctx, key)
}

func (repository Repository[Key, T]) Delete(ctx context.Context, key Key) error {
	result, err := repository.service.Execute(
		ctx,
		fmt.Sprintf(
			`DELETE FROM %s WHERE %s = $1`,
			sqlbuild.QuoteIdentifier(repository.table),
			sqlbuild.QuoteIdentifier(repository.primaryKey),
		),
		key,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNoRows
	}

	return nil
}
