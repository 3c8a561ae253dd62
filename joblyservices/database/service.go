package database

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/lunagic/jobly/joblyservices/database/internal/utils"
)

type Service struct {
	driver            Driver
	standardLibraryDB *sql.DB
	preRunFuncs       []func(ctx context.Context, statement string, args []any) error
	postRunFuncs      []func(ctx context.Context, statement string, err error) error
}

func New(
	driver Driver,
	configFuncs ...ServiceConfigFunc,
) (*Service, error) {
	db, err := driver.Open()
	if err != nil {
		return nil, err
	}

	service := &Service{
		driver:            driver,
		standardLibraryDB: db,
		preRunFuncs:       []func(ctx context.Context, statement string, args []any) error{},
		postRunFuncs:      []func(ctx context.Context, statement string, err error) error{},
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(service); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return service, nil
}

func (service *Service) Ping(ctx context.Context) error {
	return service.standardLibraryDB.PingContext(ctx)
}

func (service *Service) Close() error {
	return service.standardLibraryDB.Close()
}

// LikeOperator is the case-insensitive pattern match operator of the driver.
func (service *Service) LikeOperator() string {
	return service.driver.likeOperator()
}

// Execute runs a statement written with `$n` placeholders.
func (service *Service) Execute(ctx context.Context, statement string, args ...any) (sql.Result, error) {
	preparedStatement, preparedArgs, err := service.prepare(ctx, statement, args)
	if err != nil {
		return nil, err
	}

	result, err := service.runner(ctx).ExecContext(ctx, preparedStatement, preparedArgs...)
	if err != nil {
		err = service.driver.mapError(err)
	}

	if postErr := service.postRun(ctx, preparedStatement, err); postErr != nil {
		return nil, postErr
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

// Select runs a query written with `$n` placeholders and scans every row into
// a T, matching result columns to the `db` tags of its fields.
func Select[T any](ctx context.Context, service *Service, query string, args ...any) ([]T, error) {
	target := []T{}
	if err := service.runSelect(ctx, query, args, &target); err != nil {
		return nil, err
	}

	return target, nil
}

func SelectSingle[T any](ctx context.Context, service *Service, query string, args ...any) (T, error) {
	rows, err := Select[T](ctx, service, query, args...)
	if err != nil {
		return *new(T), err
	}

	if len(rows) < 1 {
		return *new(T), ErrNoRows
	}

	return rows[0], nil
}

func (service *Service) prepare(ctx context.Context, statement string, args []any) (string, []any, error) {
	preparedStatement, preparedArgs, err := utils.Prepare(statement, args, service.driver.usesNumberedParameters())
	if err != nil {
		return "", nil, err
	}

	if preparedStatement == "" {
		return "", nil, ErrBlankQuery
	}

	for _, preRunFunc := range service.preRunFuncs {
		if err := preRunFunc(ctx, preparedStatement, preparedArgs); err != nil {
			return "", nil, err
		}
	}

	return preparedStatement, preparedArgs, nil
}

func (service *Service) postRun(ctx context.Context, statement string, runErr error) error {
	for _, postRunFunc := range service.postRunFuncs {
		if err := postRunFunc(ctx, statement, runErr); err != nil {
			return err
		}
	}

	return nil
}

func (service *Service) runSelect(
	ctx context.Context,
	query string,
	args []any,
	targetPointer any,
) error {
	preparedQuery, preparedArgs, err := service.prepare(ctx, query, args)
	if err != nil {
		return err
	}

	err = service.scanRows(ctx, preparedQuery, preparedArgs, targetPointer)
	if err != nil {
		err = service.driver.mapError(err)
	}

	if postErr := service.postRun(ctx, preparedQuery, err); postErr != nil {
		return postErr
	}

	return err
}

func (service *Service) scanRows(
	ctx context.Context,
	preparedQuery string,
	preparedArgs []any,
	targetPointer any,
) error {
	rows, err := service.runner(ctx).QueryContext(ctx, preparedQuery, preparedArgs...)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	target := reflect.ValueOf(targetPointer).Elem()
	rowType := target.Type().Elem()
	columnIndexes := utils.ColumnIndexes(rowType)

	fieldIndexesToUse := []int{}
	for _, column := range columns {
		fieldIndex, found := columnIndexes[column]
		if !found {
			return fmt.Errorf("column %s not found in target", column)
		}

		fieldIndexesToUse = append(fieldIndexesToUse, fieldIndex)
	}

	for rows.Next() {
		row := reflect.New(rowType).Elem()

		scanFields := []any{}
		for _, fieldIndexToUse := range fieldIndexesToUse {
			scanFields = append(scanFields, row.Field(fieldIndexToUse).Addr().Interface())
		}

		if err := rows.Scan(scanFields...); err != nil {
			return err
		}

		target.Set(reflect.Append(target, row))
	}

	return rows.Err()
}
