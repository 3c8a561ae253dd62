package database

import (
	"context"
	"fmt"

	"github.com/lunagic/jobly/joblyservices/sqlbuild"
)

type insertedID struct {
	ID int64 `db:"id"`
}

// Insert writes one row with the payload fields as columns, in payload order.
// When autoIncrementColumn is set the generated identifier is returned.
func (service *Service) Insert(
	ctx context.Context,
	table string,
	values *sqlbuild.Payload,
	columns sqlbuild.ColumnMap,
	autoIncrementColumn string,
) (int64, error) {
	clause, err := sqlbuild.BuildInsertClause(values, columns)
	if err != nil {
		return 0, err
	}

	statement := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)`,
		sqlbuild.QuoteIdentifier(table),
		clause.Columns,
		clause.Placeholders,
	)

	if autoIncrementColumn == "" {
		_, err := service.Execute(ctx, statement, clause.Values...)
		return 0, err
	}

	if !service.driver.usesLastInsertId() {
		inserted, err := SelectSingle[insertedID](
			ctx,
			service,
			fmt.Sprintf(`%s RETURNING %s AS "id"`, statement, sqlbuild.QuoteIdentifier(autoIncrementColumn)),
			clause.Values...,
		)
		if err != nil {
			return 0, err
		}

		return inserted.ID, nil
	}

	result, err := service.Execute(ctx, statement, clause.Values...)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}
