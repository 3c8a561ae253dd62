package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lunagic/jobly/joblyservices/sqlbuild"
	"github.com/mattn/go-sqlite3"
)

func NewDriverSQLite(path string) Driver {
	return &driverSQLite{
		Path: path,
	}
}

type driverSQLite struct {
	Path string
}

func (driver *driverSQLite) Open() (*sql.DB, error) {
	return sql.Open(
		"sqlite3",
		fmt.Sprintf("file:%s?cache=shared&_foreign_keys=on&_txlock=immediate&_busy_timeout=5000", driver.Path),
	)
}

func (driver *driverSQLite) convertTypeBool() string {
	return "INTEGER"
}

func (driver *driverSQLite) convertTypeFloat() string {
	return "REAL"
}

func (driver *driverSQLite) convertTypeInt() string {
	return "INTEGER"
}

func (driver *driverSQLite) convertTypeString() string {
	return "TEXT"
}

// SQLite has no ILIKE, LIKE already ignores ASCII case
func (driver *driverSQLite) likeOperator() string {
	return "LIKE"
}

// Transactions begin IMMEDIATE, which already keeps other writers out
func (driver *driverSQLite) lockClause() string {
	return ""
}

func (driver *driverSQLite) mapError(err error) error {
	sqliteErr := sqlite3.Error{}
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	}

	return err
}

func (driver *driverSQLite) renderTableCreate(table Table) ([]string, error) {
	parts := []string{}
	for _, column := range table.columns {
		parts = append(parts, driver.renderColumn(column))
	}

	for _, column := range table.columns {
		if column.ForeignKey.TargetTable == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf(
			`FOREIGN KEY ("%s") REFERENCES "%s"("%s") ON DELETE CASCADE`,
			column.Name,
			column.ForeignKey.TargetTable,
			column.ForeignKey.TargetColumn,
		))
	}

	statements := []string{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (%s)`,
			sqlbuild.QuoteIdentifier(table.Name),
			strings.Join(parts, ", "),
		),
	}

	for _, index := range table.Indexes {
		unique := ""
		if index.Unique {
			unique = " UNIQUE"
		}

		statements = append(statements, fmt.Sprintf(
			`CREATE%s INDEX IF NOT EXISTS %s ON %s (%s)`,
			unique,
			sqlbuild.QuoteIdentifier(index.Name),
			sqlbuild.QuoteIdentifier(table.Name),
			quoteColumns(index.Columns),
		))
	}

	return statements, nil
}

func (driver *driverSQLite) renderColumn(column TableColumn) string {
	if column.PrimaryKey && column.AutoIncrement {
		// Only an INTEGER PRIMARY KEY can use AUTOINCREMENT
		return fmt.Sprintf(`%s INTEGER PRIMARY KEY AUTOINCREMENT`, sqlbuild.QuoteIdentifier(column.Name))
	}

	extras := ""
	if column.PrimaryKey {
		extras = " PRIMARY KEY"
	}

	nullable := ""
	if !column.Nullable {
		nullable = " NOT NULL"
	}

	columnDefault := ""
	if column.Default != nil {
		columnDefault = fmt.Sprintf(" DEFAULT %s", *column.Default)
	}

	return fmt.Sprintf(
		`%s %s%s%s%s`,
		sqlbuild.QuoteIdentifier(column.Name),
		column.Type,
		extras,
		nullable,
		columnDefault,
	)
}

func (driver *driverSQLite) tableExists(ctx context.Context, service *Service, tableName string) (bool, error) {
	return countTables(ctx, service, `
		SELECT COUNT(*) AS "count"
		FROM sqlite_master
		WHERE type = 'table'
		AND name = $1
	`, tableName)
}

func (driver *driverSQLite) usesLastInsertId() bool {
	return true
}

func (driver *driverSQLite) usesNumberedParameters() bool {
	return false
}
