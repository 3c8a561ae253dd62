package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
)

func NewDriverPostgres(config DriverPostgresConfig) Driver {
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return &driverPostgres{
		config: config,
	}
}

type DriverPostgresConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	Name    string
	SSLMode string
}

type driverPostgres struct {
	config DriverPostgresConfig
}

func (driver *driverPostgres) Open() (*sql.DB, error) {
	return sql.Open(
		"postgres",
		fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			driver.config.Host,
			driver.config.Port,
			driver.config.User,
			driver.config.Pass,
			driver.config.Name,
			driver.config.SSLMode,
		),
	)
}

func (driver *driverPostgres) convertTypeBool() string {
	return "boolean"
}

func (driver *driverPostgres) convertTypeFloat() string {
	return "double precision"
}

func (driver *driverPostgres) convertTypeInt() string {
	return "bigint"
}

func (driver *driverPostgres) convertTypeString() string {
	return "text"
}

func (driver *driverPostgres) likeOperator() string {
	return "ILIKE"
}

func (driver *driverPostgres) lockClause() string {
	return " FOR UPDATE"
}

func (driver *driverPostgres) mapError(err error) error {
	pqErr := &pq.Error{}
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	}

	return err
}

func (driver *driverPostgres) renderTableCreate(table Table) ([]string, error) {
	parts := []string{}
	for _, column := range table.columns {
		parts = append(parts, driver.renderColumn(column))
	}

	for _, column := range table.columns {
		if column.ForeignKey.TargetTable == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf(
			`CONSTRAINT "%s" FOREIGN KEY ("%s") REFERENCES "%s"("%s") ON DELETE CASCADE`,
			foreignKeyName(table, column),
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

func (driver *driverPostgres) renderColumn(column TableColumn) string {
	nullable := ""
	if !column.Nullable {
		nullable = " NOT NULL"
	}

	columnDefault := ""
	if column.Default != nil {
		columnDefault = fmt.Sprintf(" DEFAULT %s", *column.Default)
	}

	extras := ""
	if column.PrimaryKey {
		extras = " PRIMARY KEY"
		if column.AutoIncrement {
			extras = " GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
		}
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

func (driver *driverPostgres) tableExists(ctx context.Context, service *Service, tableName string) (bool, error) {
	return countTables(ctx, service, `
		SELECT COUNT(*) AS "count"
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_name = $1
	`, tableName)
}

func (driver *driverPostgres) usesLastInsertId() bool {
	return false
}

func (driver *driverPostgres) usesNumberedParameters() bool {
	return true
}
