package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
)

func NewDriverMySQL(config DriverMySQLConfig) Driver {
	return &driverMySQL{
		config: config,
	}
}

type DriverMySQLConfig struct {
	Host string
	Port int
	User string
	Pass string
	Name string
}

type driverMySQL struct {
	config DriverMySQLConfig
}

func (driver *driverMySQL) Open() (*sql.DB, error) {
	_ = mysql.SetLogger(log.New(io.Discard, "", log.LstdFlags))

	config := mysql.NewConfig()
	config.User = driver.config.User
	config.Passwd = driver.config.Pass
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", driver.config.Host, driver.config.Port)
	config.DBName = driver.config.Name
	config.ParseTime = true
	// Report matched rather than changed rows so an UPDATE that writes the
	// same values still counts as found
	config.ClientFoundRows = true
	// Identifiers are double quoted everywhere
	config.Params = map[string]string{
		"sql_mode": "'ANSI_QUOTES,STRICT_TRANS_TABLES'",
	}

	return sql.Open("mysql", config.FormatDSN())
}

func (driver *driverMySQL) convertTypeBool() string {
	return "boolean"
}

func (driver *driverMySQL) convertTypeFloat() string {
	return "double"
}

func (driver *driverMySQL) convertTypeInt() string {
	return "bigint"
}

func (driver *driverMySQL) convertTypeString() string {
	return "varchar(255)"
}

func (driver *driverMySQL) likeOperator() string {
	return "LIKE"
}

func (driver *driverMySQL) lockClause() string {
	return " FOR UPDATE"
}

func (driver *driverMySQL) mapError(err error) error {
	mysqlErr := &mysql.MySQLError{}
	if !errors.As(err, &mysqlErr) {
		return err
	}

	switch mysqlErr.Number {
	case 1062: // ER_DUP_ENTRY
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case 1451, 1452: // ER_ROW_IS_REFERENCED_2, ER_NO_REFERENCED_ROW_2
		return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
	}

	return err
}

func (driver *driverMySQL) renderTableCreate(table Table) ([]string, error) {
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

	// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes live in the table
	for _, index := range table.Indexes {
		kind := "KEY"
		if index.Unique {
			kind = "UNIQUE KEY"
		}

		parts = append(parts, fmt.Sprintf(
			`%s %s (%s)`,
			kind,
			sqlbuild.QuoteIdentifier(index.Name),
			quoteColumns(index.Columns),
		))
	}

	return []string{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (%s)`,
			sqlbuild.QuoteIdentifier(table.Name),
			strings.Join(parts, ", "),
		),
	}, nil
}

func (driver *driverMySQL) renderColumn(column TableColumn) string {
	nullable := " NOT NULL"
	if column.Nullable {
		nullable = " NULL"
	}

	columnDefault := ""
	if column.Default != nil {
		columnDefault = fmt.Sprintf(" DEFAULT %s", *column.Default)
	}

	extras := ""
	if column.AutoIncrement {
		extras += " AUTO_INCREMENT"
	}
	if column.PrimaryKey {
		extras += " PRIMARY KEY"
	}

	return fmt.Sprintf(
		`%s %s%s%s%s`,
		sqlbuild.QuoteIdentifier(column.Name),
		column.Type,
		nullable,
		columnDefault,
		extras,
	)
}

func (driver *driverMySQL) tableExists(ctx context.Context, service *Service, tableName string) (bool, error) {
	return countTables(ctx, service, `
		SELECT COUNT(*) AS "count"
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		AND table_name = $1
	`, tableName)
}

func (driver *driverMySQL) usesLastInsertId() bool {
	return true
}

func (driver *driverMySQL) usesNumberedParameters() bool {
	return false
}
