package database

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lunagic/jobly/joblyservices/database/internal/utils"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
)

type ErrUnsupportedType struct {
	Type string
}

func (err ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", err.Type)
}

type Entity interface {
	TableStructure() Table
}

type Table struct {
	Name    string
	Indexes []TableIndex
	columns []TableColumn
}

type TableColumn struct {
	Name          string
	Type          string
	Default       *string
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	ForeignKey    tableForeignKey
}

type TableIndex struct {
	Name    string
	Columns []string
	Unique  bool
}

type tableForeignKey struct {
	TargetTable  string
	TargetColumn string
}

func translateTypeFromService(driver Driver, t reflect.Type) (string, error) {
	switch t.Kind() {
	case reflect.Bool:
		return driver.convertTypeBool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return driver.convertTypeInt(), nil
	case reflect.Float32, reflect.Float64:
		return driver.convertTypeFloat(), nil
	case reflect.String:
		return driver.convertTypeString(), nil
	}

	return "", ErrUnsupportedType{
		Type: t.String(),
	}
}

func fieldToColumn(driver Driver, field reflect.StructField) (TableColumn, error) {
	tag := utils.ParseTag(field.Tag)

	column := TableColumn{
		Name: tag.Column,
		ForeignKey: tableForeignKey{
			TargetTable:  tag.ForeignKeyTargetTable,
			TargetColumn: tag.ForeignKeyTargetColumn,
		},
		PrimaryKey:    tag.PrimaryKey,
		AutoIncrement: tag.AutoIncrement,
		Default: func() *string {
			if !tag.HasDefault {
				return nil
			}

			return &tag.Default
		}(),
	}

	fieldType := field.Type
	if fieldType.Kind() == reflect.Pointer {
		column.Nullable = true
		fieldType = fieldType.Elem()
	}

	columnType, err := translateTypeFromService(driver, fieldType)
	if err != nil {
		return TableColumn{}, err
	}
	column.Type = columnType

	return column, nil
}

func (table *Table) hydrateColumns(driver Driver, entity Entity) error {
	columns := []TableColumn{}
	if err := utils.LoopOverStructFields(reflect.ValueOf(entity), func(fieldDefinition reflect.StructField, fieldValue reflect.Value) error {
		if utils.ParseTag(fieldDefinition.Tag).Column == "" {
			return nil
		}

		column, err := fieldToColumn(driver, fieldDefinition)
		if err != nil {
			return err
		}

		columns = append(columns, column)

		return nil
	}); err != nil {
		return err
	}

	table.columns = columns

	return nil
}

func (table Table) Columns() []TableColumn {
	return append([]TableColumn{}, table.columns...)
}

func foreignKeyName(table Table, column TableColumn) string {
	return fmt.Sprintf(
		"fk_%s_%s_%s_%s",
		table.Name,
		column.Name,
		column.ForeignKey.TargetTable,
		column.ForeignKey.TargetColumn,
	)
}

func quoteColumns(columns []string) string {
	quoted := make([]string, 0, len(columns))
	for _, column := range columns {
		quoted = append(quoted, sqlbuild.QuoteIdentifier(column))
	}

	return strings.Join(quoted, ", ")
}
