package utils

import (
	"reflect"
	"strings"
)

type DBTag struct {
	Column                 string
	PrimaryKey             bool
	AutoIncrement          bool
	Unique                 bool
	ForeignKeyTargetTable  string
	ForeignKeyTargetColumn string
	Default                string
	HasDefault             bool
}

// ParseTag reads `db:"column,primaryKey,autoIncrement,unique,default=x,foreignKey=table.column"`.
func ParseTag(tagString reflect.StructTag) DBTag {
	parts := strings.Split(tagString.Get("db"), ",")

	tag := DBTag{
		Column: parts[0],
	}

	if tag.Column == "-" {
		return DBTag{}
	}

	for _, part := range parts[1:] {
		switch {
		case part == "primaryKey":
			tag.PrimaryKey = true
		case part == "autoIncrement":
			tag.AutoIncrement = true
		case part == "unique":
			tag.Unique = true
		case strings.HasPrefix(part, "default="):
			tag.Default = strings.TrimPrefix(part, "default=")
			tag.HasDefault = true
		case strings.HasPrefix(part, "foreignKey="):
			target := strings.Split(strings.TrimPrefix(part, "foreignKey="), ".")
			if len(target) == 2 {
				tag.ForeignKeyTargetTable = target[0]
				tag.ForeignKeyTargetColumn = target[1]
			}
		}
	}

	return tag
}
