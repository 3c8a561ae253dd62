package sqlbuild

import (
	"fmt"
	"strings"
)

// ColumnMap translates logical field names into physical column names.
// Fields without an entry are used as the column name unchanged.
type ColumnMap map[string]string

func (columns ColumnMap) Resolve(field string) string {
	if column, found := columns[field]; found && column != "" {
		return column
	}

	return field
}

type SetClause struct {
	Clause string
	Values []any
}

// NextPlaceholder is the index of the first parameter after the clause, used
// for the row identifier of the surrounding UPDATE.
func (clause SetClause) NextPlaceholder() int {
	return len(clause.Values) + 1
}

// BuildSetClause renders `"column"=$n` assignments for every field of the
// payload in insertion order, with Values[n-1] bound to $n.
func BuildSetClause(payload *Payload, columns ColumnMap) (SetClause, error) {
	if payload.Len() == 0 {
		return SetClause{}, ErrEmptyPayload
	}

	sets := make([]string, 0, payload.Len())
	values := make([]any, 0, payload.Len())
	for field, value := range payload.All() {
		values = append(values, value)
		sets = append(sets, fmt.Sprintf(`%s=$%d`, QuoteIdentifier(columns.Resolve(field)), len(values)))
	}

	return SetClause{
		Clause: strings.Join(sets, ", "),
		Values: values,
	}, nil
}

type InsertClause struct {
	Columns      string
	Placeholders string
	Values       []any
}

// BuildInsertClause renders the column list and matching `$n` placeholders of
// an INSERT for every field of the payload in insertion order.
func BuildInsertClause(payload *Payload, columns ColumnMap) (InsertClause, error) {
	if payload.Len() == 0 {
		return InsertClause{}, ErrEmptyPayload
	}

	names := make([]string, 0, payload.Len())
	placeholders := make([]string, 0, payload.Len())
	values := make([]any, 0, payload.Len())
	for field, value := range payload.All() {
		values = append(values, value)
		names = append(names, QuoteIdentifier(columns.Resolve(field)))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(values)))
	}

	return InsertClause{
		Columns:      strings.Join(names, ", "),
		Placeholders: strings.Join(placeholders, ", "),
		Values:       values,
	}, nil
}

// QuoteIdentifier wraps name in double quotes, doubling any embedded quote.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
