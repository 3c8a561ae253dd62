package sqlbuild

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

type SearchFilters struct {
	Title     *string
	MinSalary *float64
	HasEquity *bool
}

// SearchColumns names the columns the search filters apply to and the
// case-insensitive match operator of the target database.
type SearchColumns struct {
	Title  string
	Salary string
	Equity string
	Like   string
}

var DefaultSearchColumns = SearchColumns{
	Title:  "title",
	Salary: "salary",
	Equity: "equity",
	Like:   "ILIKE",
}

type Predicate struct {
	Where  string
	Values []any
}

// Clause returns the predicate prefixed with WHERE, or nothing when no filter
// applies.
func (predicate Predicate) Clause() string {
	if predicate.Where == "" {
		return ""
	}

	return "WHERE " + predicate.Where
}

// BuildSearchPredicate renders the filters that are present, in the order
// title, minimum salary, equity. An absent HasEquity applies no equity filter.
func BuildSearchPredicate(filters SearchFilters, columns SearchColumns) (Predicate, error) {
	if columns.Like == "" {
		columns.Like = DefaultSearchColumns.Like
	}

	predicates := []string{}
	values := []any{}

	if filters.Title != nil {
		values = append(values, "%"+*filters.Title+"%")
		predicates = append(predicates, fmt.Sprintf(
			"%s %s $%d",
			QuoteIdentifier(columns.Title),
			columns.Like,
			len(values),
		))
	}

	if filters.MinSalary != nil {
		minSalary := *filters.MinSalary
		if math.IsNaN(minSalary) || math.IsInf(minSalary, 0) || minSalary < 0 || minSalary >= math.MaxInt64 {
			return Predicate{}, ErrInvalidFilter{
				Filter: "minSalary",
				Value:  strconv.FormatFloat(minSalary, 'f', -1, 64),
			}
		}

		// Salaries are whole numbers, so a fractional threshold rounds up
		values = append(values, int64(math.Ceil(minSalary)))
		predicates = append(predicates, fmt.Sprintf(
			"%s >= $%d",
			QuoteIdentifier(columns.Salary),
			len(values),
		))
	}

	if filters.HasEquity != nil {
		equity := QuoteIdentifier(columns.Equity)
		if *filters.HasEquity {
			predicates = append(predicates, fmt.Sprintf("%s > 0", equity))
		} else {
			predicates = append(predicates, fmt.Sprintf("(%s = 0 OR %s IS NULL)", equity, equity))
		}
	}

	return Predicate{
		Where:  strings.Join(predicates, " AND "),
		Values: values,
	}, nil
}

// ParseSearchFilters reads title, minSalary and hasEquity from a query string.
func ParseSearchFilters(query url.Values) (SearchFilters, error) {
	filters := SearchFilters{}

	if query.Has("title") {
		title := query.Get("title")
		filters.Title = &title
	}

	if query.Has("minSalary") {
		raw := query.Get("minSalary")
		minSalary, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return SearchFilters{}, ErrInvalidFilter{
				Filter: "minSalary",
				Value:  raw,
			}
		}
		filters.MinSalary = &minSalary
	}

	if query.Has("hasEquity") {
		raw := query.Get("hasEquity")
		hasEquity, err := strconv.ParseBool(raw)
		if err != nil {
			return SearchFilters{}, ErrInvalidFilter{
				Filter: "hasEquity",
				Value:  raw,
			}
		}
		filters.HasEquity = &hasEquity
	}

	return filters, nil
}
