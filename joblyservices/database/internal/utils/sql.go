package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	placeholderFinder = regexp.MustCompile(`\$(\d+)`)
	spaceFinder       = regexp.MustCompile(`(?m)\s^\s+`)
)

// Prepare collapses indentation in statement and, for drivers without
// numbered parameters, rewrites every `$n` into `?` with args reordered to
// follow the placeholders as they appear.
func Prepare(statement string, args []any, numberedParams bool) (string, []any, error) {
	statement = strings.TrimSpace(spaceFinder.ReplaceAllString(statement, " "))

	if numberedParams {
		return statement, args, nil
	}

	var rebindErr error
	preparedArgs := []any{}
	preparedStatement := placeholderFinder.ReplaceAllStringFunc(statement, func(s string) string {
		index, err := strconv.Atoi(s[1:])
		if err != nil || index < 1 || index > len(args) {
			rebindErr = fmt.Errorf("placeholder %s has no matching argument", s)
			return s
		}

		preparedArgs = append(preparedArgs, args[index-1])

		return "?"
	})
	if rebindErr != nil {
		return "", nil, rebindErr
	}

	return preparedStatement, preparedArgs, nil
}
