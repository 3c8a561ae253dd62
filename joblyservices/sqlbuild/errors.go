package sqlbuild

import (
	"errors"
	"fmt"
)

// ErrEmptyPayload is returned when an update carries no fields, which would
// otherwise render a SET with no assignments.
var ErrEmptyPayload = errors.New("no data")

type ErrInvalidFilter struct {
	Filter string
	Value  string
}

func (err ErrInvalidFilter) Error() string {
	return fmt.Sprintf("invalid value for filter %s: %q", err.Filter, err.Value)
}
