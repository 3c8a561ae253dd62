package joblymodels

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateJob = errors.New("duplicate job")
)

type ErrValidation struct {
	Field  string
	Reason string
}

func (err ErrValidation) Error() string {
	return fmt.Sprintf("%s %s", err.Field, err.Reason)
}
