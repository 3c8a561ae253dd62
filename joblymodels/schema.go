package joblymodels

import (
	"fmt"
	"net/mail"

	"github.com/lunagic/jobly/joblyservices/sqlbuild"
	"github.com/lunagic/jobly/joblytools"
)

type fieldKind string

const (
	fieldString  fieldKind = "string"
	fieldEmail   fieldKind = "email"
	fieldInteger fieldKind = "integer"
	fieldNumber  fieldKind = "number"
	fieldBoolean fieldKind = "boolean"
)

type fieldRule struct {
	Kind      fieldKind
	Nullable  bool
	MinLength int
	Minimum   *float64
	Maximum   *float64
}

// schema lists the fields a payload may carry and which of them must be
// present.
type schema struct {
	fields   map[string]fieldRule
	required []string
}

func (s schema) validate(payload *sqlbuild.Payload) error {
	missing := joblytools.Filter(s.required, func(field string) bool {
		_, found := payload.Get(field)
		return !found
	})
	if len(missing) > 0 {
		return ErrValidation{Field: missing[0], Reason: "is required"}
	}

	for field, value := range payload.All() {
		rule, found := s.fields[field]
		if !found {
			return ErrValidation{Field: field, Reason: "is not allowed"}
		}

		if err := rule.check(field, value); err != nil {
			return err
		}
	}

	return nil
}

// forUpdate returns the schema of a partial update: nothing is required and
// the fixed fields are not allowed.
func (s schema) forUpdate(fixed ...string) schema {
	result := schema{
		fields:   map[string]fieldRule{},
		required: []string{},
	}

	for field, rule := range s.fields {
		result.fields[field] = rule
	}
	for _, field := range fixed {
		delete(result.fields, field)
	}

	return result
}

func (rule fieldRule) check(field string, value any) error {
	if value == nil {
		if rule.Nullable {
			return nil
		}

		return ErrValidation{Field: field, Reason: "must not be null"}
	}

	switch rule.Kind {
	case fieldString, fieldEmail:
		text, ok := value.(string)
		if !ok {
			return ErrValidation{Field: field, Reason: "must be a string"}
		}

		if len(text) < rule.MinLength {
			return ErrValidation{Field: field, Reason: fmt.Sprintf("must be at least %d characters", rule.MinLength)}
		}

		if rule.Kind == fieldEmail {
			if _, err := mail.ParseAddress(text); err != nil {
				return ErrValidation{Field: field, Reason: "must be an email address"}
			}
		}
	case fieldBoolean:
		if _, ok := value.(bool); !ok {
			return ErrValidation{Field: field, Reason: "must be a boolean"}
		}
	case fieldInteger:
		number, ok := integerValue(value)
		if !ok {
			return ErrValidation{Field: field, Reason: "must be an integer"}
		}

		return rule.checkRange(field, float64(number))
	case fieldNumber:
		number, ok := numberValue(value)
		if !ok {
			return ErrValidation{Field: field, Reason: "must be a number"}
		}

		return rule.checkRange(field, number)
	}

	return nil
}

func (rule fieldRule) checkRange(field string, number float64) error {
	if rule.Minimum != nil && number < *rule.Minimum {
		return ErrValidation{Field: field, Reason: fmt.Sprintf("must be at least %v", *rule.Minimum)}
	}

	if rule.Maximum != nil && number > *rule.Maximum {
		return ErrValidation{Field: field, Reason: fmt.Sprintf("must be at most %v", *rule.Maximum)}
	}

	return nil
}

func integerValue(value any) (int64, bool) {
	switch typed := value.(type) {
	case int:
		return int64(typed), true
	case int64:
		return typed, true
	}

	return 0, false
}

func numberValue(value any) (float64, bool) {
	if integer, ok := integerValue(value); ok {
		return float64(integer), true
	}

	typed, ok := value.(float64)

	return typed, ok
}

func bound(value float64) *float64 {
	return &value
}
