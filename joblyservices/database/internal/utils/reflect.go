package utils

import "reflect"

func LoopOverStructFields(value reflect.Value, fieldHandler func(fieldDefinition reflect.StructField, fieldValue reflect.Value) error) error {
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return nil
	}

	for i := range value.NumField() {
		fieldDefinition := value.Type().Field(i)
		if !fieldDefinition.IsExported() {
			continue
		}

		if err := fieldHandler(fieldDefinition, value.Field(i)); err != nil {
			return err
		}
	}

	return nil
}

// ColumnIndexes maps db tag column names to struct field indexes of t.
func ColumnIndexes(t reflect.Type) map[string]int {
	indexes := map[string]int{}
	if t.Kind() != reflect.Struct {
		return indexes
	}

	for i := range t.NumField() {
		fieldDefinition := t.Field(i)
		if !fieldDefinition.IsExported() {
			continue
		}

		tag := ParseTag(fieldDefinition.Tag)
		if tag.Column == "" {
			continue
		}

		indexes[tag.Column] = i
	}

	return indexes
}
