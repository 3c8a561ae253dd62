package sqlbuild

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

// Payload is an insertion ordered set of field/value pairs. The position of a
// key decides the placeholder index it is bound to, so iteration always
// follows the order keys were first set.
type Payload struct {
	keys   []string
	values map[string]any
}

func NewPayload() *Payload {
	return &Payload{
		keys:   []string{},
		values: map[string]any{},
	}
}

// Set stores value under key. Setting a key that already exists replaces the
// value and keeps its first position.
func (payload *Payload) Set(key string, value any) *Payload {
	if payload.values == nil {
		payload.values = map[string]any{}
	}

	if _, found := payload.values[key]; !found {
		payload.keys = append(payload.keys, key)
	}

	payload.values[key] = value

	return payload
}

func (payload *Payload) Get(key string) (any, bool) {
	if payload == nil {
		return nil, false
	}

	value, found := payload.values[key]

	return value, found
}

func (payload *Payload) Delete(key string) {
	if payload == nil {
		return
	}

	if _, found := payload.values[key]; !found {
		return
	}

	delete(payload.values, key)
	for i, existing := range payload.keys {
		if existing == key {
			payload.keys = append(payload.keys[:i:i], payload.keys[i+1:]...)
			break
		}
	}
}

func (payload *Payload) Len() int {
	if payload == nil {
		return 0
	}

	return len(payload.keys)
}

func (payload *Payload) Keys() []string {
	if payload == nil {
		return []string{}
	}

	return append([]string{}, payload.keys...)
}

func (payload *Payload) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if payload == nil {
			return
		}

		for _, key := range payload.keys {
			if !yield(key, payload.values[key]) {
				return
			}
		}
	}
}

// UnmarshalJSON reads a flat JSON object keeping the document key order.
// Numbers become int64 when they are integral and float64 otherwise.
func (payload *Payload) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil {
		return err
	}

	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return errors.New("payload must be a JSON object")
	}

	payload.keys = []string{}
	payload.values = map[string]any{}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("unexpected payload key: %v", token)
		}

		var raw any
		if err := decoder.Decode(&raw); err != nil {
			return err
		}

		value, err := normalizeValue(raw)
		if err != nil {
			return fmt.Errorf("payload key %s: %w", key, err)
		}

		payload.Set(key, value)
	}

	if _, err := decoder.Token(); err != nil {
		return err
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after payload object")
	}

	return nil
}

func (payload Payload) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString("{")
	for i, key := range payload.keys {
		if i > 0 {
			buffer.WriteString(",")
		}

		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		valueBytes, err := json.Marshal(payload.values[key])
		if err != nil {
			return nil, err
		}

		buffer.Write(keyBytes)
		buffer.WriteString(":")
		buffer.Write(valueBytes)
	}
	buffer.WriteString("}")

	return buffer.Bytes(), nil
}

func normalizeValue(raw any) (any, error) {
	switch typed := raw.(type) {
	case nil, string, bool:
		return typed, nil
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i, nil
		}

		return typed.Float64()
	}

	return nil, fmt.Errorf("unsupported value type %T", raw)
}
