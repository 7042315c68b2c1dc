package queue

import (
	"encoding/json"
	"errors"
	"reflect"
)

// Descriptor names a unit of work and carries its parameters. It is pure
// data: behavior is looked up by Kind in a Registry.
type Descriptor interface {
	Kind() string
}

// Encode serializes d and checks that the result decodes back into a value
// of the same type.
func Encode(d Descriptor) (json.RawMessage, error) {
	if d == nil {
		return nil, &SerializationError{Err: errors.New("nil descriptor")}
	}

	kind := d.Kind()
	if kind == "" {
		return nil, &SerializationError{Err: errors.New("empty kind")}
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return nil, &SerializationError{Kind: kind, Err: err}
	}

	t := reflect.TypeOf(d)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if err := json.Unmarshal(raw, reflect.New(t).Interface()); err != nil {
		return nil, &SerializationError{Kind: kind, Err: err}
	}

	return raw, nil
}
