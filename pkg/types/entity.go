package types

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrFieldAbsent is returned when an attribute is missing or null.
	ErrFieldAbsent = errors.New("field absent")

	// ErrFieldMalformed is returned when an attribute exists but has a JSON
	// type the caller cannot use.
	ErrFieldMalformed = errors.New("field malformed")
)

// Entity is one object of a REST collection.
type Entity struct {
	// Kind is assigned by the fetcher; it is not part of the payload.
	Kind Kind

	// Raw is the JSON object as returned by the API.
	Raw gjson.Result

	// Suspect is set when the payload came with a non-2xx status.
	Suspect bool
}

// ID returns the Id attribute. Ids are unique within a collection only.
func (e Entity) ID() string { return e.Raw.Get("Id").String() }

// Caption returns the short display name.
func (e Entity) Caption() string { return e.Raw.Get("Caption").String() }

// ExtendedCaption returns the qualified display name.
func (e Entity) ExtendedCaption() string { return e.Raw.Get("ExtendedCaption").String() }

// Value returns the attribute at the gjson path. Sub-objects are reached
// with dots, e.g. "Size.Value".
func (e Entity) Value(path string) (gjson.Result, error) {
	return lookup(e.Raw, path)
}

// String returns a scalar attribute as text. Numbers and booleans are
// returned in their JSON form; objects and arrays are malformed.
func (e Entity) String(path string) (string, error) {
	v, err := lookup(e.Raw, path)
	if err != nil {
		return "", err
	}
	switch v.Type {
	case gjson.String:
		return v.String(), nil
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrFieldMalformed)
	}
}

func lookup(raw gjson.Result, path string) (gjson.Result, error) {
	v := raw.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return gjson.Result{}, fmt.Errorf("%s: %w", path, ErrFieldAbsent)
	}
	return v, nil
}

// Sample is one performance record of an entity.
type Sample struct {
	Raw gjson.Result
}

// Keys of a performance record that are not counters.
const (
	CollectionTimeKey = "CollectionTime"
	TypeKey           = "__type"
)

// CollectionTime returns the raw collection time envelope, for example
// "/Date(1600000000123)/".
func (s Sample) CollectionTime() (string, error) {
	v, err := lookup(s.Raw, CollectionTimeKey)
	if err != nil {
		return "", err
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%s: %w", CollectionTimeKey, ErrFieldMalformed)
	}
	return v.String(), nil
}

// Counters calls fn for every counter in the order the API returned them.
// CollectionTime and __type are skipped. Iteration stops when fn returns
// false.
func (s Sample) Counters(fn func(name string, value gjson.Result) bool) {
	s.Raw.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == CollectionTimeKey || name == TypeKey {
			return true
		}
		return fn(name, value)
	})
}

// Object is an entity with the performance sample attached to it during
// this cycle. Sample is nil for kinds rendered without one.
type Object struct {
	Entity
	Sample *Sample
}
