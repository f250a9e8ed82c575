package cookie

import (
	"encoding/json"
	"strconv"
)

// CastFunc converts a decoded cookie value into T.
type CastFunc[T any] func(string) (T, error)

// Cast loads r and converts its value with cast. The bool is false when
// the cookie is absent, in which case cast is not called. Errors from cast
// are returned as they are.
func Cast[T any](r *Record, cast func(string) (T, error)) (T, bool, error) {
	var zero T
	value, ok := r.Load()
	if !ok {
		return zero, false, nil
	}
	v, err := cast(value)
	if err != nil {
		return zero, true, err
	}
	return v, true, nil
}

// LoadAs loads the cookie called name and converts its value with cast.
func LoadAs[T any](j *Jar, name string, cast func(string) (T, error)) (T, bool, error) {
	return Cast(j.WithName(name), cast)
}

// String is the identity cast.
func String(s string) (string, error) {
	return s, nil
}

// Number parses s as a float64.
func Number(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Int parses s as a base-10 int.
func Int(s string) (int, error) {
	return strconv.Atoi(s)
}

// Bool parses s with strconv.ParseBool.
func Bool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

// JSON returns a cast that unmarshals the value into T.
func JSON[T any]() CastFunc[T] {
	return func(s string) (T, error) {
		var v T
		err := json.Unmarshal([]byte(s), &v)
		return v, err
	}
}
