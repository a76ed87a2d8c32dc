// Package params holds the named model parameters consumed by the prediction
// pipeline. A Set maps parameter names to scalar or vector values; a Template
// describes which of those parameters are free and binds a flat parameter
// vector onto them.
package params

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMissing is returned when a required parameter is absent.
	ErrMissing = errors.New("params: missing required parameter")
	// ErrType is returned when a parameter has an unusable type.
	ErrType = errors.New("params: unsupported parameter type")
	// ErrDimension is returned when a bound vector has the wrong length.
	ErrDimension = errors.New("params: dimension mismatch")
)

// Set maps parameter names to values. Supported value types are float64,
// int, bool, string, []float64, []int, []string and []any of those scalars.
type Set map[string]any

// Has reports whether name is present.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Require returns an ErrMissing-wrapped error naming the first absent parameter.
func (s Set) Require(names ...string) error {
	for _, n := range names {
		if !s.Has(n) {
			return fmt.Errorf("%w: %q", ErrMissing, n)
		}
	}
	return nil
}

// Clone returns a shallow copy with vector values copied.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		switch vv := v.(type) {
		case []float64:
			out[k] = append([]float64(nil), vv...)
		case []string:
			out[k] = append([]string(nil), vv...)
		default:
			out[k] = v
		}
	}
	return out
}

// Floats returns the value of name as a vector. Scalars become length-one
// vectors; an absent parameter yields nil.
func (s Set) Floats(name string) ([]float64, error) {
	v, ok := s[name]
	if !ok {
		return nil, nil
	}
	out, err := toFloats(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	return out, nil
}

// Float returns the first element of name, or def when absent or empty.
func (s Set) Float(name string, def float64) (float64, error) {
	v, err := s.Floats(name)
	if err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return def, nil
	}
	return v[0], nil
}

// Sum returns the sum of all elements of name, or def when absent.
func (s Set) Sum(name string, def float64) (float64, error) {
	v, err := s.Floats(name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return def, nil
	}
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total, nil
}

// Bool returns name interpreted as a flag. Numbers are true when non-zero.
func (s Set) Bool(name string, def bool) (bool, error) {
	v, ok := s[name]
	if !ok {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case []bool:
		if len(b) == 0 {
			return def, nil
		}
		return b[0], nil
	case []any:
		if len(b) == 0 {
			return def, nil
		}
		return Set{name: b[0]}.Bool(name, def)
	}
	f, err := s.Float(name, 0)
	if err != nil {
		return false, err
	}
	return f != 0, nil
}

// String returns name as a string, or def when absent.
func (s Set) String(name, def string) (string, error) {
	v, ok := s[name]
	if !ok {
		return def, nil
	}
	switch sv := v.(type) {
	case string:
		return sv, nil
	case []string:
		if len(sv) == 0 {
			return def, nil
		}
		return sv[0], nil
	}
	return "", fmt.Errorf("%w: %q is %T", ErrType, name, v)
}

// Strings returns name as a list of strings; a single string becomes a
// one-element list and an absent parameter yields nil.
func (s Set) Strings(name string) ([]string, error) {
	v, ok := s[name]
	if !ok {
		return nil, nil
	}
	switch sv := v.(type) {
	case string:
		return []string{sv}, nil
	case []string:
		return sv, nil
	case []any:
		out := make([]string, 0, len(sv))
		for _, e := range sv {
			str, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q element is %T", ErrType, name, e)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q is %T", ErrType, name, v)
}

// Names returns the sorted parameter names.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toFloats(v any) ([]float64, error) {
	switch x := v.(type) {
	case float64:
		return []float64{x}, nil
	case float32:
		return []float64{float64(x)}, nil
	case int:
		return []float64{float64(x)}, nil
	case int64:
		return []float64{float64(x)}, nil
	case bool:
		if x {
			return []float64{1}, nil
		}
		return []float64{0}, nil
	case []float64:
		return x, nil
	case []int:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out, nil
	case []any:
		out := make([]float64, 0, len(x))
		for _, e := range x {
			f, err := toFloats(e)
			if err != nil {
				return nil, err
			}
			out = append(out, f...)
		}
		return out, nil
	}
	return nil, ErrType
}
