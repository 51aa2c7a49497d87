package config

import (
	"maps"
	"slices"

	"github.com/spf13/cast"
)

// Values is a bag of named settings with typed lookups. Unknown names and
// values that do not convert report absence rather than an error.
type Values map[string]any

// String returns the named value as a string.
func (v Values) String(name string) (string, bool) {
	raw, ok := v[name]
	if !ok || raw == nil {
		return "", false
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", false
	}
	return s, true
}

// Int returns the named value as an int64.
func (v Values) Int(name string) (int64, bool) {
	raw, ok := v[name]
	if !ok || raw == nil {
		return 0, false
	}
	i, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Float returns the named value as a float64.
func (v Values) Float(name string) (float64, bool) {
	raw, ok := v[name]
	if !ok || raw == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns the named value as a bool.
func (v Values) Bool(name string) (bool, bool) {
	raw, ok := v[name]
	if !ok || raw == nil {
		return false, false
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return false, false
	}
	return b, true
}

// Names returns the defined names in sorted order.
func (v Values) Names() []string {
	return slices.Sorted(maps.Keys(v))
}
