// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"maps"
	"slices"

	"github.com/spf13/cast"
)

// Context is the flat set of values a template is rendered against
type Context map[string]any

// Bool reports the value of key as a boolean, absent keys and values that cannot be coerced are false
func (c Context) Bool(key string) bool {
	v, ok := c[key]
	if !ok {
		return false
	}

	return cast.ToBool(v)
}

// String reports the value of key as a string, absent keys are empty
func (c Context) String(key string) string {
	v, ok := c[key]
	if !ok {
		return ""
	}

	return cast.ToString(v)
}

// Int reports the value of key as an integer, absent keys are 0
func (c Context) Int(key string) int {
	v, ok := c[key]
	if !ok {
		return 0
	}

	return cast.ToInt(v)
}

// Keys returns the sorted list of keys
func (c Context) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}

// Clone returns a shallow copy
func (c Context) Clone() Context {
	return maps.Clone(c)
}

// With returns a copy of the context with the values from other applied on top
func (c Context) With(other Context) Context {
	res := make(Context, len(c)+len(other))
	maps.Copy(res, c)
	maps.Copy(res, other)

	return res
}
