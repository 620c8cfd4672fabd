// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package action

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/samber/lo"
)

// A Rule is a validation rule attached to a parameter. Check returns a
// non-nil error if the argument value v violates the rule.
//
// Except for Required, the built-in rules accept a nil value, so that
// optional parameters may be omitted.
//
// Implementations of Rule must be safe for concurrent use by multiple
// goroutines.
type Rule interface {
	Check(v interface{}) error
}

// The RuleFunc type is an adapter to allow the use of ordinary
// functions as rules.
type RuleFunc func(v interface{}) error

// Check returns f(v).
func (f RuleFunc) Check(v interface{}) error {
	return f(v)
}

// ErrRequired is the violation reported by Required.
var ErrRequired = errors.New("value is required")

// Required returns a rule which rejects nil values, nil pointers, maps
// and slices, and the empty string.
func Required() Rule {
	return RuleFunc(func(v interface{}) error {
		if v == nil {
			return ErrRequired
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
			if rv.IsNil() {
				return ErrRequired
			}
		case reflect.String:
			if rv.Len() == 0 {
				return ErrRequired
			}
		}
		return nil
	})
}

// Pattern returns a rule which requires a string value to match the
// regular expression expr. Pattern panics if expr does not compile.
func Pattern(expr string) Rule {
	re := regexp.MustCompile(expr)
	return RuleFunc(func(v interface{}) error {
		if v == nil {
			return nil
		}
		s, ok := stringOf(v)
		if !ok {
			return fmt.Errorf("%T is not a string", v)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("%q does not match %s", s, expr)
		}
		return nil
	})
}

// Range returns a rule which requires a numeric value to lie within
// [min, max].
func Range(min, max float64) Rule {
	return RuleFunc(func(v interface{}) error {
		if v == nil {
			return nil
		}
		f, ok := number(v)
		if !ok {
			return fmt.Errorf("%T is not a number", v)
		}
		if f < min || f > max {
			return fmt.Errorf("%v is outside [%v, %v]", v, min, max)
		}
		return nil
	})
}

// MaxLen returns a rule which limits the length of a string (counted
// in runes), slice, array or map.
func MaxLen(n int) Rule {
	return RuleFunc(func(v interface{}) error {
		if v == nil {
			return nil
		}
		var l int
		if s, ok := stringOf(v); ok {
			l = utf8.RuneCountInString(s)
		} else {
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				l = rv.Len()
			default:
				return fmt.Errorf("%T has no length", v)
			}
		}
		if l > n {
			return fmt.Errorf("length %d exceeds %d", l, n)
		}
		return nil
	})
}

// OneOf returns a rule which requires the value to deeply equal one of
// values.
func OneOf(values ...interface{}) Rule {
	return RuleFunc(func(v interface{}) error {
		if v == nil {
			return nil
		}
		if !lo.ContainsBy(values, func(x interface{}) bool { return reflect.DeepEqual(x, v) }) {
			return fmt.Errorf("%v is not one of %v", v, values)
		}
		return nil
	})
}

func stringOf(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case fmt.Stringer:
		return x.String(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func number(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
