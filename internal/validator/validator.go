// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package validator evaluates boolean expr-lang expressions used by form
// validation, form conditionals and namespace manifest when clauses.
package validator

import (
	"fmt"
	"net"
	"regexp"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/expr-lang/expr"
)

func isInt(v any) bool {
	switch i := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case string:
		_, err := strconv.Atoi(i)
		return err == nil
	default:
		return false
	}
}

func isFloat(v any) bool {
	switch f := v.(type) {
	case float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(f, 64)
		return err == nil
	default:
		return isInt(v)
	}
}

func isIP(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}

	return net.ParseIP(s) != nil
}

func isIdentifier(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}

	return identifierRe.MatchString(s)
}

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func functions() []expr.Option {
	return []expr.Option{
		expr.Function("isInt", func(params ...any) (any, error) {
			return isInt(params[0]), nil
		}, new(func(any) bool)),
		expr.Function("isFloat", func(params ...any) (any, error) {
			return isFloat(params[0]), nil
		}, new(func(any) bool)),
		expr.Function("isIP", func(params ...any) (any, error) {
			return isIP(params[0]), nil
		}, new(func(any) bool)),
		expr.Function("isIdentifier", func(params ...any) (any, error) {
			return isIdentifier(params[0]), nil
		}, new(func(any) bool)),
	}
}

// Compile checks that validation is a boolean expression, env supplies the variables it may reference
func Compile(env map[string]any, validation string) error {
	if env == nil {
		env = map[string]any{}
	}

	opts := append([]expr.Option{expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables()}, functions()...)

	_, err := expr.Compile(validation, opts...)
	if err != nil {
		return fmt.Errorf("invalid expression %q: %w", validation, err)
	}

	return nil
}

// Validate evaluates validation against env and reports its boolean result
func Validate(env map[string]any, validation string) (bool, error) {
	opts := append([]expr.Option{expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables()}, functions()...)

	program, err := expr.Compile(validation, opts...)
	if err != nil {
		return false, fmt.Errorf("invalid expression %q: %w", validation, err)
	}

	res, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	ok, valid := res.(bool)
	if !valid {
		return false, fmt.Errorf("expression %q did not return a boolean", validation)
	}

	return ok, nil
}

// ValidateValue evaluates validation with value available as value and Value
func ValidateValue(value any, validation string) (bool, error) {
	return Validate(map[string]any{"value": value, "Value": value}, validation)
}

// SurveyValidator creates a survey validator from an expression, empty answers pass when not required
func SurveyValidator(validation string, required bool) survey.Validator {
	return func(v any) error {
		if !required {
			if s, ok := v.(string); ok && s == "" {
				return nil
			}
		}

		ok, err := ValidateValue(v, validation)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("validation using %q did not pass", validation)
		}

		return nil
	}
}
