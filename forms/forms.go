// Copyright (c) 2023-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package forms asks users for values not supplied on the command line.
//
// Forms are YAML documents holding a flat list of typed properties. Properties
// support conditionals, validation expressions, enums and defaults that may
// reference earlier answers. Answers supplied up front with WithAnswers are
// validated and never asked for, WithDefaults turns the form non-interactive.
package forms

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/choria-io/scafgen/internal/validator"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type surveyor interface {
	AskOne(p survey.Prompt, response any, opts ...survey.AskOpt) error
}

type defaultSurveyor struct{}

func (d *defaultSurveyor) AskOne(p survey.Prompt, response any, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// ProcessOption configures form processing
type ProcessOption func(*processor)

// WithAnswers supplies known answers, matching properties are validated but not asked
func WithAnswers(answers map[string]any) ProcessOption {
	return func(p *processor) {
		for k, v := range answers {
			p.answers[k] = v
		}
	}
}

// WithDefaults answers every remaining property with its default without prompting
func WithDefaults() ProcessOption {
	return func(p *processor) {
		p.defaults = true
	}
}

func withSurveyor(s surveyor) ProcessOption {
	return func(p *processor) {
		p.surveyor = s
	}
}

func withIsTerminal(f func() bool) ProcessOption {
	return func(p *processor) {
		p.isTerminal = f
	}
}

func withOutput(w io.Writer) ProcessOption {
	return func(p *processor) {
		p.output = w
	}
}

// Type constants identify property types in form definitions.
const (
	StringType   = "string"
	BoolType     = "bool"
	IntType      = "integer"
	FloatType    = "float"
	PasswordType = "password"
)

// Form is an interactive form. The Description supports Go templates with
// Sprig functions and color markup tags like {red}text{/red}.
type Form struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Properties  []Property `json:"properties" yaml:"properties"`
}

// Property is a single form field.
//
// ConditionalExpression is evaluated against the environment with earlier answers
// available as input, the property is only processed when it is true. Default is
// rendered the same way as Description before use.
type Property struct {
	Name                  string   `json:"name" yaml:"name"`
	Description           string   `json:"description" yaml:"description"`
	Help                  string   `json:"help" yaml:"help"`
	Type                  string   `json:"type" yaml:"type"`
	ConditionalExpression string   `json:"conditional" yaml:"conditional"`
	ValidationExpression  string   `json:"validation" yaml:"validation"`
	Required              bool     `json:"required" yaml:"required"`
	Default               string   `json:"default" yaml:"default"`
	Enum                  []string `json:"enum" yaml:"enum"`
}

// RenderedDescription executes the Description as a Go template against env and applies color markup
func (p *Property) RenderedDescription(env map[string]any) (string, error) {
	return renderTemplate(p.Description, env)
}

// Validate checks the form definition for errors that would only show up while asking
func (f *Form) Validate() error {
	if len(f.Properties) == 0 {
		return fmt.Errorf("no properties defined")
	}

	seen := make(map[string]bool)

	for _, prop := range f.Properties {
		if prop.Name == "" {
			return fmt.Errorf("properties require a name")
		}

		if seen[prop.Name] {
			return fmt.Errorf("duplicate property %q", prop.Name)
		}
		seen[prop.Name] = true

		if !isOneOf(prop.Type, StringType, BoolType, IntType, FloatType, PasswordType, "") {
			return fmt.Errorf("unsupported property type %q", prop.Type)
		}

		if len(prop.Enum) > 0 && !isOneOf(prop.Type, StringType, "") {
			return fmt.Errorf("%s: enums are only supported on string properties", prop.Name)
		}

		for _, expr := range []string{prop.ConditionalExpression, prop.ValidationExpression} {
			if expr == "" {
				continue
			}

			err := validator.Compile(nil, expr)
			if err != nil {
				return fmt.Errorf("%s: %w", prop.Name, err)
			}
		}
	}

	return nil
}

type processor struct {
	form       Form
	env        map[string]any
	answers    map[string]any
	defaults   bool
	started    bool
	surveyor   surveyor
	isTerminal func() bool
	output     io.Writer
}

// ProcessReader reads YAML form data from r and processes it
func ProcessReader(r io.Reader, env map[string]any, opts ...ProcessOption) (map[string]any, error) {
	fb, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ProcessBytes(fb, env, opts...)
}

// ProcessFile reads YAML form data from the file f and processes it
func ProcessFile(f string, env map[string]any, opts ...ProcessOption) (map[string]any, error) {
	fb, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}

	return ProcessBytes(fb, env, opts...)
}

// ProcessBytes unmarshals f as a YAML form definition and processes it
func ProcessBytes(f []byte, env map[string]any, opts ...ProcessOption) (map[string]any, error) {
	var form Form
	err := yaml.Unmarshal(f, &form)
	if err != nil {
		return nil, err
	}

	return ProcessForm(form, env, opts...)
}

// ProcessForm collects a value for every property whose conditional passes.
//
// A terminal is only required when at least one property has to be asked, the
// env map provides template variables and expression variables.
func ProcessForm(f Form, env map[string]any, opts ...ProcessOption) (map[string]any, error) {
	proc := &processor{
		form:       f,
		env:        env,
		answers:    make(map[string]any),
		surveyor:   &defaultSurveyor{},
		isTerminal: isTerminal,
		output:     os.Stdout,
	}

	for _, o := range opts {
		o(proc)
	}

	err := f.Validate()
	if err != nil {
		return nil, err
	}

	result := make(map[string]any)

	for _, prop := range f.Properties {
		should, err := proc.shouldProcess(prop, result)
		if err != nil {
			return nil, err
		}
		if !should {
			continue
		}

		val, err := proc.processProperty(prop, result)
		if err != nil {
			return nil, err
		}

		result[prop.Name] = val
	}

	return result, nil
}

func (p *processor) processProperty(prop Property, input map[string]any) (any, error) {
	if ans, ok := p.answers[prop.Name]; ok {
		return p.presetValue(prop, ans)
	}

	dflt, err := p.renderedDefault(prop, input)
	if err != nil {
		return nil, err
	}

	if p.defaults {
		if dflt == "" && prop.Required {
			return nil, fmt.Errorf("%s is required but has no default", prop.Name)
		}

		return p.presetValue(prop, dflt)
	}

	err = p.start()
	if err != nil {
		return nil, err
	}

	d, err := prop.RenderedDescription(p.env)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(p.output)
	fmt.Fprintln(p.output, d)
	fmt.Fprintln(p.output)

	switch prop.Type {
	case BoolType:
		return p.askBool(prop, dflt)
	case IntType:
		return p.askInt(prop, dflt)
	case FloatType:
		return p.askFloat(prop, dflt)
	default:
		if len(prop.Enum) > 0 {
			return p.askEnum(prop, dflt)
		}

		return p.askString(prop, dflt)
	}
}

// start shows the form description before the first question
func (p *processor) start() error {
	if p.started {
		return nil
	}
	p.started = true

	if !p.isTerminal() {
		return fmt.Errorf("can only process forms on a valid terminal")
	}

	d, err := renderTemplate(p.form.Description, p.env)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.output, d)
	fmt.Fprintln(p.output)

	return p.surveyor.AskOne(&survey.Input{Message: "Press enter to start"}, &struct{}{})
}

func (p *processor) renderedDefault(prop Property, input map[string]any) (string, error) {
	if prop.Default == "" {
		if len(prop.Enum) > 0 {
			return prop.Enum[0], nil
		}

		return "", nil
	}

	dflt, err := render(prop.Default, p.expressionEnv(input))
	if err != nil {
		return "", fmt.Errorf("%s: invalid default: %w", prop.Name, err)
	}

	return dflt, nil
}

// presetValue converts a value not entered interactively to the property type and validates it
func (p *processor) presetValue(prop Property, v any) (any, error) {
	var val any
	var err error

	if s, ok := v.(string); ok && s == "" && isOneOf(prop.Type, BoolType, IntType, FloatType) {
		if prop.Required {
			return nil, fmt.Errorf("%s is required", prop.Name)
		}

		return zeroValue(prop.Type), nil
	}

	switch prop.Type {
	case BoolType:
		val, err = cast.ToBoolE(v)
	case IntType:
		val, err = cast.ToIntE(v)
	case FloatType:
		val, err = cast.ToFloat64E(v)
	default:
		val, err = cast.ToStringE(v)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %v: %w", prop.Name, v, err)
	}

	if s, ok := val.(string); ok {
		if s == "" && prop.Required {
			return nil, fmt.Errorf("%s is required", prop.Name)
		}

		if len(prop.Enum) > 0 && !slices.Contains(prop.Enum, s) {
			return nil, fmt.Errorf("invalid %s %q: must be one of %s", prop.Name, s, strings.Join(prop.Enum, ", "))
		}

		if s == "" {
			return s, nil
		}
	}

	if prop.ValidationExpression != "" {
		ok, err := validator.ValidateValue(val, prop.ValidationExpression)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", prop.Name, err)
		}
		if !ok {
			return nil, fmt.Errorf("invalid %s %v: validation using %q did not pass", prop.Name, val, prop.ValidationExpression)
		}
	}

	return val, nil
}

func (p *processor) askEnum(prop Property, dflt string) (string, error) {
	var ans string

	err := p.surveyor.AskOne(&survey.Select{
		Message: prop.Name,
		Help:    prop.Help,
		Default: dflt,
		Options: prop.Enum,
	}, &ans)
	if err != nil {
		return "", err
	}

	return ans, nil
}

func (p *processor) askString(prop Property, dflt string) (string, error) {
	var ans string
	var opts []survey.AskOpt
	var err error

	if prop.Required {
		opts = append(opts, survey.WithValidator(survey.MinLength(1)))
	}

	if prop.ValidationExpression != "" {
		opts = append(opts, survey.WithValidator(validator.SurveyValidator(prop.ValidationExpression, prop.Required)))
	}

	if prop.Type == PasswordType {
		err = p.surveyor.AskOne(&survey.Password{
			Message: prop.Name,
			Help:    prop.Help,
		}, &ans, opts...)
	} else {
		err = p.surveyor.AskOne(&survey.Input{
			Message: prop.Name,
			Help:    prop.Help,
			Default: dflt,
		}, &ans, opts...)
	}
	if err != nil {
		return "", err
	}

	return ans, nil
}

func (p *processor) askNumber(prop Property, dflt string, check string) (string, error) {
	var ans string

	validation := check
	if prop.ValidationExpression != "" {
		validation = fmt.Sprintf("%s && %s", validation, prop.ValidationExpression)
	}

	err := p.surveyor.AskOne(&survey.Input{
		Message: prop.Name,
		Help:    prop.Help,
		Default: dflt,
	}, &ans, survey.WithValidator(validator.SurveyValidator(validation, true)))
	if err != nil {
		return "", err
	}

	return ans, nil
}

func (p *processor) askInt(prop Property, dflt string) (int, error) {
	ans, err := p.askNumber(prop, dflt, "isInt(value)")
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(ans)
}

func (p *processor) askFloat(prop Property, dflt string) (float64, error) {
	ans, err := p.askNumber(prop, dflt, "isFloat(value)")
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(ans, 64)
}

func (p *processor) askBool(prop Property, dflt string) (bool, error) {
	var ans bool
	var def bool
	var err error

	if dflt != "" {
		def, err = strconv.ParseBool(dflt)
		if err != nil {
			return false, fmt.Errorf("%s: invalid default: %w", prop.Name, err)
		}
	}

	err = p.surveyor.AskOne(&survey.Confirm{
		Message: prop.Name,
		Help:    prop.Help,
		Default: def,
	}, &ans)
	if err != nil {
		return false, err
	}

	return ans, nil
}

// expressionEnv is the environment with the answers so far available as input and Input
func (p *processor) expressionEnv(input map[string]any) map[string]any {
	env := make(map[string]any, len(p.env)+2)
	for k, v := range p.env {
		env[k] = v
	}

	env["input"] = input
	env["Input"] = input

	return env
}

func (p *processor) shouldProcess(prop Property, input map[string]any) (bool, error) {
	if prop.ConditionalExpression == "" {
		return true, nil
	}

	return validator.Validate(p.expressionEnv(input), prop.ConditionalExpression)
}
