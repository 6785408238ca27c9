// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"bytes"
	"fmt"
	"reflect"
	"text/template"

	"github.com/CloudyKit/jet/v6"
	"github.com/Masterminds/sprig/v3"
	"github.com/iancoleman/strcase"
)

// Engine selects the template language used by a Renderer
type Engine int

const (
	// EngineJet renders templates using Jet, context keys are referenced as {{ project_name }}
	EngineJet Engine = iota
	// EngineGoTemplate renders templates using text/template, context keys are referenced as {{ .project_name }}
	EngineGoTemplate
)

func (e Engine) String() string {
	switch e {
	case EngineGoTemplate:
		return "go"
	default:
		return "jet"
	}
}

// ParseEngine parses the names used on the CLI
func ParseEngine(s string) (Engine, error) {
	switch s {
	case "", "jet":
		return EngineJet, nil
	case "go":
		return EngineGoTemplate, nil
	default:
		return EngineJet, fmt.Errorf("unknown template engine %q", s)
	}
}

// sprig functions made available to Jet templates, Jet has its own builtins for the rest
var jetSprigFuncs = []string{"trimSuffix", "trimPrefix", "title", "quote", "squote", "default", "now", "date", "contains", "indent", "nindent"}

// Renderer renders a single template against a Context, it holds no per-call state and is safe to reuse
type Renderer struct {
	engine     Engine
	left       string
	right      string
	funcs      template.FuncMap
	jetFuncs   map[string]jet.Func
	jetGlobals map[string]any
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithEngine selects the template engine, Jet is the default
func WithEngine(e Engine) RendererOption {
	return func(r *Renderer) {
		r.engine = e
	}
}

// WithDelimiters sets custom template delimiters, useful for generating templates from templates
func WithDelimiters(left string, right string) RendererOption {
	return func(r *Renderer) {
		r.left = left
		r.right = right
	}
}

// WithFuncs adds functions to the Go template engine
func WithFuncs(funcs template.FuncMap) RendererOption {
	return func(r *Renderer) {
		for k, v := range funcs {
			r.funcs[k] = v
		}
	}
}

// WithJetFuncs adds functions to the Jet template engine
func WithJetFuncs(funcs map[string]jet.Func) RendererOption {
	return func(r *Renderer) {
		for k, v := range funcs {
			r.jetFuncs[k] = v
		}
	}
}

// caseHelpers are the case conversion helpers every template can use
var caseHelpers = map[string]func(string) string{
	"to_camel_case":       strcase.ToCamel,
	"to_lower_camel_case": strcase.ToLowerCamel,
	"to_snake_case":       strcase.ToSnake,
	"to_kebab_case":       strcase.ToKebab,
}

// NewRenderer creates a renderer, helpers are registered once here
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		funcs:      sprig.TxtFuncMap(),
		jetFuncs:   make(map[string]jet.Func),
		jetGlobals: make(map[string]any),
	}

	sprigFuncs := sprig.GenericFuncMap()
	for _, name := range jetSprigFuncs {
		if fn, ok := sprigFuncs[name]; ok {
			r.jetGlobals[name] = fn
		}
	}

	for name, fn := range caseHelpers {
		r.funcs[name] = fn
		r.jetFuncs[name] = jetStringHelper(name, fn)
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func jetStringHelper(name string, fn func(string) string) jet.Func {
	return func(args jet.Arguments) reflect.Value {
		args.RequireNumOfArguments(name, 1, 1)

		var in string
		if err := args.ParseInto(&in); err != nil {
			args.Panicf("%s: %v", name, err)
		}

		return reflect.ValueOf(fn(in))
	}
}

// Engine reports the configured engine
func (r *Renderer) Engine() Engine {
	return r.engine
}

// RenderString renders a string using the same functions and behavior as templates from the store
func (r *Renderer) RenderString(str string, ctx Context) (string, error) {
	res, err := r.Render("string", []byte(str), ctx)
	if err != nil {
		return "", err
	}

	return string(res), nil
}

// Render renders tmpl against ctx, referencing a key that is not in ctx is an error. The name is used in errors
func (r *Renderer) Render(name string, tmpl []byte, ctx Context) ([]byte, error) {
	var res []byte
	var err error

	switch r.engine {
	case EngineGoTemplate:
		res, err = r.renderGoTemplate(name, tmpl, ctx)
	default:
		res, err = r.renderJet(name, tmpl, ctx)
	}
	if err != nil {
		return nil, &RenderError{Path: name, Err: err}
	}

	return res, nil
}

func (r *Renderer) renderGoTemplate(name string, tmpl []byte, ctx Context) ([]byte, error) {
	buf := bytes.NewBuffer([]byte{})
	templ := template.New(name).Option("missingkey=error").Funcs(r.funcs)

	if r.left != "" && r.right != "" {
		templ.Delims(r.left, r.right)
	}

	templ, err := templ.Parse(string(tmpl))
	if err != nil {
		return nil, fmt.Errorf("parsing template failed: %w", err)
	}

	err = templ.Execute(buf, map[string]any(ctx))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (r *Renderer) renderJet(name string, tmpl []byte, ctx Context) ([]byte, error) {
	loader := jet.NewInMemLoader()
	loader.Set(name, string(tmpl))

	opts := []jet.Option{jet.WithSafeWriter(nil)}
	if r.left != "" && r.right != "" {
		opts = append(opts, jet.WithDelims(r.left, r.right))
	}

	set := jet.NewSet(loader, opts...)

	for k, fn := range r.jetGlobals {
		set.AddGlobal(k, fn)
	}

	for k, fn := range r.jetFuncs {
		set.AddGlobalFunc(k, fn)
	}

	t, err := set.GetTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("parsing template failed: %w", err)
	}

	vars := make(jet.VarMap, len(ctx))
	for k, v := range ctx {
		if v == nil {
			continue
		}
		vars.Set(k, v)
	}

	buf := bytes.NewBuffer([]byte{})
	err = t.Execute(buf, vars, map[string]any(ctx))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
