// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches any ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrTemplateNotFound matches any TemplateNotFoundError
	ErrTemplateNotFound = errors.New("template not found")
	// ErrRender matches any RenderError
	ErrRender = errors.New("render failed")
	// ErrIO matches any IOError
	ErrIO = errors.New("i/o failure")
	// ErrExternalTool matches any ExternalToolError
	ErrExternalTool = errors.New("external tool failed")
)

// ValidationError indicates malformed input parameters, it is always reported before any file is written
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}

	return fmt.Sprintf("invalid %s %q: %s", e.Field, fmt.Sprint(e.Value), e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TemplateNotFoundError indicates a namespace or file is absent from the template store
type TemplateNotFoundError struct {
	Path string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Path)
}

func (e *TemplateNotFoundError) Unwrap() error { return ErrTemplateNotFound }

// RenderError indicates a template could not be parsed or executed
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s failed: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() []error { return []error{ErrRender, e.Err} }

// IOError indicates a directory or file could not be created or written
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing %s failed: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// ExternalToolError indicates a post-processing command failed or could not be found
type ExternalToolError struct {
	Command string
	Output  string
	Err     error
}

func (e *ExternalToolError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}

	// keep the message on one line, the last line of output is usually the cause
	lines := strings.Split(out, "\n")

	return fmt.Sprintf("%s failed: %v: %s", e.Command, e.Err, strings.TrimSpace(lines[len(lines)-1]))
}

func (e *ExternalToolError) Unwrap() []error { return []error{ErrExternalTool, e.Err} }
