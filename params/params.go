// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package params holds the layered generation parameters. Each layer is a
// plain struct that validates itself and contributes keys to the flat
// rendering context, Merge combines the layers with later layers winning.
package params

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/choria-io/scafgen"
	"github.com/iancoleman/strcase"
)

// Layer is one set of parameters contributing to the rendering context
type Layer interface {
	// Validate fails with a *scafgen.ValidationError when fields are missing or malformed
	Validate() error
	// ToContext produces the keys this layer contributes, including derived values
	ToContext() scafgen.Context
}

const (
	// MinPort is the lowest port a generated service may listen on
	MinPort = 1024
	// MaxPort is the highest valid port
	MaxPort = 65535
	// MaxHostLength is the DNS name length limit
	MaxHostLength = 253
)

var projectNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Merge applies each layer's context over the previous ones in order, the last write per key wins
func Merge(layers ...Layer) scafgen.Context {
	res := scafgen.Context{}

	for _, l := range layers {
		if l == nil {
			continue
		}

		res = res.With(l.ToContext())
	}

	return res
}

// ValidateAll validates every layer, returning the first failure
func ValidateAll(layers ...Layer) error {
	for _, l := range layers {
		if l == nil {
			continue
		}

		err := l.Validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// ValidateProjectName requires a non empty name made of letters, digits, dashes and underscores
func ValidateProjectName(name string) error {
	switch {
	case name == "":
		return &scafgen.ValidationError{Field: "project name", Reason: "is required"}
	case strings.ContainsFunc(name, isSpace):
		return &scafgen.ValidationError{Field: "project name", Value: name, Reason: "may not contain spaces"}
	case !projectNameRe.MatchString(name):
		return &scafgen.ValidationError{Field: "project name", Value: name, Reason: "may only contain letters, digits, - and _"}
	}

	return nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// ValidatePort requires a port in the user space range
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return &scafgen.ValidationError{Field: "port", Value: port, Reason: "must be between 1024 and 65535"}
	}

	return nil
}

// ValidateHost requires a non empty host of at most 253 characters
func ValidateHost(host string) error {
	switch {
	case strings.TrimSpace(host) == "":
		return &scafgen.ValidationError{Field: "host", Reason: "is required"}
	case len(host) > MaxHostLength:
		return &scafgen.ValidationError{Field: "host", Value: host[:16] + "...", Reason: "may not be longer than 253 characters"}
	}

	return nil
}

// ValidateVersion requires a semantic version, partial versions like 1.24 are accepted
func ValidateVersion(field string, version string) error {
	if version == "" {
		return &scafgen.ValidationError{Field: field, Reason: "is required"}
	}

	_, err := semver.NewVersion(version)
	if err != nil {
		return &scafgen.ValidationError{Field: field, Value: version, Reason: err.Error()}
	}

	return nil
}

// Names are the case variants of a project name
type Names struct {
	Pascal string
	Snake  string
	Kebab  string
}

// NamesFor derives the case variants of name
func NamesFor(name string) Names {
	return Names{
		Pascal: strcase.ToCamel(name),
		Snake:  strcase.ToSnake(name),
		Kebab:  strcase.ToKebab(name),
	}
}
