// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/choria-io/scafgen"
)

// Language is a supported project language
type Language string

const (
	Go     Language = "go"
	Python Language = "python"
	Rust   Language = "rust"
)

// Languages are all supported languages
var Languages = []Language{Go, Python, Rust}

// DefaultModulePrefix is prepended to the lower cased project name to infer a Go module path
const DefaultModulePrefix = "github.com/example"

var defaultVersions = map[Language]string{
	Go:     "1.24",
	Python: "3.12",
	Rust:   "1.75",
}

var modulePathRe = regexp.MustCompile(`^[A-Za-z0-9._~/-]+$`)

// ParseLanguage parses language names and common aliases case insensitively
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "go", "golang":
		return Go, nil
	case "python", "py":
		return Python, nil
	case "rust", "rs":
		return Rust, nil
	default:
		return "", &scafgen.ValidationError{Field: "language", Value: s, Reason: "must be one of go, python or rust"}
	}
}

// DefaultVersion is the toolchain version generated projects target
func (l Language) DefaultVersion() string {
	return defaultVersions[l]
}

func (l Language) String() string {
	return string(l)
}

// LanguageParams holds the language specific values
type LanguageParams struct {
	Language Language
	Version  string
	// ModulePath is the Go module path, inferred from the project name when empty
	ModulePath string
	// ModulePrefix is used when inferring ModulePath
	ModulePrefix string

	projectName string
}

// NewLanguage creates the language layer for project name with default versions
func NewLanguage(lang Language, projectName string) *LanguageParams {
	return &LanguageParams{
		Language:     lang,
		Version:      lang.DefaultVersion(),
		ModulePrefix: DefaultModulePrefix,
		projectName:  projectName,
	}
}

// InferModulePath derives a Go module path from the project name
func InferModulePath(prefix string, projectName string) string {
	if prefix == "" {
		prefix = DefaultModulePrefix
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(prefix, "/"), strings.ToLower(projectName))
}

// Module is the Go module path
func (l *LanguageParams) Module() string {
	if l.ModulePath != "" {
		return l.ModulePath
	}

	return InferModulePath(l.ModulePrefix, l.projectName)
}

// PackageName is the language specific package identifier
func (l *LanguageParams) PackageName() string {
	switch l.Language {
	case Go:
		return strings.ReplaceAll(NamesFor(l.projectName).Snake, "_", "")
	default:
		return NamesFor(l.projectName).Snake
	}
}

func (l *LanguageParams) Validate() error {
	if _, err := ParseLanguage(string(l.Language)); err != nil {
		return err
	}

	err := ValidateVersion(fmt.Sprintf("%s version", l.Language), l.Version)
	if err != nil {
		return err
	}

	if l.Language == Go && !modulePathRe.MatchString(l.Module()) {
		return &scafgen.ValidationError{Field: "module path", Value: l.Module(), Reason: "contains invalid characters"}
	}

	return nil
}

func (l *LanguageParams) ToContext() scafgen.Context {
	ctx := scafgen.Context{
		"language":         string(l.Language),
		"language_version": l.Version,
		"package_name":     l.PackageName(),
		"module_path":      "",
	}

	ctx[fmt.Sprintf("%s_version", l.Language)] = l.Version

	if l.Language == Go {
		ctx["module_path"] = l.Module()
	}

	return ctx
}
