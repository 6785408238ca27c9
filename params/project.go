// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"fmt"
	"slices"
	"strings"

	"github.com/choria-io/scafgen"
)

const (
	// DefaultLicense is used when none is requested
	DefaultLicense = "MIT"
	// NoLicense disables LICENSE generation
	NoLicense = "None"
	// DefaultProjectVersion is the initial version of generated projects
	DefaultProjectVersion = "0.1.0"
	// DefaultAuthor is used when no author could be determined
	DefaultAuthor = "Your Name"
)

// Licenses are the licenses that can be generated
var Licenses = []string{"MIT", "Apache-2.0", "BSD-3-Clause", "ISC", NoLicense}

// Project holds descriptive project metadata
type Project struct {
	Name        string
	Description string
	Version     string
	Author      string
	License     string
}

// NewProject creates the project layer with defaults for name
func NewProject(name string) *Project {
	return &Project{
		Name:        name,
		Description: fmt.Sprintf("A %s project", name),
		Version:     DefaultProjectVersion,
		Author:      DefaultAuthor,
		License:     DefaultLicense,
	}
}

// ParseLicense finds a supported license by case insensitive name
func ParseLicense(name string) (string, error) {
	if name == "" {
		return DefaultLicense, nil
	}

	for _, l := range Licenses {
		if strings.EqualFold(l, name) {
			return l, nil
		}
	}

	return "", &scafgen.ValidationError{Field: "license", Value: name, Reason: fmt.Sprintf("must be one of %s", strings.Join(Licenses, ", "))}
}

// HasLicense reports if a LICENSE file should be generated
func (p *Project) HasLicense() bool {
	return p.License != "" && p.License != NoLicense
}

func (p *Project) Validate() error {
	err := ValidateProjectName(p.Name)
	if err != nil {
		return err
	}

	err = ValidateVersion("project version", p.Version)
	if err != nil {
		return err
	}

	if p.License != "" && !slices.Contains(Licenses, p.License) {
		return &scafgen.ValidationError{Field: "license", Value: p.License, Reason: fmt.Sprintf("must be one of %s", strings.Join(Licenses, ", "))}
	}

	return nil
}

func (p *Project) ToContext() scafgen.Context {
	license := p.License
	if license == "" {
		license = NoLicense
	}

	author := p.Author
	if author == "" {
		author = DefaultAuthor
	}

	description := p.Description
	if description == "" {
		description = fmt.Sprintf("A %s project", p.Name)
	}

	return scafgen.Context{
		"project_description": description,
		"project_version":     p.Version,
		"author":              author,
		"license":             license,
		"has_license":         p.HasLicense(),
	}
}
