// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/choria-io/scafgen/internal/validator"
	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the reserved file name holding namespace settings, it is never copied to the output
const ManifestFile = ".scafgen.yaml"

// Manifest holds additional skip rules and post-processing steps for a namespace
type Manifest struct {
	Skip []ManifestSkip `yaml:"skip"`
	Post []ManifestStep `yaml:"post"`
}

// ManifestSkip skips files matching Match when the When expression is true.
//
// Match is a path.Match glob against the namespace relative path with the template
// marker removed, a pattern without a slash also matches the base name and a pattern
// ending in a slash matches the whole directory.
type ManifestSkip struct {
	Match       string `yaml:"match"`
	When        string `yaml:"when"`
	Description string `yaml:"description"`
}

// ManifestStep is a post-processing command declared by a namespace
type ManifestStep struct {
	Description string `yaml:"description"`
	// Run is rendered against the context and split using shell quoting rules
	Run string `yaml:"run"`
	// Dir is relative to the output directory
	Dir string `yaml:"dir"`
	// When is an expression, the step runs only when it is true
	When string `yaml:"when"`
	// Required failures abort the run rather than being reported as warnings
	Required bool `yaml:"required"`
}

// LoadManifest reads the manifest of namespace ns, a namespace without one has an empty manifest
func LoadManifest(store Store, ns string) (*Manifest, error) {
	mpath := path.Join(cleanStorePath(ns), ManifestFile)

	m := &Manifest{}
	if !store.Exists(mpath) {
		return m, nil
	}

	mb, err := store.Read(mpath)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(mb, m)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", mpath, err)
	}

	err = m.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", mpath, err)
	}

	return m, nil
}

func (m *Manifest) validate() error {
	for i, s := range m.Skip {
		if s.Match == "" {
			return fmt.Errorf("skip %d: match is required", i)
		}

		_, err := path.Match(strings.TrimSuffix(s.Match, "/"), "")
		if err != nil {
			return fmt.Errorf("skip %d: %w", i, err)
		}

		if s.When != "" {
			err = validator.Compile(nil, s.When)
			if err != nil {
				return fmt.Errorf("skip %d: %w", i, err)
			}
		}
	}

	for i, s := range m.Post {
		if strings.TrimSpace(s.Run) == "" {
			return fmt.Errorf("post %d: run is required", i)
		}

		if s.When != "" {
			err := validator.Compile(nil, s.When)
			if err != nil {
				return fmt.Errorf("post %d: %w", i, err)
			}
		}
	}

	return nil
}

// SkipRules converts the skip entries into rules for the Processor
func (m *Manifest) SkipRules() []SkipRule {
	var rules []SkipRule

	for _, s := range m.Skip {
		name := s.Description
		if name == "" {
			name = "manifest " + s.Match
		}

		rules = append(rules, SkipRule{
			Name: name,
			Match: func(rel string, ctx Context) (bool, error) {
				if !s.matches(rel) {
					return false, nil
				}

				if s.When == "" {
					return true, nil
				}

				return validator.Validate(ctx, s.When)
			},
		})
	}

	return rules
}

func (s ManifestSkip) matches(rel string) bool {
	rel = StripMarker(rel)

	if dir, ok := strings.CutSuffix(s.Match, "/"); ok {
		return containedInDir(rel, cleanStorePath(dir))
	}

	if ok, _ := path.Match(s.Match, rel); ok {
		return true
	}

	if !strings.Contains(s.Match, "/") {
		ok, _ := path.Match(s.Match, path.Base(rel))
		return ok
	}

	return false
}

// Enabled evaluates the When expression against ctx
func (s ManifestStep) Enabled(ctx Context) (bool, error) {
	if s.When == "" {
		return true, nil
	}

	return validator.Validate(ctx, s.When)
}

// Command renders Run against ctx and splits it into a command and arguments
func (s ManifestStep) Command(r *Renderer, ctx Context) (string, []string, error) {
	run, err := r.RenderString(s.Run, ctx)
	if err != nil {
		return "", nil, err
	}

	parts, err := shellquote.Split(run)
	if err != nil {
		return "", nil, fmt.Errorf("invalid command %q: %w", run, err)
	}

	if len(parts) == 0 {
		return "", nil, errors.New("empty command")
	}

	return parts[0], parts[1:], nil
}
