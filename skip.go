// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"path"
	"strings"
)

// SkipRule excludes files from a namespace when Match returns true, rules are evaluated in order and any match skips the file
type SkipRule struct {
	// Name describes the rule in logs
	Name string
	// Match receives the path relative to the namespace root, including any template marker
	Match func(rel string, ctx Context) (bool, error)
}

const (
	precommitConfigName = ".pre-commit-config.yaml"
	swaggerDocsEntry    = "docs.go"
)

// PrecommitRule skips the pre-commit configuration unless enable_precommit is set
func PrecommitRule() SkipRule {
	return SkipRule{
		Name: "precommit",
		Match: func(rel string, ctx Context) (bool, error) {
			if ctx.Bool("enable_precommit") {
				return false, nil
			}

			return StripMarker(path.Base(rel)) == precommitConfigName, nil
		},
	}
}

// SwaggerRule skips swagger artifacts and the generated docs entrypoint unless enable_swagger is set
func SwaggerRule() SkipRule {
	return SkipRule{
		Name: "swagger",
		Match: func(rel string, ctx Context) (bool, error) {
			if ctx.Bool("enable_swagger") {
				return false, nil
			}

			name := path.Base(rel)

			return strings.Contains(strings.ToLower(name), "swagger") || strings.HasPrefix(name, swaggerDocsEntry), nil
		},
	}
}

// DefaultSkipRules are the rules every generator applies
func DefaultSkipRules() []SkipRule {
	return []SkipRule{PrecommitRule(), SwaggerRule()}
}

// SkipFile skips the file at rel, with or without template marker, when flag is false in the context
func SkipFile(rel string, flag string) SkipRule {
	want := StripMarker(cleanStorePath(rel))

	return SkipRule{
		Name: "file " + want + " unless " + flag,
		Match: func(p string, ctx Context) (bool, error) {
			if ctx.Bool(flag) {
				return false, nil
			}

			return StripMarker(p) == want, nil
		},
	}
}

// SkipTree skips every file below the directory prefix when flag is false in the context
func SkipTree(prefix string, flag string) SkipRule {
	dir := cleanStorePath(prefix)

	return SkipRule{
		Name: "tree " + dir + " unless " + flag,
		Match: func(p string, ctx Context) (bool, error) {
			if ctx.Bool(flag) {
				return false, nil
			}

			return containedInDir(p, dir), nil
		},
	}
}

func containedInDir(p string, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// shouldSkip reports the name of the first rule that matches rel
func shouldSkip(rules []SkipRule, rel string, ctx Context) (string, bool, error) {
	for _, rule := range rules {
		if rule.Match == nil {
			continue
		}

		skip, err := rule.Match(rel, ctx)
		if err != nil {
			return rule.Name, false, err
		}

		if skip {
			return rule.Name, true, nil
		}
	}

	return "", false, nil
}
