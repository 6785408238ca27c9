// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package generators turns a set of parameters into a project on disk by
// processing the project, language and framework template namespaces in a
// fixed order and running their post-processing steps.
package generators

import (
	"context"
	"fmt"
	"path"

	"github.com/choria-io/scafgen"
	"github.com/choria-io/scafgen/params"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Generator owns one namespace of the template store and its post-processing steps
type Generator interface {
	// Name identifies the generator in logs
	Name() string
	// Namespace is the store namespace and skip rules this generator processes
	Namespace() scafgen.Namespace
	// Generate writes the namespace files into out
	Generate(proc *scafgen.Processor, ctx scafgen.Context, out billy.Filesystem) ([]scafgen.OutputFile, error)
	// Steps are the post-processing steps to run once files exist
	Steps(proc *scafgen.Processor, ctx scafgen.Context) ([]Step, error)
}

type namespaceGenerator struct {
	name string
	ns   scafgen.Namespace
}

func (g *namespaceGenerator) Name() string { return g.name }

func (g *namespaceGenerator) Namespace() scafgen.Namespace { return g.ns }

func (g *namespaceGenerator) Generate(proc *scafgen.Processor, ctx scafgen.Context, out billy.Filesystem) ([]scafgen.OutputFile, error) {
	return proc.Process(g.ns, ctx, out)
}

func (g *namespaceGenerator) Steps(proc *scafgen.Processor, ctx scafgen.Context) ([]Step, error) {
	return manifestSteps(proc, g.ns.Path, ctx)
}

// ProjectGenerator renders project wide files, the license and initializes version control
type ProjectGenerator struct {
	namespaceGenerator
}

// NewProjectGenerator creates the generator for the project namespace
func NewProjectGenerator() *ProjectGenerator {
	return &ProjectGenerator{namespaceGenerator{
		name: "project",
		ns:   scafgen.Namespace{Path: "project", Rules: scafgen.DefaultSkipRules()},
	}}
}

// LicensePath is the store path of a license template
func LicensePath(license string) string {
	return path.Join("licenses", license+scafgen.TemplateMarker)
}

func (g *ProjectGenerator) Generate(proc *scafgen.Processor, ctx scafgen.Context, out billy.Filesystem) ([]scafgen.OutputFile, error) {
	files, err := g.namespaceGenerator.Generate(proc, ctx, out)
	if err != nil {
		return files, err
	}

	license := ctx.String("license")
	if license == "" || license == params.NoLicense {
		return files, nil
	}

	f, err := proc.ProcessFile(LicensePath(license), "LICENSE", ctx, out)
	if err != nil {
		return files, fmt.Errorf("generating %s license failed: %w", license, err)
	}
	if f != nil {
		files = append(files, *f)
	}

	return files, nil
}

func (g *ProjectGenerator) Steps(proc *scafgen.Processor, ctx scafgen.Context) ([]Step, error) {
	var steps []Step

	if ctx.Bool("enable_git") {
		steps = append(steps, Step{
			Description: "Initialize git repository",
			Func:        gitInit,
		})

		if ctx.Bool("enable_precommit") {
			steps = append(steps, Step{
				Description: "Install pre-commit hooks",
				Command:     "pre-commit",
				Args:        []string{"install"},
			})
		}
	}

	extra, err := g.namespaceGenerator.Steps(proc, ctx)
	if err != nil {
		return nil, err
	}

	return append(steps, extra...), nil
}

func gitInit(_ context.Context, out billy.Filesystem) error {
	if _, err := out.Stat(git.GitDirName); err == nil {
		return nil
	}

	dot, err := out.Chroot(git.GitDirName)
	if err != nil {
		return err
	}

	_, err = git.Init(filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), out)
	if err != nil {
		return fmt.Errorf("git init failed: %w", err)
	}

	return nil
}

// LanguageGenerator renders language defaults and bootstraps the package manifest
type LanguageGenerator struct {
	namespaceGenerator
	lang params.Language
}

// NewLanguageGenerator creates the generator for the languages/<lang> namespace
func NewLanguageGenerator(lang params.Language) *LanguageGenerator {
	return &LanguageGenerator{
		namespaceGenerator: namespaceGenerator{
			name: string(lang),
			ns:   scafgen.Namespace{Path: path.Join("languages", string(lang)), Rules: scafgen.DefaultSkipRules()},
		},
		lang: lang,
	}
}

// Language is the language this generator renders
func (g *LanguageGenerator) Language() params.Language {
	return g.lang
}

func (g *LanguageGenerator) Steps(proc *scafgen.Processor, ctx scafgen.Context) ([]Step, error) {
	var steps []Step

	if g.lang == params.Go {
		module := ctx.String("module_path")
		version := ctx.String("go_version")

		steps = append(steps,
			Step{
				Description: "Initialize Go module",
				Command:     "go",
				Args:        []string{"mod", "init", module},
				Fallback: &Step{
					Description: "Write go.mod",
					Func:        writeGoMod(module, version),
				},
			},
			Step{
				Description: "Tidy Go module dependencies",
				Command:     "go",
				Args:        []string{"mod", "tidy"},
			},
		)
	}

	extra, err := g.namespaceGenerator.Steps(proc, ctx)
	if err != nil {
		return nil, err
	}

	return append(steps, extra...), nil
}

func writeGoMod(module string, version string) func(context.Context, billy.Filesystem) error {
	return func(_ context.Context, out billy.Filesystem) error {
		if _, err := out.Stat("go.mod"); err == nil {
			return nil
		}

		err := util.WriteFile(out, "go.mod", []byte(fmt.Sprintf("module %s\n\ngo %s\n", module, version)), 0644)
		if err != nil {
			return &scafgen.IOError{Path: "go.mod", Err: err}
		}

		return nil
	}
}

// FrameworkGenerator renders the server framework files and runs its code generators
type FrameworkGenerator struct {
	namespaceGenerator
	framework params.Framework
}

// NewFrameworkGenerator creates the generator for the frameworks/<lang>/<framework> namespace
func NewFrameworkGenerator(f params.Framework) *FrameworkGenerator {
	return &FrameworkGenerator{
		namespaceGenerator: namespaceGenerator{
			name: string(f),
			ns:   scafgen.Namespace{Path: path.Join("frameworks", string(f.Language()), string(f)), Rules: scafgen.DefaultSkipRules()},
		},
		framework: f,
	}
}

// Framework is the framework this generator renders
func (g *FrameworkGenerator) Framework() params.Framework {
	return g.framework
}
