// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package generators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/choria-io/scafgen"
	"github.com/choria-io/scafgen/params"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

const (
	StageFramework = "framework"
	StageLanguage  = "language"
	StageProject   = "project"
	StagePost      = "post"
)

// Options describes a generation request
type Options struct {
	// Target is the directory to create, it must not exist
	Target    string
	Base      *params.Base
	Project   *params.Project
	Language  *params.LanguageParams
	Framework *params.FrameworkParams
	// DryRun renders into memory and runs no steps
	DryRun bool
	// SkipPost writes files without formatting them and only lists the steps
	SkipPost bool
}

// Run is a validated generation request ready to be executed
type Run struct {
	Target    string
	Context   scafgen.Context
	Framework Generator
	Language  Generator
	Project   Generator
	DryRun    bool
	SkipPost  bool
}

// Generators lists the generators in processing order
func (r *Run) Generators() []Generator {
	var res []Generator
	for _, g := range []Generator{r.Framework, r.Language, r.Project} {
		if g != nil {
			res = append(res, g)
		}
	}

	return res
}

// Result is the outcome of a generation run
type Result struct {
	Target string
	Files  []scafgen.OutputFile
	Steps  []StepResult
	// Output holds the generated tree, in memory for dry runs
	Output billy.Filesystem
}

// Warnings are the steps that failed without aborting the run
func (r *Result) Warnings() []StepResult {
	var res []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			res = append(res, s)
		}
	}

	return res
}

// Orchestrator sequences the generators of a run
type Orchestrator struct {
	proc   *scafgen.Processor
	runner Runner
	log    scafgen.Logger
}

// New creates an orchestrator, a nil runner runs steps as local processes
func New(proc *scafgen.Processor, runner Runner) *Orchestrator {
	if runner == nil {
		runner = &ExecRunner{}
	}

	return &Orchestrator{proc: proc, runner: runner}
}

// Logger configures a logger to use, no logging is done without this
func (o *Orchestrator) Logger(log scafgen.Logger) {
	o.log = log
	o.proc.Logger(log)
}

func (o *Orchestrator) infof(format string, v ...any) {
	if o.log != nil {
		o.log.Infof(format, v...)
	}
}

func (o *Orchestrator) warnf(format string, v ...any) {
	if o.log != nil {
		o.log.Warnf(format, v...)
	}
}

// Prepare validates the options and builds the run, nothing is written
func (o *Orchestrator) Prepare(opts Options) (*Run, error) {
	if opts.Target == "" {
		return nil, &scafgen.ValidationError{Field: "target", Reason: "is required"}
	}
	if opts.Base == nil || opts.Language == nil {
		return nil, fmt.Errorf("base and language parameters are required")
	}

	project := opts.Project
	if project == nil {
		project = params.NewProject(opts.Base.ProjectName)
	}

	framework := opts.Framework
	if framework == nil {
		framework = params.NewFramework(params.None)
	}

	err := params.ValidateAll(opts.Base, project, opts.Language, framework)
	if err != nil {
		return nil, err
	}

	err = framework.CompatibleWith(opts.Language.Language)
	if err != nil {
		return nil, err
	}

	target, err := filepath.Abs(opts.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid target %s: %w", opts.Target, err)
	}

	_, err = os.Stat(target)
	if err == nil {
		return nil, &scafgen.ValidationError{Field: "target", Value: target, Reason: "already exists"}
	}

	run := &Run{
		Target:   target,
		Context:  params.Merge(opts.Base, project, opts.Language, framework),
		Language: NewLanguageGenerator(opts.Language.Language),
		Project:  NewProjectGenerator(),
		DryRun:   opts.DryRun,
		SkipPost: opts.SkipPost,
	}

	if framework.Framework != params.None && framework.Framework != "" {
		run.Framework = NewFrameworkGenerator(framework.Framework)
	}

	for _, g := range run.Generators() {
		if !o.proc.Store().Exists(g.Namespace().Path) {
			return nil, &scafgen.TemplateNotFoundError{Path: g.Namespace().Path}
		}
	}

	if project.HasLicense() && !o.proc.Store().Exists(LicensePath(project.License)) {
		return nil, &scafgen.TemplateNotFoundError{Path: LicensePath(project.License)}
	}

	return run, nil
}

// Generate executes the run.
//
// The framework, language and project namespaces are processed in that order,
// each followed by its steps, and the framework steps run last. Failures while
// processing templates abort the run leaving partial output on disk, step
// failures are reported in the result unless the step is required.
func (o *Orchestrator) Generate(ctx context.Context, run *Run) (*Result, error) {
	res := &Result{Target: run.Target}

	var out billy.Filesystem
	if run.DryRun {
		out = memfs.New()
	} else {
		err := os.MkdirAll(run.Target, 0755)
		if err != nil {
			return res, &scafgen.IOError{Path: run.Target, Err: err}
		}
		out = osfs.New(run.Target)
	}
	res.Output = out

	// formatters would run against host paths for in memory output
	proc := o.proc
	if run.DryRun || run.SkipPost {
		proc = proc.WithoutFilePost()
	}

	var frameworkSteps []Step

	if run.Framework != nil {
		err := o.generate(proc, run.Framework, run, out, res)
		if err != nil {
			return res, err
		}

		frameworkSteps, err = run.Framework.Steps(proc, run.Context)
		if err != nil {
			return res, err
		}
	}

	for _, stage := range []struct {
		name string
		gen  Generator
	}{
		{StageLanguage, run.Language},
		{StageProject, run.Project},
	} {
		err := o.generate(proc, stage.gen, run, out, res)
		if err != nil {
			return res, err
		}

		steps, err := stage.gen.Steps(proc, run.Context)
		if err != nil {
			return res, err
		}

		err = o.runSteps(ctx, stage.name, steps, run, out, res)
		if err != nil {
			return res, err
		}
	}

	err := o.runSteps(ctx, StagePost, frameworkSteps, run, out, res)
	if err != nil {
		return res, err
	}

	return res, nil
}

func (o *Orchestrator) generate(proc *scafgen.Processor, g Generator, run *Run, out billy.Filesystem, res *Result) error {
	o.infof("Generating %s files from %s", g.Name(), g.Namespace().Path)

	files, err := g.Generate(proc, run.Context, out)
	res.Files = append(res.Files, files...)
	if err != nil {
		return fmt.Errorf("%s generator failed: %w", g.Name(), err)
	}

	return nil
}

func (o *Orchestrator) runSteps(ctx context.Context, stage string, steps []Step, run *Run, out billy.Filesystem, res *Result) error {
	for _, step := range steps {
		sr := StepResult{Stage: stage, Step: step}

		if run.DryRun || run.SkipPost {
			sr.Skipped = true
			res.Steps = append(res.Steps, sr)
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		o.infof("%s: %s", step.Description, step)

		err := o.runner.Run(ctx, out, step)
		if err != nil && step.Fallback != nil {
			o.warnf("%s failed, using fallback %s: %v", step, step.Fallback.Description, err)

			ferr := o.runner.Run(ctx, out, *step.Fallback)
			if ferr == nil {
				sr.FellBack = true
				err = nil
			} else {
				err = errors.Join(err, ferr)
			}
		}

		if err != nil {
			if step.Required {
				sr.Err = err
				res.Steps = append(res.Steps, sr)
				return fmt.Errorf("%s failed: %w", step.Description, err)
			}

			o.warnf("%s failed: %v", step.Description, err)
			sr.Err = err
		}

		res.Steps = append(res.Steps, sr)
	}

	return nil
}
