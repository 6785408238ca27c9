// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package generators

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/choria-io/scafgen"
	"github.com/go-git/go-billy/v5"
	"github.com/kballard/go-shellquote"
)

// Step is a post-processing action run once the file tree exists
type Step struct {
	Description string
	// Command and Args are executed in Dir, relative to the output directory
	Command string
	Args    []string
	Dir     string
	// Func is run in process instead of Command when set
	Func func(ctx context.Context, out billy.Filesystem) error
	// Fallback runs when the step fails, a successful fallback counts as success
	Fallback *Step
	// Required failures abort the run, others are reported as warnings
	Required bool
}

// String is the command line of the step or its description for in-process steps
func (s Step) String() string {
	if s.Command == "" {
		return s.Description
	}

	return shellquote.Join(append([]string{s.Command}, s.Args...)...)
}

// Runner executes post-processing steps against an output directory
type Runner interface {
	Run(ctx context.Context, out billy.Filesystem, step Step) error
}

// ExecRunner runs steps as local processes
type ExecRunner struct{}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, out billy.Filesystem, step Step) error {
	if step.Func != nil {
		return step.Func(ctx, out)
	}

	cmd := exec.CommandContext(ctx, step.Command, step.Args...)
	cmd.Dir = filepath.Join(out.Root(), filepath.FromSlash(step.Dir))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return &scafgen.ExternalToolError{Command: step.String(), Output: string(output), Err: err}
	}

	return nil
}

// StepResult is the outcome of a step
type StepResult struct {
	// Stage is one of framework, language, project or post
	Stage string
	Step  Step
	// Err is set for failed steps that did not abort the run
	Err error
	// Skipped steps were not run due to dry-run or disabled post-processing
	Skipped bool
	// FellBack is set when the step failed and its fallback succeeded
	FellBack bool
}

// manifestSteps converts the enabled post steps of a namespace manifest
func manifestSteps(proc *scafgen.Processor, ns string, ctx scafgen.Context) ([]Step, error) {
	m, err := scafgen.LoadManifest(proc.Store(), ns)
	if err != nil {
		return nil, err
	}

	var steps []Step
	for _, ms := range m.Post {
		ok, err := ms.Enabled(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		cmd, args, err := ms.Command(proc.Renderer(), ctx)
		if err != nil {
			return nil, err
		}

		desc := ms.Description
		if desc == "" {
			desc = ms.Run
		}

		steps = append(steps, Step{
			Description: desc,
			Command:     cmd,
			Args:        args,
			Dir:         ms.Dir,
			Required:    ms.Required,
		})
	}

	return steps, nil
}
