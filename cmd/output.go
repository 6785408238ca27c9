// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/briandowns/spinner"
	"github.com/choria-io/scafgen"
	"github.com/choria-io/scafgen/generators"
	"github.com/go-git/go-billy/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// spinnerRunner shows a spinner while steps run
type spinnerRunner struct {
	next    generators.Runner
	enabled bool
}

func (r *spinnerRunner) Run(ctx context.Context, out billy.Filesystem, step generators.Step) error {
	if !r.enabled {
		return r.next.Run(ctx, out, step)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + step.Description
	s.Start()
	defer s.Stop()

	return r.next.Run(ctx, out, step)
}

// toolsFor lists the external tools the steps of a run would call
func toolsFor(ctx scafgen.Context) []string {
	var tools []string

	switch ctx.String("language") {
	case "go":
		tools = append(tools, "go")
	case "python":
		tools = append(tools, "uv")
	case "rust":
		tools = append(tools, "cargo")
	}

	if ctx.Bool("enable_precommit") && ctx.Bool("enable_git") {
		tools = append(tools, "pre-commit")
	}

	switch ctx.String("framework") {
	case "gin":
		if ctx.Bool("enable_swagger") {
			tools = append(tools, "swag")
		}
	case "go-zero":
		if ctx.Bool("enable_proto_gen") {
			tools = append(tools, "goctl")
		}
	}

	return tools
}

// probeEnvironment warns about tools post processing needs that are not installed
func probeEnvironment(ctx scafgen.Context) []string {
	var warnings []string

	for _, tool := range toolsFor(ctx) {
		_, err := exec.LookPath(tool)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s was not found in PATH, steps using it will fail", tool))
		}
	}

	return warnings
}

func stepStatus(s generators.StepResult) string {
	switch {
	case s.Skipped:
		return text.FgYellow.Sprint("skipped")
	case s.Err != nil:
		return text.FgRed.Sprintf("failed: %v", s.Err)
	case s.FellBack:
		return text.FgYellow.Sprintf("used %s", s.Step.Fallback.Description)
	default:
		return text.FgGreen.Sprint("ok")
	}
}

func showResult(w io.Writer, res *generators.Result, run *generators.Run) {
	files := table.NewWriter()
	files.SetOutputMirror(w)
	files.SetStyle(table.StyleRounded)
	files.AppendHeader(table.Row{"File", "Action", "Source"})

	for _, f := range res.Files {
		action := "copied"
		if f.Rendered {
			action = "rendered"
		}
		files.AppendRow(table.Row{f.Path, action, f.Source})
	}

	if len(res.Files) > 0 {
		files.Render()
	}

	if len(res.Steps) > 0 {
		steps := table.NewWriter()
		steps.SetOutputMirror(w)
		steps.SetStyle(table.StyleRounded)
		steps.AppendHeader(table.Row{"Stage", "Step", "Result"})

		for _, s := range res.Steps {
			steps.AppendRow(table.Row{s.Stage, s.Step.String(), stepStatus(s)})
		}

		steps.Render()
	}

	fmt.Fprintln(w)

	switch {
	case run.DryRun:
		fmt.Fprintf(w, "Dry run: %d files would be created in %s\n", len(res.Files), res.Target)
	case len(res.Warnings()) > 0:
		fmt.Fprintf(w, "Created %s with %d warnings\n", res.Target, len(res.Warnings()))
	default:
		fmt.Fprintf(w, "Created %s\n", text.Bold.Sprint(res.Target))
	}
}
