// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/kballard/go-shellquote"
)

// TemplateMarker is the suffix identifying files that are rendered rather than copied
const TemplateMarker = ".tmpl"

// Logger is the logging interface used by all components
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
}

// StripMarker removes the template marker from name
func StripMarker(name string) string {
	return strings.TrimSuffix(name, TemplateMarker)
}

// IsTemplate reports if name carries the template marker
func IsTemplate(name string) bool {
	return strings.HasSuffix(name, TemplateMarker) && len(name) > len(TemplateMarker)
}

// Namespace is a subtree of the Store processed as a unit together with its skip rules
type Namespace struct {
	// Path is the namespace root within the store like languages/go
	Path string
	// Rules are evaluated in order before those from the namespace manifest
	Rules []SkipRule
}

// OutputFile is a file produced by processing a namespace
type OutputFile struct {
	// Path is relative to the output root using forward slashes
	Path string
	// Source is the store path the file was produced from
	Source   string
	Content  []byte
	Rendered bool
}

// FilePost runs Command against every written file whose base name matches Glob.
// A {} in the command is replaced with the file path, without one the path is appended
type FilePost struct {
	Glob    string
	Command string
}

// Processor materializes namespaces from a Store into an output filesystem
type Processor struct {
	store     Store
	renderer  *Renderer
	skipEmpty bool
	post      []FilePost
	log       Logger
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithSkipEmpty skips rendered files that are only whitespace
func WithSkipEmpty() ProcessorOption {
	return func(p *Processor) {
		p.skipEmpty = true
	}
}

// WithFilePost post-processes written files using external commands
func WithFilePost(post ...FilePost) ProcessorOption {
	return func(p *Processor) {
		p.post = append(p.post, post...)
	}
}

// NewProcessor creates a processor reading from store and rendering with renderer
func NewProcessor(store Store, renderer *Renderer, opts ...ProcessorOption) *Processor {
	if renderer == nil {
		renderer = NewRenderer()
	}

	p := &Processor{store: store, renderer: renderer}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithoutFilePost is a copy of the processor that does not post process written files
func (p *Processor) WithoutFilePost() *Processor {
	c := *p
	c.post = nil

	return &c
}

// Logger configures a logger to use, no logging is done without this
func (p *Processor) Logger(log Logger) {
	p.log = log
}

// Store is the store templates are read from
func (p *Processor) Store() Store {
	return p.store
}

// Renderer is the renderer templates are rendered with
func (p *Processor) Renderer() *Renderer {
	return p.renderer
}

func (p *Processor) debugf(format string, v ...any) {
	if p.log != nil {
		p.log.Debugf(format, v...)
	}
}

func (p *Processor) infof(format string, v ...any) {
	if p.log != nil {
		p.log.Infof(format, v...)
	}
}

// Process renders or copies every file in the namespace into out.
//
// Files already present in out are left untouched so earlier namespaces take
// precedence. Processing stops at the first error, files written up to that
// point remain in out.
func (p *Processor) Process(ns Namespace, ctx Context, out billy.Filesystem) ([]OutputFile, error) {
	root := cleanStorePath(ns.Path)

	if !p.store.Exists(root) {
		return nil, &TemplateNotFoundError{Path: ns.Path}
	}

	manifest, err := LoadManifest(p.store, root)
	if err != nil {
		return nil, err
	}

	rules := append(append([]SkipRule{}, ns.Rules...), manifest.SkipRules()...)

	var res []OutputFile

	for src, err := range p.store.List(root) {
		if err != nil {
			return res, err
		}

		rel := strings.TrimPrefix(src, root+"/")
		if root == "." {
			rel = src
		}

		if rel == ManifestFile {
			continue
		}

		rule, skip, err := shouldSkip(rules, rel, ctx)
		if err != nil {
			return res, fmt.Errorf("skip rule %q failed on %s: %w", rule, src, err)
		}
		if skip {
			p.debugf("Skipping %s due to rule %s", src, rule)
			continue
		}

		f, err := p.processFile(src, StripMarker(rel), ctx, out)
		if err != nil {
			return res, err
		}

		if f != nil {
			res = append(res, *f)
		}
	}

	return res, nil
}

// ProcessFile renders or copies a single store file to dest in out
func (p *Processor) ProcessFile(src string, dest string, ctx Context, out billy.Filesystem) (*OutputFile, error) {
	src = cleanStorePath(src)

	if !p.store.Exists(src) {
		return nil, &TemplateNotFoundError{Path: src}
	}

	return p.processFile(src, cleanStorePath(dest), ctx, out)
}

// Plan processes the namespace into memory and returns the files it would produce,
// file post processing is not done
func (p *Processor) Plan(ns Namespace, ctx Context) ([]OutputFile, error) {
	return p.WithoutFilePost().Process(ns, ctx, memfs.New())
}

func (p *Processor) processFile(src string, dest string, ctx Context, out billy.Filesystem) (*OutputFile, error) {
	content, err := p.store.Read(src)
	if err != nil {
		return nil, err
	}

	rendered := IsTemplate(path.Base(src))
	if rendered {
		content, err = p.renderer.Render(src, content, ctx)
		if err != nil {
			return nil, err
		}

		if p.skipEmpty && len(bytes.TrimSpace(content)) == 0 {
			p.infof("Skipping empty file %s", dest)
			return nil, nil
		}
	}

	_, err = out.Stat(dest)
	if err == nil {
		p.debugf("Keeping existing file %s", dest)
		return nil, nil
	}

	err = p.writeFile(out, dest, content)
	if err != nil {
		return nil, err
	}

	err = p.postFile(out, dest)
	if err != nil {
		return nil, err
	}

	if rendered {
		p.infof("Rendered %s", dest)
	} else {
		p.infof("Copied %s", dest)
	}

	return &OutputFile{Path: dest, Source: src, Content: content, Rendered: rendered}, nil
}

func (p *Processor) writeFile(out billy.Filesystem, dest string, content []byte) error {
	if dir := path.Dir(dest); dir != "." {
		err := out.MkdirAll(dir, 0755)
		if err != nil {
			return &IOError{Path: dir, Err: err}
		}
	}

	mode := os.FileMode(0644)
	if strings.HasSuffix(dest, ".sh") {
		mode = 0755
	}

	err := util.WriteFile(out, dest, content, mode)
	if err != nil {
		return &IOError{Path: dest, Err: err}
	}

	return nil
}

func (p *Processor) postFile(out billy.Filesystem, dest string) error {
	if len(p.post) == 0 {
		return nil
	}

	f := filepath.Join(out.Root(), filepath.FromSlash(dest))

	for _, post := range p.post {
		matched, err := path.Match(post.Glob, path.Base(dest))
		if err != nil {
			return err
		}

		if !matched {
			continue
		}

		parts, err := shellquote.Split(post.Command)
		if err != nil {
			return err
		}
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		var args []string
		hasPlaceholder := false
		for _, a := range parts[1:] {
			if strings.Contains(a, "{}") {
				args = append(args, strings.ReplaceAll(a, "{}", f))
				hasPlaceholder = true
			} else {
				args = append(args, a)
			}
		}

		if !hasPlaceholder {
			args = append(args, f)
		}

		p.debugf("Post processing using: %s", shellquote.Join(append([]string{cmd}, args...)...))

		output, err := exec.Command(cmd, args...).CombinedOutput()
		if err != nil {
			return &ExternalToolError{Command: cmd, Output: string(output), Err: err}
		}
	}

	return nil
}
