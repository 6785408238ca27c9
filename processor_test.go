// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Processor", func() {
	var (
		target string
		ctx    Context
	)

	ginkgo.BeforeEach(func() {
		target = filepath.Join(ginkgo.GinkgoT().TempDir(), "target")
		ctx = Context{
			"project_name":       "My App",
			"project_name_snake": "my_app",
			"enable_precommit":   false,
			"enable_swagger":     false,
		}
	})

	ginkgo.Describe("Process", func() {
		ginkgo.It("Should render the main.go and config.json scenario", func() {
			p := NewProcessor(mapStore(map[string]string{
				"app/main.go.tmpl": "package {{project_name_snake}}",
				"app/config.json":  "{}",
			}), nil)

			files, err := p.Process(Namespace{Path: "app"}, ctx, osfs.New(target))
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(2))

			Expect(readTree(target)).To(Equal(map[string]string{
				"main.go":     "package my_app",
				"config.json": "{}",
			}))
		})

		ginkgo.It("Should strip markers and copy static files unchanged", func() {
			license := "Copyright {{ not a template }}\n\x00binary"
			p := NewProcessor(mapStore(map[string]string{
				"project/README.md.tmpl": "# {{ project_name }}\n",
				"project/LICENSE":        license,
			}), nil)

			files, err := p.Process(Namespace{Path: "project"}, ctx, osfs.New(target))
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(Equal([]OutputFile{
				{Path: "LICENSE", Source: "project/LICENSE", Content: []byte(license)},
				{Path: "README.md", Source: "project/README.md.tmpl", Content: []byte("# My App\n"), Rendered: true},
			}))

			tree := readTree(target)
			Expect(tree).To(HaveKeyWithValue("README.md", "# My App\n"))
			Expect(tree).To(HaveKeyWithValue("LICENSE", license))
			Expect(tree).ToNot(HaveKey("README.md.tmpl"))
		})

		ginkgo.It("Should preserve directory structure", func() {
			p := NewProcessor(mapStore(map[string]string{
				"ns/a/b/c/deep.txt.tmpl": "{{ project_name_snake }}",
				"ns/top.txt":             "top",
			}), nil)

			_, err := p.Process(Namespace{Path: "ns"}, ctx, osfs.New(target))
			Expect(err).ToNot(HaveOccurred())
			Expect(readTree(target)).To(Equal(map[string]string{
				"a/b/c/deep.txt": "my_app",
				"top.txt":        "top",
			}))
		})

		ginkgo.Describe("Skip rules", func() {
			var p *Processor

			ginkgo.BeforeEach(func() {
				p = NewProcessor(mapStore(map[string]string{
					"ns/.pre-commit-config.yaml.tmpl": "repos: # {{ project_name }}",
					"ns/main.go.tmpl":                 "package main",
					"ns/docs/docs.go.tmpl":            "package docs",
					"ns/docs/swagger.yaml.tmpl":       "swagger: 2.0",
					"ns/rpc/service.proto.tmpl":       "syntax = \"proto3\";",
				}), nil)
			})

			ginkgo.It("Should skip the pre-commit config when disabled", func() {
				_, err := p.Process(Namespace{Path: "ns", Rules: DefaultSkipRules()}, ctx, osfs.New(target))
				Expect(err).ToNot(HaveOccurred())

				tree := readTree(target)
				Expect(tree).ToNot(HaveKey(".pre-commit-config.yaml"))
				Expect(tree).To(HaveKey("main.go"))
			})

			ginkgo.It("Should render the pre-commit config when enabled", func() {
				ctx["enable_precommit"] = true

				_, err := p.Process(Namespace{Path: "ns", Rules: DefaultSkipRules()}, ctx, osfs.New(target))
				Expect(err).ToNot(HaveOccurred())
				Expect(readTree(target)).To(HaveKeyWithValue(".pre-commit-config.yaml", "repos: # My App"))
			})

			ginkgo.It("Should skip swagger artifacts unless enabled", func() {
				_, err := p.Process(Namespace{Path: "ns", Rules: DefaultSkipRules()}, ctx, osfs.New(target))
				Expect(err).ToNot(HaveOccurred())

				tree := readTree(target)
				Expect(tree).ToNot(HaveKey("docs/docs.go"))
				Expect(tree).ToNot(HaveKey("docs/swagger.yaml"))

				ctx["enable_swagger"] = true
				other := filepath.Join(ginkgo.GinkgoT().TempDir(), "other")
				_, err = p.Process(Namespace{Path: "ns", Rules: DefaultSkipRules()}, ctx, osfs.New(other))
				Expect(err).ToNot(HaveOccurred())
				Expect(readTree(other)).To(HaveKey("docs/docs.go"))
				Expect(readTree(other)).To(HaveKey("docs/swagger.yaml"))
			})

			ginkgo.It("Should not create directories holding only skipped files", func() {
				rules := append(DefaultSkipRules(), SkipTree("rpc", "enable_rpc"))
				_, err := p.Process(Namespace{Path: "ns", Rules: rules}, ctx, osfs.New(target))
				Expect(err).ToNot(HaveOccurred())

				Expect(filepath.Join(target, "docs")).ToNot(BeADirectory())
				Expect(filepath.Join(target, "rpc")).ToNot(BeADirectory())
				Expect(readTree(target)).To(Equal(map[string]string{"main.go": "package main"}))
			})

			ginkgo.It("Should log skipped files", func() {
				log := &testLogger{}
				p.Logger(log)

				_, err := p.Process(Namespace{Path: "ns", Rules: DefaultSkipRules()}, ctx, memfs.New())
				Expect(err).ToNot(HaveOccurred())
				Expect(log.lines).To(ContainElement("debug: Skipping %s due to rule %s"))
			})

			ginkgo.It("Should report failing rules", func() {
				rules := []SkipRule{{Name: "broken", Match: func(string, Context) (bool, error) { return false, errors.New("boom") }}}
				_, err := p.Process(Namespace{Path: "ns", Rules: rules}, ctx, memfs.New())
				Expect(err).To(MatchError(ContainSubstring(`skip rule "broken" failed`)))
			})
		})

		ginkgo.It("Should be deterministic across fresh targets", func() {
			p := NewProcessor(mapStore(map[string]string{
				"ns/README.md.tmpl":  "# {{ project_name }}",
				"ns/pkg/a.go.tmpl":   "package {{ project_name_snake }}",
				"ns/pkg/b.go":        "package b",
				"ns/scripts/run.sh":  "#!/bin/sh\n",
				"ns/.gitignore.tmpl": "/{{ project_name_snake }}",
			}), nil)

			a := filepath.Join(ginkgo.GinkgoT().TempDir(), "a")
			b := filepath.Join(ginkgo.GinkgoT().TempDir(), "b")

			_, err := p.Process(Namespace{Path: "ns"}, ctx, osfs.New(a))
			Expect(err).ToNot(HaveOccurred())
			_, err = p.Process(Namespace{Path: "ns"}, ctx, osfs.New(b))
			Expect(err).ToNot(HaveOccurred())

			Expect(readTree(a)).To(Equal(readTree(b)))
			Expect(readTree(a)).To(HaveLen(5))

			st, err := os.Stat(filepath.Join(a, "scripts", "run.sh"))
			Expect(err).ToNot(HaveOccurred())
			Expect(st.Mode().Perm() & 0100).ToNot(BeZero())
		})

		ginkgo.It("Should fail on undefined variables without writing the file", func() {
			p := NewProcessor(mapStore(map[string]string{
				"ns/bad.txt.tmpl": "{{undefined_key}}",
			}), nil)

			_, err := p.Process(Namespace{Path: "ns"}, ctx, osfs.New(target))
			var re *RenderError
			Expect(errors.As(err, &re)).To(BeTrue())
			Expect(re.Path).To(Equal("ns/bad.txt.tmpl"))
			Expect(filepath.Join(target, "bad.txt")).ToNot(BeAnExistingFile())
		})

		ginkgo.It("Should fail for missing namespaces", func() {
			p := NewProcessor(mapStore(map[string]string{"ns/a": "a"}), nil)
			_, err := p.Process(Namespace{Path: "frameworks/go/gin"}, ctx, memfs.New())
			Expect(errors.Is(err, ErrTemplateNotFound)).To(BeTrue())
		})

		ginkgo.It("Should keep files already in the output", func() {
			out := memfs.New()
			Expect(util.WriteFile(out, "main.go", []byte("framework"), 0644)).To(Succeed())

			p := NewProcessor(mapStore(map[string]string{
				"ns/main.go.tmpl": "language",
				"ns/go.sum":       "",
			}), nil)

			files, err := p.Process(Namespace{Path: "ns"}, ctx, out)
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(1))
			Expect(files[0].Path).To(Equal("go.sum"))

			b, err := util.ReadFile(out, "main.go")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(b)).To(Equal("framework"))
		})

		ginkgo.It("Should report write failures with the path", func() {
			Expect(os.MkdirAll(target, 0700)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(target, "docs"), []byte("a file"), 0600)).To(Succeed())

			p := NewProcessor(mapStore(map[string]string{
				"ns/docs/index.md": "docs",
			}), nil)

			_, err := p.Process(Namespace{Path: "ns"}, ctx, osfs.New(target))
			Expect(errors.Is(err, ErrIO)).To(BeTrue())

			var ioe *IOError
			Expect(errors.As(err, &ioe)).To(BeTrue())
			Expect(ioe.Path).To(Equal("docs"))
		})

		ginkgo.It("Should skip empty rendered files when configured", func() {
			p := NewProcessor(mapStore(map[string]string{
				"ns/cors.go.tmpl": "{{ if enable_cors }}package cors{{ end }}\n",
				"ns/main.go":      "package main",
			}), nil, WithSkipEmpty())

			files, err := p.Process(Namespace{Path: "ns"}, Context{"enable_cors": false}, memfs.New())
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(1))
			Expect(files[0].Path).To(Equal("main.go"))
		})

		ginkgo.It("Should post process matching files", func() {
			p := NewProcessor(mapStore(map[string]string{
				"ns/main.go":   "package main",
				"ns/README.md": "readme",
			}), nil, WithFilePost(FilePost{Glob: "*.go", Command: "sh -c 'echo // formatted >> {}'"}))

			_, err := p.Process(Namespace{Path: "ns"}, ctx, osfs.New(target))
			Expect(err).ToNot(HaveOccurred())

			tree := readTree(target)
			Expect(tree).To(HaveKeyWithValue("main.go", "package main// formatted\n"))
			Expect(tree).To(HaveKeyWithValue("README.md", "readme"))
		})
	})

	ginkgo.Describe("ProcessFile", func() {
		ginkgo.It("Should render a single file to a new name", func() {
			p := NewProcessor(mapStore(map[string]string{
				"licenses/MIT.tmpl": "Copyright {{ project_name }}",
			}), nil)

			out := memfs.New()
			f, err := p.ProcessFile("licenses/MIT.tmpl", "LICENSE", ctx, out)
			Expect(err).ToNot(HaveOccurred())
			Expect(f.Path).To(Equal("LICENSE"))
			Expect(string(f.Content)).To(Equal("Copyright My App"))
		})

		ginkgo.It("Should fail for missing files", func() {
			p := NewProcessor(mapStore(map[string]string{"licenses/MIT.tmpl": ""}), nil)
			_, err := p.ProcessFile("licenses/GPL.tmpl", "LICENSE", ctx, memfs.New())
			Expect(errors.Is(err, ErrTemplateNotFound)).To(BeTrue())
		})
	})

	ginkgo.Describe("Plan", func() {
		ginkgo.It("Should not write to disk", func() {
			p := NewProcessor(mapStore(map[string]string{
				"ns/README.md.tmpl": "# {{ project_name }}",
			}), nil)

			files, err := p.Plan(Namespace{Path: "ns"}, ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(1))
			Expect(string(files[0].Content)).To(Equal("# My App"))
			Expect(target).ToNot(BeADirectory())
		})

		ginkgo.It("Should not post process files", func() {
			marker := filepath.Join(ginkgo.GinkgoT().TempDir(), "ran")
			p := NewProcessor(mapStore(map[string]string{
				"ns/main.go": "package main",
			}), nil, WithFilePost(FilePost{Glob: "*.go", Command: "sh -c 'touch " + marker + "; exit 1'"}))

			files, err := p.Plan(Namespace{Path: "ns"}, ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(1))
			Expect(marker).ToNot(BeAnExistingFile())

			// the original processor keeps its post processing
			_, err = p.Process(Namespace{Path: "ns"}, ctx, osfs.New(target))
			Expect(err).To(HaveOccurred())
			Expect(marker).To(BeAnExistingFile())
		})
	})

	ginkgo.Describe("Manifests", func() {
		ginkgo.It("Should apply manifest skip rules and never copy the manifest", func() {
			p := NewProcessor(mapStore(map[string]string{
				"ns/" + ManifestFile: `
skip:
  - match: rpc/
    when: "!enable_rpc"
  - match: "*.proto"
    when: "!enable_rpc"
`,
				"ns/main.go":            "package main",
				"ns/rpc/server.go.tmpl": "package rpc",
				"ns/api/service.proto":  "syntax",
				"ns/api/service.api":    "api",
			}), nil)

			files, err := p.Process(Namespace{Path: "ns"}, Context{"enable_rpc": false}, memfs.New())
			Expect(err).ToNot(HaveOccurred())

			var paths []string
			for _, f := range files {
				paths = append(paths, f.Path)
			}
			Expect(paths).To(Equal([]string{"api/service.api", "main.go"}))

			files, err = p.Process(Namespace{Path: "ns"}, Context{"enable_rpc": true}, memfs.New())
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(4))
		})
	})
})
