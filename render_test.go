// Copyright (c) 2023-2024, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"errors"
	"reflect"
	"strings"
	"text/template"

	"github.com/CloudyKit/jet/v6"
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Renderer", func() {
	ctx := Context{
		"project_name":       "my-app",
		"project_name_snake": "my_app",
		"enable_cors":        true,
		"port":               8080,
	}

	ginkgo.Describe("Jet", func() {
		var r *Renderer

		ginkgo.BeforeEach(func() {
			r = NewRenderer()
		})

		ginkgo.It("Should default to jet", func() {
			Expect(r.Engine()).To(Equal(EngineJet))
			Expect(r.Engine().String()).To(Equal("jet"))
		})

		ginkgo.It("Should return static text unchanged", func() {
			static := "# Heading\n\nNo placeholders here, just text: { } [ ] $ %\n"
			for _, c := range []Context{{}, ctx, {"other": "value"}} {
				res, err := r.Render("static.md", []byte(static), c)
				Expect(err).ToNot(HaveOccurred())
				Expect(string(res)).To(Equal(static))
			}
		})

		ginkgo.It("Should substitute variables", func() {
			res, err := r.RenderString("package {{project_name_snake}} on {{ port }}", ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal("package my_app on 8080"))
		})

		ginkgo.It("Should support conditionals on flags", func() {
			res, err := r.RenderString("{{ if enable_cors }}cors{{ else }}none{{ end }}", ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal("cors"))
		})

		ginkgo.DescribeTable("case helpers",
			func(tmpl string, expected string) {
				res, err := r.RenderString(tmpl, ctx)
				Expect(err).ToNot(HaveOccurred())
				Expect(res).To(Equal(expected))
			},
			ginkgo.Entry("camel", "{{ to_camel_case(project_name) }}", "MyApp"),
			ginkgo.Entry("camel from snake", `{{ to_camel_case("user_service") }}`, "UserService"),
			ginkgo.Entry("lower camel", "{{ to_lower_camel_case(project_name) }}", "myApp"),
			ginkgo.Entry("snake", "{{ to_snake_case(project_name) }}", "my_app"),
			ginkgo.Entry("snake from pascal", `{{ to_snake_case("MyApp") }}`, "my_app"),
			ginkgo.Entry("kebab", `{{ to_kebab_case("MyApp") }}`, "my-app"),
			ginkgo.Entry("sprig title", `{{ title("hello") }}`, "Hello"),
		)

		ginkgo.It("Should fail on undefined keys", func() {
			_, err := r.Render("main.go.tmpl", []byte("package {{undefined_key}}"), ctx)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrRender)).To(BeTrue())

			var re *RenderError
			Expect(errors.As(err, &re)).To(BeTrue())
			Expect(re.Path).To(Equal("main.go.tmpl"))
		})

		ginkgo.It("Should fail on malformed templates", func() {
			_, err := r.Render("bad.tmpl", []byte("{{ project_name "), ctx)
			Expect(errors.Is(err, ErrRender)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("bad.tmpl"))
		})

		ginkgo.It("Should be reusable with different contexts", func() {
			tmpl := []byte("{{ project_name }}")
			a, err := r.Render("t", tmpl, Context{"project_name": "a"})
			Expect(err).ToNot(HaveOccurred())
			b, err := r.Render("t", tmpl, Context{"project_name": "b"})
			Expect(err).ToNot(HaveOccurred())
			Expect(string(a)).To(Equal("a"))
			Expect(string(b)).To(Equal("b"))
		})

		ginkgo.It("Should support custom delimiters", func() {
			r = NewRenderer(WithDelimiters("[[", "]]"))
			res, err := r.RenderString("{{ keep }} [[ project_name ]]", ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal("{{ keep }} my-app"))
		})

		ginkgo.It("Should support custom functions", func() {
			r = NewRenderer(WithJetFuncs(map[string]jet.Func{
				"shout": func(a jet.Arguments) reflect.Value {
					return reflect.ValueOf(strings.ToUpper(a.Get(0).String()))
				},
			}))
			res, err := r.RenderString(`{{ shout("hi") }}`, ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal("HI"))
		})
	})

	ginkgo.Describe("Go templates", func() {
		var r *Renderer

		ginkgo.BeforeEach(func() {
			r = NewRenderer(WithEngine(EngineGoTemplate))
		})

		ginkgo.It("Should render with helpers and sprig", func() {
			res, err := r.RenderString(`{{ .project_name | to_snake_case }} {{ .project_name | upper }}`, ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal("my_app MY-APP"))
		})

		ginkgo.It("Should fail on undefined keys", func() {
			_, err := r.RenderString("{{ .undefined_key }}", ctx)
			Expect(errors.Is(err, ErrRender)).To(BeTrue())
		})

		ginkgo.It("Should support custom functions", func() {
			r = NewRenderer(WithEngine(EngineGoTemplate), WithFuncs(template.FuncMap{"hello": func() string { return "hello" }}))
			res, err := r.RenderString("{{ hello }}", ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal("hello"))
		})
	})

	ginkgo.DescribeTable("ParseEngine",
		func(in string, expected Engine, fails bool) {
			e, err := ParseEngine(in)
			if fails {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).ToNot(HaveOccurred())
			Expect(e).To(Equal(expected))
		},
		ginkgo.Entry("default", "", EngineJet, false),
		ginkgo.Entry("jet", "jet", EngineJet, false),
		ginkgo.Entry("go", "go", EngineGoTemplate, false),
		ginkgo.Entry("unknown", "handlebars", EngineJet, true),
	)
})
