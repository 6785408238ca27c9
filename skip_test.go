// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("SkipRule", func() {
	matches := func(rule SkipRule, rel string, ctx Context) bool {
		skip, err := rule.Match(rel, ctx)
		Expect(err).ToNot(HaveOccurred())
		return skip
	}

	ginkgo.DescribeTable("PrecommitRule",
		func(rel string, enabled bool, expected bool) {
			Expect(matches(PrecommitRule(), rel, Context{"enable_precommit": enabled})).To(Equal(expected))
		},
		ginkgo.Entry("template disabled", ".pre-commit-config.yaml.tmpl", false, true),
		ginkgo.Entry("static disabled", ".pre-commit-config.yaml", false, true),
		ginkgo.Entry("nested disabled", "config/.pre-commit-config.yaml", false, true),
		ginkgo.Entry("enabled", ".pre-commit-config.yaml.tmpl", true, false),
		ginkgo.Entry("other file", ".pre-commit-hooks.yaml", false, false),
	)

	ginkgo.DescribeTable("SwaggerRule",
		func(rel string, enabled bool, expected bool) {
			Expect(matches(SwaggerRule(), rel, Context{"enable_swagger": enabled})).To(Equal(expected))
		},
		ginkgo.Entry("swagger json", "docs/swagger.json", false, true),
		ginkgo.Entry("swagger yaml template", "docs/swagger.yaml.tmpl", false, true),
		ginkgo.Entry("docs entrypoint", "docs/docs.go.tmpl", false, true),
		ginkgo.Entry("mixed case", "api/Swagger-UI.html", false, true),
		ginkgo.Entry("enabled", "docs/swagger.json", true, false),
		ginkgo.Entry("unrelated", "docs/index.md", false, false),
	)

	ginkgo.It("Should treat string flags as booleans", func() {
		Expect(matches(PrecommitRule(), ".pre-commit-config.yaml", Context{"enable_precommit": "true"})).To(BeFalse())
		Expect(matches(PrecommitRule(), ".pre-commit-config.yaml", Context{})).To(BeTrue())
	})

	ginkgo.Describe("SkipFile", func() {
		ginkgo.It("Should match with and without the marker", func() {
			rule := SkipFile("internal/middleware/cors.go.tmpl", "enable_cors")
			Expect(matches(rule, "internal/middleware/cors.go.tmpl", Context{})).To(BeTrue())
			Expect(matches(rule, "internal/middleware/cors.go", Context{})).To(BeTrue())
			Expect(matches(rule, "internal/middleware/cors.go.tmpl", Context{"enable_cors": true})).To(BeFalse())
			Expect(matches(rule, "cors.go.tmpl", Context{})).To(BeFalse())
		})
	})

	ginkgo.Describe("SkipTree", func() {
		ginkgo.It("Should match everything below the prefix", func() {
			rule := SkipTree("rpc/", "enable_rpc")
			Expect(matches(rule, "rpc/service.proto.tmpl", Context{})).To(BeTrue())
			Expect(matches(rule, "rpc/internal/server.go.tmpl", Context{})).To(BeTrue())
			Expect(matches(rule, "rpcgen/main.go", Context{})).To(BeFalse())
			Expect(matches(rule, "rpc/service.proto.tmpl", Context{"enable_rpc": true})).To(BeFalse())
		})
	})

	ginkgo.Describe("shouldSkip", func() {
		ginkgo.It("Should report the first matching rule", func() {
			rules := []SkipRule{
				{Name: "never", Match: func(string, Context) (bool, error) { return false, nil }},
				{Name: "first", Match: func(string, Context) (bool, error) { return true, nil }},
				{Name: "second", Match: func(string, Context) (bool, error) { return true, nil }},
			}

			name, skip, err := shouldSkip(rules, "a", Context{})
			Expect(err).ToNot(HaveOccurred())
			Expect(skip).To(BeTrue())
			Expect(name).To(Equal("first"))

			_, skip, err = shouldSkip(nil, "a", Context{})
			Expect(err).ToNot(HaveOccurred())
			Expect(skip).To(BeFalse())
		})
	})
})
