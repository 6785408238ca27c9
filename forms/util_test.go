// Copyright (c) 2023-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package forms

import (
	"github.com/jedib0t/go-pretty/v6/text"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Util", func() {
	DescribeTable("colorMarkup",
		func(input string, expected string) {
			Expect(colorMarkup(input)).To(Equal(expected))
		},
		Entry("no markup", "Hello World", "Hello World"),
		Entry("single tag", "{red}Hello{/red} World", text.Colors{text.FgRed}.Sprint("Hello")+" World"),
		Entry("case insensitive", "{RED}Hello{/RED}", text.Colors{text.FgRed}.Sprint("Hello")),
		Entry("high intensity", "{higreen}ok{/higreen}", text.Colors{text.FgHiGreen}.Sprint("ok")),
		Entry("unknown colors are removed", "{invalid}Text{/invalid}", "Text"),
		Entry("nested tags", "{red}Outer {green}Inner{/green} Text{/red}", text.Colors{text.FgRed}.Sprint("Outer "+text.Colors{text.FgGreen}.Sprint("Inner")+" Text")),
		Entry("bold", "{bold}scafgen{/bold}", text.Colors{text.Bold}.Sprint("scafgen")),
	)

	Describe("render", func() {
		It("Should not apply color markup", func() {
			out, err := render("{red}{{ .x }}{/red}", map[string]any{"x": 1})
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal("{red}1{/red}"))
		})

		It("Should colorize through renderTemplate", func() {
			out, err := renderTemplate("{red}{{ .x }}{/red}", map[string]any{"x": 1})
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal(text.Colors{text.FgRed}.Sprint("1")))
		})
	})

	DescribeTable("zeroValue",
		func(t string, expected any) {
			Expect(zeroValue(t)).To(Equal(expected))
		},
		Entry("bool", BoolType, false),
		Entry("integer", IntType, 0),
		Entry("float", FloatType, float64(0)),
		Entry("string", StringType, ""),
	)
})
