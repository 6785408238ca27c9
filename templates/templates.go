// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package templates holds the template tree compiled into the scafgen binary
package templates

import (
	"embed"
	"io/fs"

	"github.com/choria-io/scafgen"
)

// Engine is the template engine the embedded templates are written for
const Engine = scafgen.EngineJet

//go:embed all:assets
var assets embed.FS

// FS is the embedded template tree rooted at the namespaces
func FS() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}

	return sub
}

// Renderer returns a renderer for the embedded templates
func Renderer() *scafgen.Renderer {
	return scafgen.NewRenderer(scafgen.WithEngine(Engine))
}

// Store returns a store reading the embedded templates
func Store() *scafgen.FSStore {
	return scafgen.NewFSStore(FS())
}
