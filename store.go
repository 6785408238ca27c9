// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package scafgen

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path"
	"strings"
)

// Store is a read-only collection of template and static files addressed by slash separated paths
type Store interface {
	// Exists reports if path is a file or a directory holding files
	Exists(path string) bool
	// List yields every file below path in lexical order, it can be called repeatedly with identical results
	List(path string) iter.Seq2[string, error]
	// Read returns the content of the file at path, a TemplateNotFoundError when it does not exist
	Read(path string) ([]byte, error)
}

// FSStore is a Store backed by any fs.FS, typically an embed.FS
type FSStore struct {
	fsys fs.FS
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates a store reading from fsys
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// NewDirStore creates a store reading templates from a directory on disk
func NewDirStore(dir string) *FSStore {
	return NewFSStore(os.DirFS(dir))
}

func cleanStorePath(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return "."
	}

	return p
}

func (s *FSStore) Exists(p string) bool {
	p = cleanStorePath(p)

	st, err := fs.Stat(s.fsys, p)
	if err != nil {
		return false
	}

	if !st.IsDir() {
		return true
	}

	for _, err := range s.List(p) {
		return err == nil
	}

	return false
}

func (s *FSStore) List(p string) iter.Seq2[string, error] {
	root := cleanStorePath(p)

	return func(yield func(string, error) bool) {
		stopped := false

		err := fs.WalkDir(s.fsys, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path, nil) {
				stopped = true
				return fs.SkipAll
			}

			return nil
		})
		if err != nil && !stopped {
			if errors.Is(err, fs.ErrNotExist) {
				err = &TemplateNotFoundError{Path: p}
			}
			yield("", err)
		}
	}
}

func (s *FSStore) Read(p string) ([]byte, error) {
	b, err := fs.ReadFile(s.fsys, cleanStorePath(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &TemplateNotFoundError{Path: p}
	}

	return b, err
}
