// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package walkfdtest holds fixture-building helpers shared by this
// project's test suites: constructing a directory tree on disk and
// draining a Walker's full output.
//
// It plays the role samples.SampleTest plays for fuse's test suites, but
// built on the standard testing package rather than ogletest, since this
// core doesn't carry ogletest or its matcher library.
package walkfdtest

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/walkfd/walkfd"
)

// Tree builds a directory tree under a fresh temporary directory that's
// removed automatically when the test finishes.
type Tree struct {
	Root string
}

// NewTree creates the temporary directory backing a Tree.
func NewTree(t *testing.T) *Tree {
	return &Tree{Root: t.TempDir()}
}

// Dir creates a directory at rel (slash-separated, relative to the tree's
// root), including any missing parents. It fails the test immediately on
// error, since a broken fixture makes the rest of the test meaningless.
func (tr *Tree) Dir(t *testing.T, rel string) *Tree {
	if err := os.MkdirAll(filepath.Join(tr.Root, rel), 0755); err != nil {
		t.Fatalf("walkfdtest: MkdirAll(%s): %v", rel, err)
	}
	return tr
}

// File creates a regular file at rel with the given contents, including
// any missing parent directories.
func (tr *Tree) File(t *testing.T, rel string, contents string) *Tree {
	full := filepath.Join(tr.Root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("walkfdtest: MkdirAll(%s): %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(contents), 0644); err != nil {
		t.Fatalf("walkfdtest: WriteFile(%s): %v", rel, err)
	}
	return tr
}

// Symlink creates a symbolic link at rel pointing at target (used
// verbatim, so pass an absolute path for a link that should resolve
// regardless of rel's location in the tree).
func (tr *Tree) Symlink(t *testing.T, rel, target string) *Tree {
	full := filepath.Join(tr.Root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("walkfdtest: MkdirAll(%s): %v", rel, err)
	}
	if err := os.Symlink(target, full); err != nil {
		t.Fatalf("walkfdtest: Symlink(%s): %v", rel, err)
	}
	return tr
}

// Path joins rel onto the tree's root.
func (tr *Tree) Path(rel string) string {
	return filepath.Join(tr.Root, rel)
}

// Drain runs w to completion, returning every yielded path in emission
// order and every non-nil, non-io.EOF error encountered along the way.
func Drain(t *testing.T, w *walkfd.Walker) (paths []string, errs []error) {
	for {
		entry, err := w.Next()
		if err == io.EOF {
			return paths, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, entry.Path())
	}
}

// Sorted returns a copy of paths in sorted order, for comparing a Walker's
// output against an expected set without depending on kernel emission
// order.
func Sorted(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}
