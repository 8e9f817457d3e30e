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

package walkfd

import (
	"os"

	"github.com/walkfd/walkfd/internal/filekind"
	"github.com/walkfd/walkfd/internal/parentchain"
)

// FileKind is the type of filesystem entry the kernel reported, or Unknown
// when the filesystem doesn't report types inline.
type FileKind = filekind.Kind

const (
	Unknown      = filekind.Unknown
	BlockDevice  = filekind.BlockDevice
	CharDevice   = filekind.CharDevice
	Directory    = filekind.Directory
	NamedPipe    = filekind.NamedPipe
	SymbolicLink = filekind.SymbolicLink
	RegularFile  = filekind.RegularFile
	Socket       = filekind.Socket
)

// Entry is one yielded filesystem entry: its kind, its depth relative to
// the traversal root (which is depth 0), and a path that's materialized
// lazily and cached on first request.
type Entry struct {
	kind  FileKind
	depth int

	// Exactly one addressing form is populated. If parent is non-nil, the
	// path is leaf joined under parent.Path(). Otherwise full already holds
	// the complete path.
	leaf   string
	parent *parentchain.Node
	full   string

	path      string
	pathCached bool
}

func newLazyEntry(kind FileKind, depth int, parent *parentchain.Node, leaf string) *Entry {
	return &Entry{kind: kind, depth: depth, parent: parent, leaf: leaf}
}

func newMaterializedEntry(kind FileKind, depth int, full string) *Entry {
	return &Entry{kind: kind, depth: depth, full: full}
}

// Path returns the entry's full path, computing and caching it on first
// call.
func (e *Entry) Path() string {
	if !e.pathCached {
		if e.parent != nil {
			e.path = e.parent.Path() + "/" + e.leaf
		} else {
			e.path = e.full
		}
		e.pathCached = true
	}
	return e.path
}

// IntoPath returns the entry's full path. In Go, unlike the Rust original
// this core is modeled on, there is no separate owned-vs-borrowed path
// form; IntoPath is kept as an alias of Path for API familiarity to
// callers porting code from that original.
func (e *Entry) IntoPath() string {
	return e.Path()
}

// FileName returns the entry's leaf name.
func (e *Entry) FileName() string {
	if e.parent != nil {
		return e.leaf
	}
	full := e.full
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '/' {
			return full[i+1:]
		}
	}
	return full
}

// FileType returns the entry's kind.
func (e *Entry) FileType() FileKind {
	return e.kind
}

// Depth returns the entry's depth relative to the traversal root.
func (e *Entry) Depth() int {
	return e.depth
}

// Metadata stats the entry's path and returns the result. Symlinks are not
// followed.
func (e *Entry) Metadata() (os.FileInfo, error) {
	return os.Lstat(e.Path())
}

// IsDir reports whether the entry's kind is Directory.
func (e *Entry) IsDir() bool { return e.kind == Directory }

// IsRegular reports whether the entry's kind is RegularFile.
func (e *Entry) IsRegular() bool { return e.kind == RegularFile }

// IsSymlink reports whether the entry's kind is SymbolicLink.
func (e *Entry) IsSymlink() bool { return e.kind == SymbolicLink }

// IsSocket reports whether the entry's kind is Socket.
func (e *Entry) IsSocket() bool { return e.kind == Socket }

// IsNamedPipe reports whether the entry's kind is NamedPipe.
func (e *Entry) IsNamedPipe() bool { return e.kind == NamedPipe }

// IsBlockDevice reports whether the entry's kind is BlockDevice.
func (e *Entry) IsBlockDevice() bool { return e.kind == BlockDevice }

// IsCharDevice reports whether the entry's kind is CharDevice.
func (e *Entry) IsCharDevice() bool { return e.kind == CharDevice }
