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

// Package workitem holds the per-directory traversal state the walk engine
// keeps on its stack: an Open item (a live descriptor and its read buffer)
// or a Closed item (a directory whose descriptor was released, with its
// remaining children buffered as backlog).
//
// The two variants are modeled as an interface with two implementations
// rather than a single struct with a mode flag. Go has no sum types; a
// small marker-method interface is the idiomatic stand-in, and it rules
// out at compile time any code that tries to call an Open-only or
// Closed-only method on the wrong variant.
package workitem

import (
	"strings"

	"github.com/walkfd/walkfd/internal/dirfd"
	"github.com/walkfd/walkfd/internal/direntbuf"
	"github.com/walkfd/walkfd/internal/filekind"
	"github.com/walkfd/walkfd/internal/parentchain"
	"github.com/walkfd/walkfd/internal/walkstats"
)

// Item is satisfied by *OpenItem and *ClosedItem, the two stack frame
// variants the walk engine manages.
type Item interface {
	isWorkItem()
	Depth() int
}

// Candidate is a prospective entry drained from a work item, not yet
// resolved (its Kind may be filekind.Unknown) and not yet yielded.
type Candidate struct {
	Depth int
	Kind  filekind.Kind

	// Populated when Source is non-nil: the entry was drained from an Open
	// item, so Leaf is a name relative to Source's descriptor and Node is
	// that directory's parent-chain node.
	Leaf   string
	Node   *parentchain.Node
	Source *OpenItem

	// Populated when Source is nil: the entry was drained from a Closed
	// item's backlog, so FullPath already holds the complete path.
	FullPath string
}

// Path returns the candidate's full path, materializing it via the parent
// chain if it was sourced from an Open item.
func (c Candidate) Path() string {
	if c.Source != nil {
		return c.Node.Path() + "/" + c.Leaf
	}
	return c.FullPath
}

////////////////////////////////////////////////////////////////////////
// OpenItem
////////////////////////////////////////////////////////////////////////

// OpenItem holds a live directory descriptor and its read buffer.
type OpenItem struct {
	handle *dirfd.Handle
	buf    *direntbuf.Buffer
	node   *parentchain.Node
	depth  int
}

func (*OpenItem) isWorkItem() {}

// Depth returns the depth of the directory this item reads.
func (o *OpenItem) Depth() int { return o.depth }

// Node returns the parent-chain node identifying this item's directory.
func (o *OpenItem) Node() *parentchain.Node { return o.node }

// Fd returns the raw descriptor, for relative stat/open calls.
func (o *OpenItem) Fd() int { return o.handle.Fd() }

// OpenRoot opens path (absolute, or relative to the process's working
// directory) as a new Open item at the given depth. It's used both for the
// true traversal root and for any subtree reopened by absolute path after
// a forced close.
func OpenRoot(path string, depth, bufCap int, c *walkstats.Counters) (*OpenItem, error) {
	h, err := dirfd.Open(path)
	if err != nil {
		return nil, err
	}
	c.AddOpen()

	return &OpenItem{
		handle: h,
		buf:    direntbuf.New(bufCap),
		node:   parentchain.NewRoot(path, depth),
		depth:  depth,
	}, nil
}

// OpenatChild opens name, relative to this item's descriptor, as a new
// Open item one level deeper.
func (o *OpenItem) OpenatChild(name string, bufCap int, c *walkstats.Counters) (*OpenItem, error) {
	h, err := dirfd.OpenAt(o.handle, name)
	if err != nil {
		return nil, err
	}
	c.AddOpenat()

	return &OpenItem{
		handle: h,
		buf:    direntbuf.New(bufCap),
		node:   o.node.Child(name),
		depth:  o.depth + 1,
	}, nil
}

// ReadyEntry drains one record from the entry buffer, skipping "." and
// "..". It returns ok == false (with a nil error) when the buffer has
// nothing left to drain; the caller should refill and retry.
func (o *OpenItem) ReadyEntry() (Candidate, bool, error) {
	for {
		rec, ok, err := o.buf.Next()
		if err != nil {
			return Candidate{}, false, err
		}
		if !ok {
			return Candidate{}, false, nil
		}

		name := string(rec.Name)
		if name == "." || name == ".." {
			continue
		}

		return Candidate{
			Depth:  o.depth,
			Kind:   filekind.FromDT(rec.Type),
			Leaf:   name,
			Node:   o.node,
			Source: o,
		}, true, nil
	}
}

// Refill delegates to the entry buffer's refill, counting the getdents64
// call.
func (o *OpenItem) Refill(c *walkstats.Counters) (direntbuf.RefillResult, error) {
	c.AddGetdents()
	return o.buf.Refill(o.handle.Fd())
}

// Close releases the descriptor, counting the close call.
func (o *OpenItem) Close(c *walkstats.Counters) error {
	c.AddClose()
	return o.handle.Close()
}

// ForceClose drains every remaining record into backlog form, releasing
// the descriptor. The resulting ClosedItem's backlog paths are built by
// joining dirPath (this item's own materialized path) with each leaf name.
func (o *OpenItem) ForceClose(dirPath string, c *walkstats.Counters) (*ClosedItem, error) {
	var backlog []Backlog

	for {
		drained := false
		for {
			rec, ok, err := o.buf.Next()
			if err != nil {
				o.handle.Close()
				return nil, err
			}
			if !ok {
				break
			}
			drained = true

			name := string(rec.Name)
			if name == "." || name == ".." {
				continue
			}

			backlog = append(backlog, Backlog{
				Path: dirPath + "/" + name,
				Kind: filekind.FromDT(rec.Type),
			})
		}
		_ = drained

		res, err := o.Refill(c)
		if err != nil {
			o.handle.Close()
			return nil, err
		}
		switch res {
		case direntbuf.Done:
			if err := o.Close(c); err != nil {
				return nil, err
			}
			return &ClosedItem{depth: o.depth, items: backlog}, nil
		case direntbuf.Blocked:
			panic("workitem: Blocked immediately after a full drain, unreachable")
		}
		// direntbuf.More: loop to drain the newly appended bytes.
	}
}

////////////////////////////////////////////////////////////////////////
// ClosedItem
////////////////////////////////////////////////////////////////////////

// Backlog is one pre-read child of a Closed item: a fully-materialized
// path and, when known, the kind the kernel reported for it.
type Backlog struct {
	Path string
	Kind filekind.Kind
}

// ClosedItem holds a directory whose descriptor has been released, with
// its remaining children buffered as backlog.
type ClosedItem struct {
	depth int
	items []Backlog
}

func (*ClosedItem) isWorkItem() {}

// Depth returns the depth of the directory this item represents.
func (c *ClosedItem) Depth() int { return c.depth }

// NewRootClosedItem builds the single Closed item the walk engine starts
// with: depth 0, one backlog entry naming the user-supplied root with
// unknown kind (forcing a stat on first consumption).
func NewRootClosedItem(root string) *ClosedItem {
	root = strings.TrimSuffix(root, "/")
	if root == "" {
		root = "/"
	}
	return &ClosedItem{items: []Backlog{{Path: root, Kind: filekind.Unknown}}}
}

// ReadyEntry pops one backlog entry (LIFO order), wrapping it as a
// candidate with its full path already materialized.
func (c *ClosedItem) ReadyEntry() (Candidate, bool) {
	n := len(c.items)
	if n == 0 {
		return Candidate{}, false
	}

	b := c.items[n-1]
	c.items = c.items[:n-1]

	return Candidate{Depth: c.depth, Kind: b.Kind, FullPath: b.Path}, true
}

// OpenChild opens path (the candidate's absolute path; there is no
// descriptor to reuse) as a new Open item one level deeper than this
// Closed item.
func (c *ClosedItem) OpenChild(path string, bufCap int, counters *walkstats.Counters) (*OpenItem, error) {
	return OpenRoot(path, c.depth+1, bufCap, counters)
}
