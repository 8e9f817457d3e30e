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

// Package parentchain gives every yielded entry O(1) shared access to its
// immediate parent directory, and O(depth) on-demand path reconstruction.
//
// The original design this core is based on used explicit reference
// counting (Rust's Rc) so a node could be freed the instant its last
// referrer dropped it. Go's garbage collector already provides exactly
// that lifetime: a Node is reachable for exactly as long as some Entry or
// work item still points to it, and is collected once nothing does. A
// hand-rolled counter would duplicate work the runtime already does for
// free, so Node is a plain immutable pointer chain.
package parentchain

import "strings"

// Node is one link in the chain: a directory's depth and name plus a
// pointer to its enclosing directory's Node. A Node with no parent holds
// the path its directory was opened by: the traversal root as the caller
// supplied it or, when the entry was reopened by absolute path after a
// forced close, the entire path up to that point.
type Node struct {
	depth  int
	name   string
	parent *Node
}

// NewRoot creates a Node with no parent. name may be a single path
// component or a multi-component path (the traversal root as supplied, or
// a subtree reopened by absolute path after a forced close); both are
// valid roots for the chain and Path() handles each correctly.
func NewRoot(name string, depth int) *Node {
	return &Node{name: name, depth: depth}
}

// Child creates a new Node one level deeper, sharing this Node as parent.
func (n *Node) Child(name string) *Node {
	return &Node{name: name, depth: n.depth + 1, parent: n}
}

// Depth returns the depth recorded when this Node was created.
func (n *Node) Depth() int {
	return n.depth
}

// Name returns the leaf name (or, for a root Node, the full path) recorded
// when this Node was created.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the enclosing Node, or nil if this is a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path reconstructs the full path by walking from this Node up to the
// root, joining names with "/" in traversal order.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}

	names := make([]string, 0, n.depth+1)
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return strings.Join(names, "/")
}
