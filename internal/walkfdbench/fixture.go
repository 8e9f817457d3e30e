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

// Package walkfdbench builds synthetic directory trees for benchmarking
// the walk engine, playing the role samples/readbenchfs plays for fuse:
// a fixture sized to exceed CPU caches and expose real syscall cost rather
// than measuring an in-memory shortcut.
package walkfdbench

import (
	"fmt"
	"os"
	"path/filepath"
)

// Shape describes a synthetic tree: fanout directories at each of depth
// levels, each holding filesPerDir empty regular files.
type Shape struct {
	Fanout      int
	Depth       int
	FilesPerDir int
}

// Wide is sized to stress the descriptor budget: many sibling directories
// at a single level, each with a handful of files.
var Wide = Shape{Fanout: 2000, Depth: 1, FilesPerDir: 4}

// Deep is sized to stress the parent chain and the forced-close/reopen
// path under a small MaxOpen: a long single-child chain of directories.
var Deep = Shape{Fanout: 1, Depth: 500, FilesPerDir: 1}

// Build materializes shape under a fresh directory beneath dir, returning
// its path.
func Build(dir string, shape Shape) (string, error) {
	root, err := os.MkdirTemp(dir, "walkfdbench")
	if err != nil {
		return "", err
	}

	if err := buildLevel(root, shape, 0); err != nil {
		return "", err
	}

	return root, nil
}

func buildLevel(dir string, shape Shape, depth int) error {
	for i := 0; i < shape.FilesPerDir; i++ {
		p := filepath.Join(dir, fmt.Sprintf("file-%d", i))
		if err := os.WriteFile(p, nil, 0644); err != nil {
			return err
		}
	}

	if depth >= shape.Depth {
		return nil
	}

	for i := 0; i < shape.Fanout; i++ {
		child := filepath.Join(dir, fmt.Sprintf("dir-%d", i))
		if err := os.Mkdir(child, 0755); err != nil {
			return err
		}
		if err := buildLevel(child, shape, depth+1); err != nil {
			return err
		}
	}

	return nil
}
