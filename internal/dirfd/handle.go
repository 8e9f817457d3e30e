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

// Package dirfd provides scoped acquisition of Linux directory file
// descriptors, supporting relative open (openat) and guaranteed release.
package dirfd

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

const openFlags = unix.O_RDONLY | unix.O_DIRECTORY | unix.O_CLOEXEC

// Handle is a scoped wrapper over an open directory descriptor.
type Handle struct {
	fd int
}

func checkNUL(what, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("dirfd: %s contains an interior NUL byte", what)
	}
	return nil
}

// Open opens path as a directory, read-only.
func Open(path string) (*Handle, error) {
	if err := checkNUL("path", path); err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, openFlags, 0)
	if err != nil {
		return nil, err
	}

	return &Handle{fd: fd}, nil
}

// OpenAt opens name as a directory relative to parent, with the same flags
// as Open.
func OpenAt(parent *Handle, name string) (*Handle, error) {
	if err := checkNUL("name", name); err != nil {
		return nil, err
	}

	fd, err := unix.Openat(parent.fd, name, openFlags, 0)
	if err != nil {
		return nil, err
	}

	return &Handle{fd: fd}, nil
}

// Fd returns the underlying raw descriptor, valid until Close is called.
func (h *Handle) Fd() int {
	return h.fd
}

// Close releases the descriptor. The Handle must not be used afterward.
func (h *Handle) Close() error {
	fd := h.fd
	h.fd = -1
	return unix.Close(fd)
}
