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

// Package filekind maps the type tags the kernel attaches to directory
// entries and stat results onto a small closed enumeration.
package filekind

import "golang.org/x/sys/unix"

// Kind is the type of filesystem entry the kernel reported, or Unknown when
// the filesystem doesn't report types inline (requiring a stat call).
type Kind uint8

const (
	Unknown Kind = iota
	BlockDevice
	CharDevice
	Directory
	NamedPipe
	SymbolicLink
	RegularFile
	Socket
)

func (k Kind) String() string {
	switch k {
	case BlockDevice:
		return "block device"
	case CharDevice:
		return "char device"
	case Directory:
		return "directory"
	case NamedPipe:
		return "named pipe"
	case SymbolicLink:
		return "symbolic link"
	case RegularFile:
		return "regular file"
	case Socket:
		return "socket"
	default:
		return "unknown"
	}
}

// FromDT maps a getdents64 d_type byte to a Kind. Any value this core
// doesn't recognize, including DT_UNKNOWN, maps to Unknown.
func FromDT(t byte) Kind {
	switch t {
	case unix.DT_BLK:
		return BlockDevice
	case unix.DT_CHR:
		return CharDevice
	case unix.DT_DIR:
		return Directory
	case unix.DT_FIFO:
		return NamedPipe
	case unix.DT_LNK:
		return SymbolicLink
	case unix.DT_REG:
		return RegularFile
	case unix.DT_SOCK:
		return Socket
	default:
		return Unknown
	}
}

// FromStatMode maps the type bits of a stat(2) st_mode field to a Kind.
func FromStatMode(mode uint32) Kind {
	switch mode & unix.S_IFMT {
	case unix.S_IFBLK:
		return BlockDevice
	case unix.S_IFCHR:
		return CharDevice
	case unix.S_IFDIR:
		return Directory
	case unix.S_IFIFO:
		return NamedPipe
	case unix.S_IFLNK:
		return SymbolicLink
	case unix.S_IFREG:
		return RegularFile
	case unix.S_IFSOCK:
		return Socket
	default:
		return Unknown
	}
}
