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
	"errors"
	"fmt"
)

// ErrMalformedRecord is returned by Next when the kernel emitted a
// directory record this core could not parse. It is unreachable in
// well-behaved kernel operation; when it occurs the walk is aborted.
var ErrMalformedRecord = errors.New("walkfd: malformed getdents64 record")

// errUnreachableBlocked guards the Blocked <-> drain protocol: a refill
// issued immediately after a full drain must never report Blocked.
var errUnreachableBlocked = errors.New("walkfd: getdents64 reported no room immediately after a drain")

// errNoOpenItemToEvict guards the budget invariant: freeBudget is only
// called when used >= budget, which requires at least one Open item on
// the stack to force-close.
var errNoOpenItemToEvict = errors.New("walkfd: budget exhausted but no open item available to evict")

// PathError reports a resource failure (open, openat, close, or stat)
// encountered while processing one entry. The traversal continues after
// returning a PathError; only the affected entry or subtree is skipped.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("walkfd: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
