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

	"github.com/jacobsa/timeutil"
)

// UnlimitedDepth is the MaxDepth value meaning "no limit on descent".
const UnlimitedDepth = -1

// Config is the optional configuration accepted by New. A nil Config
// passed to New is equivalent to DefaultConfig().
type Config struct {
	// MinDepth and MaxDepth are inclusive bounds on reported entries'
	// depths. The walker skips yielding (but still descends through)
	// entries below MinDepth; it skips descending past MaxDepth.
	// MaxDepth == UnlimitedDepth means no limit.
	MinDepth int
	MaxDepth int

	// MaxOpen is the initial descriptor budget: the maximum number of
	// directory descriptors the walker may hold open at once. Must be >= 1.
	MaxOpen int

	// FollowLinks, when true, causes symlinks whose target is a directory
	// to be descended into. The yielded entry's FileType remains
	// SymbolicLink; only descent is affected. Loop detection is out of
	// scope: a pathological symlink cycle under FollowLinks will not
	// terminate.
	FollowLinks bool

	// SameFileSystem, when true, causes the walker to skip descending into
	// directories that report a different device number than the
	// traversal root.
	SameFileSystem bool

	// ContentsFirst requests post-order (contents-before-directory)
	// yielding. Not implemented by this core; New rejects it.
	ContentsFirst bool

	// Sort, if non-nil, would request the entries of each directory be
	// yielded in a caller-defined order rather than kernel emission order.
	// Not implemented by this core; New rejects a non-nil value.
	Sort func(a, b *Entry) int

	// BufferSize overrides the Entry Buffer capacity used for every
	// directory descriptor the walker opens. Zero means
	// direntbuf.DefaultCapacity (16 KiB).
	BufferSize int

	// Clock, if non-nil, overrides the clock used to stamp Stats'
	// StartTime/EndTime. Tests inject timeutil.NewSimulatedClock to assert
	// duration-independent behavior deterministically; production code
	// leaves this nil to get timeutil.RealClock().
	Clock timeutil.Clock
}

// DefaultConfig returns the configuration New uses when given a nil
// *Config: no depth limits, a budget of 64 open descriptors, and no
// refinements enabled.
func DefaultConfig() Config {
	return Config{
		MaxDepth: UnlimitedDepth,
		MaxOpen:  64,
	}
}

var (
	errMaxOpenTooSmall   = errors.New("walkfd: MaxOpen must be >= 1")
	errContentsFirst     = errors.New("walkfd: ContentsFirst is not implemented by this core")
	errSortNotImplemented = errors.New("walkfd: Sort is not implemented by this core")
	errMaxLessThanMin    = errors.New("walkfd: MaxDepth must be >= MinDepth, or UnlimitedDepth")
)

func (c *Config) validate() error {
	if c.MaxOpen < 1 {
		return errMaxOpenTooSmall
	}
	if c.ContentsFirst {
		return errContentsFirst
	}
	if c.Sort != nil {
		return errSortNotImplemented
	}
	if c.MaxDepth != UnlimitedDepth && c.MaxDepth < c.MinDepth {
		return errMaxLessThanMin
	}
	return nil
}

func (c *Config) bufferSize() int {
	if c.BufferSize > 0 {
		return c.BufferSize
	}
	return 0 // direntbuf.New treats <= 0 as DefaultCapacity.
}

func (c *Config) clockOrDefault() timeutil.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return timeutil.RealClock()
}

func (c *Config) withinMaxDepth(depth int) bool {
	return c.MaxDepth == UnlimitedDepth || depth < c.MaxDepth
}
