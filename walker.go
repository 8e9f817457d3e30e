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

// Package walkfd enumerates every filesystem entry reachable from a root
// directory on Linux, using raw getdents64 directory enumeration instead
// of os.ReadDir, while bounding the number of directory descriptors held
// open at once.
//
// A Walker is single-threaded: a single caller must drive Next, one step
// at a time. The only exception is Stats, which may be called from a
// different goroutine while a walk is in progress.
package walkfd

import (
	"fmt"
	"io"

	"github.com/walkfd/walkfd/internal/direntbuf"
	"github.com/walkfd/walkfd/internal/filekind"
	"github.com/walkfd/walkfd/internal/workitem"
	"golang.org/x/sys/unix"
)

// Walker iterates over every entry reachable from a root, yielding one
// entry per call to Next.
type Walker struct {
	cfg    Config
	budget int
	used   int

	stack []workitem.Item

	stats *statsTracker

	rootDev    uint64
	rootDevSet bool

	done  bool
	fatal error
}

// New constructs a Walker rooted at root. A nil cfg is equivalent to
// DefaultConfig().
func New(root string, cfg *Config) (*Walker, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &Walker{
		cfg:    c,
		budget: c.MaxOpen,
		stack:  []workitem.Item{workitem.NewRootClosedItem(root)},
		stats:  newStatsTracker(c.clockOrDefault()),
	}, nil
}

// Stats returns a snapshot of the walk's syscall counters and timing.
func (w *Walker) Stats() Stats {
	return w.stats.snapshot()
}

// Close releases every directory descriptor the walker still holds open
// and marks the walk finished. It's a no-op if the walk already ran to
// completion or was already closed. Callers that stop calling Next before
// it reports io.EOF must call Close to avoid leaking descriptors.
func (w *Walker) Close() error {
	if w.done {
		return nil
	}
	w.closeRemaining()
	w.abort(nil)
	return nil
}

// closeRemaining force-closes the descriptor of every Open item left on
// the stack, in top-to-bottom order. It's called on early termination
// (Close) and on a fatal abort, since in both cases no further Next call
// will drain these items down to their natural Close.
func (w *Walker) closeRemaining() {
	for i := len(w.stack) - 1; i >= 0; i-- {
		if oi, ok := w.stack[i].(*workitem.OpenItem); ok {
			oi.Close(w.stats.counters)
		}
	}
	w.stack = nil
}

// Next advances the walk and returns the next entry. When the root's
// subtree is fully enumerated, Next returns (nil, io.EOF) and will keep
// doing so on every subsequent call.
//
// A non-nil, non-io.EOF error means a single entry or subtree failed
// (resource or kind-resolution failure per spec); the caller may call
// Next again to continue past it. ErrMalformedRecord is fatal: once
// returned, every subsequent call to Next returns io.EOF.
func (w *Walker) Next() (*Entry, error) {
	if w.done {
		return nil, io.EOF
	}

	for {
		if len(w.stack) == 0 {
			w.abort(nil)
			return nil, io.EOF
		}

		top := w.stack[len(w.stack)-1]

		var cand workitem.Candidate
		var ok bool

		switch it := top.(type) {
		case *workitem.OpenItem:
			var err error
			cand, ok, err = it.ReadyEntry()
			if err != nil {
				w.closeRemaining()
				w.abort(err)
				return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
			}
			if !ok {
				res, rerr := it.Refill(w.stats.counters)
				if rerr != nil {
					path := it.Node().Path()
					w.popOpen()
					it.Close(w.stats.counters)
					return nil, &PathError{Op: "getdents64", Path: path, Err: rerr}
				}
				switch res {
				case direntbuf.Blocked:
					w.closeRemaining()
					w.abort(errUnreachableBlocked)
					return nil, errUnreachableBlocked
				case direntbuf.Done:
					path := it.Node().Path()
					w.popOpen()
					if cerr := it.Close(w.stats.counters); cerr != nil {
						return nil, &PathError{Op: "close", Path: path, Err: cerr}
					}
				}
				continue
			}

		case *workitem.ClosedItem:
			cand, ok = it.ReadyEntry()
			if !ok {
				w.stack = w.stack[:len(w.stack)-1]
				continue
			}
		}

		if cand.Kind == filekind.Unknown {
			if err := w.resolveKind(&cand); err != nil {
				return nil, &PathError{Op: "stat", Path: cand.Path(), Err: err}
			}
		}

		descend, err := w.wantsDescend(&cand)
		if err != nil {
			return nil, &PathError{Op: "stat", Path: cand.Path(), Err: err}
		}

		var descendErr error
		if descend {
			descendErr = w.descendInto(cand)
		}

		entry := w.buildEntry(cand)

		if descendErr != nil {
			return entry, &PathError{Op: "open", Path: cand.Path(), Err: descendErr}
		}

		if cand.Depth < w.cfg.MinDepth {
			continue
		}
		return entry, nil
	}
}

func (w *Walker) buildEntry(cand workitem.Candidate) *Entry {
	if cand.Source != nil {
		return newLazyEntry(cand.Kind, cand.Depth, cand.Node, cand.Leaf)
	}
	return newMaterializedEntry(cand.Kind, cand.Depth, cand.FullPath)
}

func (w *Walker) popOpen() {
	w.stack = w.stack[:len(w.stack)-1]
	w.used--
}

// abort marks the walk permanently finished. err is non-nil only for a
// fatal (consistency-class) failure; a nil err means graceful exhaustion.
func (w *Walker) abort(err error) {
	w.done = true
	w.fatal = err
	w.stats.finish()
}

func (w *Walker) resolveKind(cand *workitem.Candidate) error {
	var st unix.Stat_t
	var err error

	w.stats.counters.AddStat()
	if cand.Source != nil {
		err = unix.Fstatat(cand.Source.Fd(), cand.Leaf, &st, unix.AT_SYMLINK_NOFOLLOW)
	} else {
		err = unix.Lstat(cand.FullPath, &st)
	}
	if err != nil {
		return err
	}

	cand.Kind = filekind.FromStatMode(st.Mode)
	if !w.rootDevSet {
		w.rootDev = uint64(st.Dev)
		w.rootDevSet = true
	}
	return nil
}

// wantsDescend decides whether the walker should attempt to descend into
// cand, applying MaxDepth, FollowLinks, and SameFileSystem. The returned
// error is always nil: when a stat needed to decide fails, descent is
// refused and the entry is still yielded without an error.
func (w *Walker) wantsDescend(cand *workitem.Candidate) (bool, error) {
	if !w.cfg.withinMaxDepth(cand.Depth) {
		return false, nil
	}

	switch cand.Kind {
	case filekind.Directory:
		// Fall through to the same-filesystem check below.
	case filekind.SymbolicLink:
		if !w.cfg.FollowLinks {
			return false, nil
		}
		isDir, err := w.statFollowingLink(cand)
		if err != nil || !isDir {
			return false, nil
		}
	default:
		return false, nil
	}

	if w.cfg.SameFileSystem {
		same, err := w.sameFilesystem(cand)
		if err != nil || !same {
			return false, nil
		}
	}

	return true, nil
}

// statFollowingLink stats a symlink's target (not the link itself) to
// decide whether FollowLinks should cause the walker to descend into it.
// A failure here is not surfaced to the caller: the entry is still
// yielded as a symlink, just without descent.
func (w *Walker) statFollowingLink(cand *workitem.Candidate) (isDir bool, err error) {
	var st unix.Stat_t

	w.stats.counters.AddStat()
	if cand.Source != nil {
		err = unix.Fstatat(cand.Source.Fd(), cand.Leaf, &st, 0)
	} else {
		err = unix.Stat(cand.FullPath, &st)
	}
	if err != nil {
		return false, err
	}

	return filekind.FromStatMode(st.Mode) == filekind.Directory, nil
}

func (w *Walker) sameFilesystem(cand *workitem.Candidate) (bool, error) {
	if !w.rootDevSet {
		// The root's own kind resolution always runs before any candidate
		// that could reach here, so this stats the candidate itself as a
		// fallback rather than leaving the comparison undefined.
		if err := w.resolveKind(cand); err != nil {
			return false, err
		}
		return true, nil
	}

	var st unix.Stat_t
	var err error

	w.stats.counters.AddStat()
	if cand.Source != nil {
		err = unix.Fstatat(cand.Source.Fd(), cand.Leaf, &st, unix.AT_SYMLINK_NOFOLLOW)
	} else {
		err = unix.Lstat(cand.FullPath, &st)
	}
	if err != nil {
		return false, err
	}

	return uint64(st.Dev) == w.rootDev, nil
}

// descendInto opens cand (known to be a directory, or a followed symlink
// to one) and pushes the resulting Open item onto the stack, evicting an
// existing Open item first if the budget is exhausted.
func (w *Walker) descendInto(cand workitem.Candidate) error {
	useOpenat := cand.Source != nil

	if w.used >= w.budget {
		if err := w.freeBudget(cand.Source); err != nil {
			return err
		}
		useOpenat = false
	}

	var child *workitem.OpenItem
	var err error

	if useOpenat {
		child, err = cand.Source.OpenatChild(cand.Leaf, w.cfg.bufferSize(), w.stats.counters)
	} else {
		child, err = workitem.OpenRoot(cand.Path(), cand.Depth+1, w.cfg.bufferSize(), w.stats.counters)
	}
	if err != nil {
		return err
	}

	w.stack = append(w.stack, child)
	w.used++
	return nil
}

// freeBudget forces one Open item on the stack to release its descriptor.
// It prefers preferred (the immediate ancestor of the directory about to
// be opened) when preferred is itself Open; otherwise it scans the stack
// from the root for the first Open item. Preferring the item nearest the
// root when the immediate ancestor isn't available follows this core's
// reading of spec.md §5: items nearer the root are less likely to be
// revisited soon.
func (w *Walker) freeBudget(preferred *workitem.OpenItem) error {
	if preferred != nil {
		return w.forceCloseAt(w.indexOf(preferred))
	}

	for i := range w.stack {
		if _, ok := w.stack[i].(*workitem.OpenItem); ok {
			return w.forceCloseAt(i)
		}
	}

	return errNoOpenItemToEvict
}

func (w *Walker) indexOf(oi *workitem.OpenItem) int {
	for i, it := range w.stack {
		if p, ok := it.(*workitem.OpenItem); ok && p == oi {
			return i
		}
	}
	return -1
}

func (w *Walker) forceCloseAt(idx int) error {
	if idx < 0 {
		return errNoOpenItemToEvict
	}

	oi, ok := w.stack[idx].(*workitem.OpenItem)
	if !ok {
		return errNoOpenItemToEvict
	}

	closed, err := oi.ForceClose(oi.Node().Path(), w.stats.counters)
	if err != nil {
		return err
	}

	getLogger().Printf("forced close of %s to stay within budget %d", oi.Node().Path(), w.budget)

	w.stack[idx] = closed
	w.used--
	return nil
}
