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

package walkfd_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/jacobsa/timeutil"
	"github.com/kylelemons/godebug/pretty"
	"github.com/walkfd/walkfd"
	"github.com/walkfd/walkfd/walkfdtest"
)

func TestWalk_SimpleTree(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.Dir(t, "a")
	tr.Dir(t, "a/b")
	tr.File(t, "a/b/leaf.txt", "hi")
	tr.File(t, "top.txt", "hi")

	w, err := walkfd.New(tr.Root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	paths, errs := walkfdtest.Drain(t, w)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := walkfdtest.Sorted([]string{
		tr.Root,
		tr.Path("a"),
		tr.Path("a/b"),
		tr.Path("a/b/leaf.txt"),
		tr.Path("top.txt"),
	})
	got := walkfdtest.Sorted(paths)

	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_NonexistentRoot(t *testing.T) {
	tr := walkfdtest.NewTree(t)

	w, err := walkfd.New(tr.Path("missing"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	_, err = w.Next()
	if err == nil {
		t.Fatalf("expected an error for a nonexistent root, got nil")
	}

	_, err = w.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF after a failed root, got %v", err)
	}
}

func TestWalk_RootIsRegularFile(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.File(t, "leaf.txt", "hi")

	w, err := walkfd.New(tr.Path("leaf.txt"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	entry, err := w.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !entry.IsRegular() {
		t.Errorf("expected a regular file entry, got kind %v", entry.FileType())
	}
	if entry.Path() != tr.Path("leaf.txt") {
		t.Errorf("Path() = %q, want %q", entry.Path(), tr.Path("leaf.txt"))
	}

	if _, err := w.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after the single entry, got %v", err)
	}
}

func TestWalk_EmptyDirectory(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.Dir(t, "empty")

	w, err := walkfd.New(tr.Path("empty"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	entry, err := w.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !entry.IsDir() {
		t.Errorf("expected the root itself to be yielded as a directory")
	}

	if _, err := w.Next(); err != io.EOF {
		t.Errorf("expected io.EOF after an empty directory, got %v", err)
	}
}

func TestWalk_MaxDepth(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.File(t, "a/b/c/leaf.txt", "hi")

	cfg := walkfd.DefaultConfig()
	cfg.MaxDepth = 2

	w, err := walkfd.New(tr.Root, &cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	paths, errs := walkfdtest.Drain(t, w)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := walkfdtest.Sorted([]string{
		tr.Root,
		tr.Path("a"),
		tr.Path("a/b"),
	})
	got := walkfdtest.Sorted(paths)

	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_MinDepth(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.File(t, "a/leaf.txt", "hi")

	cfg := walkfd.DefaultConfig()
	cfg.MinDepth = 1

	w, err := walkfd.New(tr.Root, &cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	paths, errs := walkfdtest.Drain(t, w)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := walkfdtest.Sorted([]string{
		tr.Path("a"),
		tr.Path("a/leaf.txt"),
	})
	got := walkfdtest.Sorted(paths)

	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_TightBudgetForcesEvictionButVisitsEverything(t *testing.T) {
	tr := walkfdtest.NewTree(t)

	const chainDepth = 20
	rel := ""
	for i := 0; i < chainDepth; i++ {
		rel = filepath.Join(rel, "d")
	}
	tr.File(t, filepath.Join(rel, "leaf.txt"), "hi")

	cfg := walkfd.DefaultConfig()
	cfg.MaxOpen = 2

	w, err := walkfd.New(tr.Root, &cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	paths, errs := walkfdtest.Drain(t, w)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []string{tr.Root}
	rel = ""
	for i := 0; i < chainDepth; i++ {
		rel = filepath.Join(rel, "d")
		want = append(want, tr.Path(rel))
	}
	want = append(want, tr.Path(filepath.Join(rel, "leaf.txt")))

	if diff := pretty.Compare(walkfdtest.Sorted(want), walkfdtest.Sorted(paths)); diff != "" {
		t.Errorf("paths mismatch under a tight budget (-want +got):\n%s", diff)
	}

	// A single-chain tree chainDepth levels deep can't be fully descended
	// with only 2 open descriptors without forcing at least one ancestor
	// closed and reopened by absolute path; every such reopen shows up as
	// an extra Opens beyond the one that opened the true root.
	stats := w.Stats()
	if stats.Opens <= 1 {
		t.Errorf("expected forced reopens with chain depth %d and MaxOpen=%d, got opens=%d",
			chainDepth, cfg.MaxOpen, stats.Opens)
	}
}

func TestWalk_FollowLinksDescendsIntoSymlinkedDirectory(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.Dir(t, "real")
	tr.File(t, "real/leaf.txt", "hi")
	tr.Symlink(t, "link", tr.Path("real"))

	cfg := walkfd.DefaultConfig()
	cfg.FollowLinks = true

	w, err := walkfd.New(tr.Root, &cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	paths, errs := walkfdtest.Drain(t, w)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if !contains(paths, tr.Path("link/leaf.txt")) {
		t.Errorf("expected FollowLinks to descend through the symlink; got %v", paths)
	}
}

func TestWalk_WithoutFollowLinksSkipsSymlinkedDirectory(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.Dir(t, "real")
	tr.File(t, "real/leaf.txt", "hi")
	tr.Symlink(t, "link", tr.Path("real"))

	w, err := walkfd.New(tr.Root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	paths, errs := walkfdtest.Drain(t, w)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if contains(paths, tr.Path("link/leaf.txt")) {
		t.Errorf("expected the symlink not to be descended into by default")
	}
	if !contains(paths, tr.Path("link")) {
		t.Errorf("expected the symlink itself to still be yielded")
	}
}

func TestWalk_StatsAdvanceAndStopAtEOF(t *testing.T) {
	tr := walkfdtest.NewTree(t)
	tr.File(t, "a/leaf.txt", "hi")

	var clock timeutil.SimulatedClock
	clock.SetTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := walkfd.DefaultConfig()
	cfg.Clock = &clock

	w, err := walkfd.New(tr.Root, &cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	for {
		if _, err := w.Next(); err == io.EOF {
			break
		}
	}

	s1 := w.Stats()
	if s1.EndTime.IsZero() {
		t.Fatalf("expected EndTime to be set after io.EOF")
	}

	clock.AdvanceTime(time.Second)
	s2 := w.Stats()
	if !s2.EndTime.Equal(s1.EndTime) {
		t.Errorf("expected EndTime to stay fixed once the walk finishes")
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
