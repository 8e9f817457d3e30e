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

// Command walkfd enumerates a directory tree using the walkfd package and
// prints one path per line.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jacobsa/reqtrace"
	"github.com/walkfd/walkfd"
	"golang.org/x/net/context"
)

var fMinDepth = flag.Int("min-depth", 0, "Skip reporting entries shallower than this.")
var fMaxDepth = flag.Int("max-depth", -1, "Don't descend past this depth. -1 means unlimited.")
var fMaxOpen = flag.Int("max-open", 64, "Maximum directory descriptors held open at once.")
var fFollowLinks = flag.Bool("follow-links", false, "Descend into symlinks that point at directories.")
var fSameFS = flag.Bool("same-filesystem", false, "Don't descend into directories on another device.")
var fStats = flag.Bool("stats", false, "Print a syscall summary to stderr when done.")

// run walks root to completion, printing one path per line. Its returned
// exitStatus is 1 if any entry failed along the way, independent of the
// returned error, which reports only a failure to start the walk at all
// or a cancellation.
func run(ctx context.Context, root string) (exitStatus int, err error) {
	ctx, report := reqtrace.StartSpan(ctx, fmt.Sprintf("walkfd %s", root))
	defer func() { report(err) }()

	cfg := walkfd.DefaultConfig()
	cfg.MinDepth = *fMinDepth
	cfg.MaxDepth = *fMaxDepth
	cfg.MaxOpen = *fMaxOpen
	cfg.FollowLinks = *fFollowLinks
	cfg.SameFileSystem = *fSameFS

	w, err := walkfd.New(root, &cfg)
	if err != nil {
		return 0, fmt.Errorf("walkfd.New: %w", err)
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		entry, entryErr := w.Next()
		if entryErr == io.EOF {
			break
		}
		if entryErr != nil {
			fmt.Fprintf(os.Stderr, "walkfd: %v\n", entryErr)
			exitStatus = 1
			continue
		}

		fmt.Println(entry.Path())
	}

	if *fStats {
		s := w.Stats()
		fmt.Fprintf(
			os.Stderr,
			"open=%d openat=%d close=%d getdents64=%d stat=%d elapsed=%s\n",
			s.Opens, s.Openats, s.Closes, s.Getdents, s.StatCalls,
			s.EndTime.Sub(s.StartTime))
	}

	return exitStatus, nil
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: walkfd [flags] <root>")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		cancel()
	}()

	exitStatus, err := run(ctx, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "walkfd: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitStatus)
}
