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
	"sync"
	"time"

	"github.com/jacobsa/timeutil"
	"github.com/walkfd/walkfd/internal/walkstats"
)

// Stats is a read-only snapshot of a Walker's syscall counters and timing.
// It may be obtained from a goroutine other than the one driving Next.
type Stats struct {
	Opens     uint64
	Openats   uint64
	Closes    uint64
	Getdents  uint64
	StatCalls uint64

	StartTime time.Time
	// EndTime is the zero Time until the walk finishes: Next reports
	// io.EOF or a fatal error, or Close is called.
	EndTime time.Time
}

type statsTracker struct {
	counters  *walkstats.Counters
	clock     timeutil.Clock
	startTime time.Time

	mu      sync.Mutex
	endTime time.Time // GUARDED_BY(mu)
}

func newStatsTracker(clock timeutil.Clock) *statsTracker {
	return &statsTracker{
		counters:  walkstats.New(),
		clock:     clock,
		startTime: clock.Now(),
	}
}

func (t *statsTracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.endTime.IsZero() {
		t.endTime = t.clock.Now()
	}
}

func (t *statsTracker) snapshot() Stats {
	s := t.counters.Snapshot()
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Opens:     s.Opens,
		Openats:   s.Openats,
		Closes:    s.Closes,
		Getdents:  s.Getdents,
		StatCalls: s.StatCalls,
		StartTime: t.startTime,
		EndTime:   t.endTime,
	}
}
