// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package snapshotter

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/crashcap/pkg/collector"
	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/measurement"
	"github.com/NVIDIA/crashcap/pkg/version"

	"golang.org/x/sync/errgroup"
)

// Snapshotter assembles crash snapshots from the current process and host.
type Snapshotter struct {
	// Version is the library version reported in the runtime group.
	// Defaults to version.Library.
	Version string

	// Factory creates the collectors. If nil, the default factory is used.
	Factory collector.Factory

	// CollectorTimeout bounds each collector. Defaults to
	// defaults.CollectorTimeout.
	CollectorTimeout time.Duration

	// Now returns the capture time. Defaults to time.Now.
	Now func() time.Time
}

// Build collects every snapshot group. The environment, repository, system
// and process collectors run in parallel; a collector that fails or times out
// leaves its group empty and the build carries on. Build only fails when ctx
// is already done.
func (s *Snapshotter) Build(ctx context.Context, in Input) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		snapshotBuildTotal.WithLabelValues("canceled").Inc()
		return nil, err
	}

	factory := s.Factory
	if factory == nil {
		factory = collector.NewDefaultFactory()
	}
	timeout := s.CollectorTimeout
	if timeout <= 0 {
		timeout = defaults.CollectorTimeout
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	slog.Debug("starting crash snapshot")

	start := time.Now()
	defer func() {
		snapshotBuildDuration.Observe(time.Since(start).Seconds())
	}()

	snap := NewSnapshot()
	// the exception is stamped before collectors run so the timestamp
	// reflects the fault rather than the end of collection
	snap.Set(exceptionGroup(now(), in))
	snap.Set(s.runtimeGroup())

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	collectors := []struct {
		name string
		c    collector.Collector
	}{
		{measurement.TypeEnvironment.String(), factory.CreateEnvironmentCollector()},
		{measurement.TypeRepository.String(), factory.CreateRepositoryCollector()},
		{measurement.TypeSystem.String(), factory.CreateSystemCollector()},
		{measurement.TypeProcess.String(), factory.CreateProcessCollector()},
	}

	for _, col := range collectors {
		g.Go(func() error {
			collectorStart := time.Now()
			defer func() {
				snapshotCollectorDuration.WithLabelValues(col.name).Observe(time.Since(collectorStart).Seconds())
			}()

			cctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			m, err := col.c.Collect(cctx)
			if err != nil {
				snapshotCollectorErrors.WithLabelValues(col.name).Inc()
				slog.Warn("collector failed, leaving group empty",
					slog.String("collector", col.name),
					slog.String("error", err.Error()))
				return nil
			}

			mu.Lock()
			snap.Set(m)
			mu.Unlock()
			return nil
		})
	}

	// collectors never return errors, failures only empty their group
	_ = g.Wait()

	snapshotBuildTotal.WithLabelValues("success").Inc()
	slog.Debug("crash snapshot complete")

	return snap, nil
}

func (s *Snapshotter) runtimeGroup() *measurement.Measurement {
	v := s.Version
	if v == "" {
		v = version.Library
	}

	return measurement.NewBuilder(measurement.TypeRuntime, false).
		Set("version", version.MajorOf(v)).
		Set("versions", map[string]any{
			"crashcap":   v,
			"go":         runtime.Version(),
			"compiler":   runtime.Compiler,
			"goos":       runtime.GOOS,
			"goarch":     runtime.GOARCH,
			"gomaxprocs": runtime.GOMAXPROCS(0),
			"numcpu":     runtime.NumCPU(),
		}).
		Build()
}

func exceptionGroup(t time.Time, in Input) *measurement.Measurement {
	b := measurement.NewBuilder(measurement.TypeException, false).
		Set("occurred", t.Format(time.RFC1123Z)).
		Set("ms", t.UnixMilli()).
		Set("message", in.Message).
		Set("stacktrace", StackLines(in.Stack))

	if len(in.Frames) > 0 {
		b.Set("frames", FailedFrames(in.Frames))
	}
	return b.Build()
}

// StackLines returns the trimmed, non-empty lines of stack. Entries may hold
// several newline-separated lines.
func StackLines(stack []string) []string {
	lines := make([]string, 0, len(stack))
	for _, entry := range stack {
		for _, line := range strings.Split(entry, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// FailedFrames returns the frames flagged as failed, in stack order.
func FailedFrames(frames []Frame) []Frame {
	failed := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if f.Failed {
			failed = append(failed, f)
		}
	}
	return failed
}
