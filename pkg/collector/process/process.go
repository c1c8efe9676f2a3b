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

package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/NVIDIA/crashcap/pkg/measurement"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// started approximates the process start time when the OS cannot report it.
var started = time.Now()

// Source abstracts the per-process statistics read from the OS.
type Source interface {
	RSS(ctx context.Context) (uint64, error)
	NumFDs(ctx context.Context) (int32, error)
	CreateTime(ctx context.Context) (time.Time, error)
	Name(ctx context.Context) (string, error)
}

// Collector describes the running process: uptime, memory, activity and the
// modules linked into the binary.
type Collector struct {
	// HumanReadable renders memory with unit suffixes.
	HumanReadable bool

	// Source overrides the gopsutil-backed process source.
	Source Source
}

// Collect builds the process group.
func (c *Collector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := c.Source
	if src == nil {
		s, err := newSelfSource(ctx)
		if err != nil {
			slog.Debug("process statistics unavailable", slog.String("error", err.Error()))
		} else {
			src = s
		}
	}

	b := measurement.NewBuilder(measurement.TypeProcess, c.HumanReadable)

	start := started
	if src != nil {
		if t, err := src.CreateTime(ctx); err == nil && !t.IsZero() {
			start = t
		}
	}
	b.Set("uptime", time.Since(start).Seconds())
	b.Set("title", title(ctx, src))

	active := measurement.NewBuilder(measurement.TypeProcess, c.HumanReadable).
		Set("requests", runtime.NumGoroutine())
	if src != nil {
		if n, err := src.NumFDs(ctx); err == nil {
			active.Set("handles", int(n))
		}
	}
	b.SetGroup("active", active, false)

	b.SetGroup("memory", c.memory(ctx, src), false)
	b.Set("pid", os.Getpid())

	if info, ok := debug.ReadBuildInfo(); ok {
		b.Set("features", Features(info))
		b.Set("modules", Modules(info))
	}

	return b.Build(), nil
}

func (c *Collector) memory(ctx context.Context, src Source) *measurement.Builder {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	heapUsed := int64(ms.HeapAlloc)
	heapAllocated := int64(ms.HeapSys - ms.HeapReleased)

	b := measurement.NewBuilder(measurement.TypeProcess, c.HumanReadable)
	var (
		rss   uint64
		rssOK bool
	)
	if src != nil {
		if v, err := src.RSS(ctx); err == nil {
			rss, rssOK = v, true
		} else {
			slog.Debug("failed to read resident set size", slog.String("error", err.Error()))
		}
	}

	b.SetBytes("rss", int64(rss), rssOK)
	b.SetGroup("heap", measurement.NewBuilder(measurement.TypeProcess, c.HumanReadable).
		SetBytes("used", heapUsed, true).
		SetBytes("allocated", heapAllocated, true), false)
	// native is whatever the process holds outside the Go heap
	b.SetBytes("native", int64(rss)-heapAllocated, rssOK)

	return b
}

func title(ctx context.Context, src Source) string {
	if src != nil {
		if name, err := src.Name(ctx); err == nil && name != "" {
			return name
		}
	}
	if len(os.Args) > 0 {
		return filepath.Base(os.Args[0])
	}
	return ""
}

// Features returns the build settings the binary was compiled with
// (compiler, CGO_ENABLED, GOOS, vcs.revision, ...).
func Features(info *debug.BuildInfo) map[string]string {
	features := make(map[string]string, len(info.Settings)+1)
	for _, s := range info.Settings {
		features[s.Key] = s.Value
	}
	if info.GoVersion != "" {
		features["go"] = info.GoVersion
	}
	return features
}

// Modules lists the main module and every dependency as path@version,
// following replace directives.
func Modules(info *debug.BuildInfo) []string {
	mods := make([]string, 0, len(info.Deps)+1)
	if info.Main.Path != "" {
		mods = append(mods, moduleString(&info.Main))
	}
	for _, dep := range info.Deps {
		mods = append(mods, moduleString(dep))
	}
	return mods
}

func moduleString(m *debug.Module) string {
	if m.Replace != nil {
		return fmt.Sprintf("%s@%s => %s@%s", m.Path, m.Version, m.Replace.Path, m.Replace.Version)
	}
	return fmt.Sprintf("%s@%s", m.Path, m.Version)
}

type selfSource struct {
	p *gopsproc.Process
}

func newSelfSource(ctx context.Context) (*selfSource, error) {
	p, err := gopsproc.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &selfSource{p: p}, nil
}

func (s *selfSource) RSS(ctx context.Context) (uint64, error) {
	mi, err := s.p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return mi.RSS, nil
}

func (s *selfSource) NumFDs(ctx context.Context) (int32, error) {
	return s.p.NumFDsWithContext(ctx)
}

func (s *selfSource) CreateTime(ctx context.Context) (time.Time, error) {
	ms, err := s.p.CreateTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func (s *selfSource) Name(ctx context.Context) (string, error) {
	return s.p.NameWithContext(ctx)
}
