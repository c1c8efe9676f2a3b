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

package system

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/NVIDIA/crashcap/pkg/collector/file"
	"github.com/NVIDIA/crashcap/pkg/measurement"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

var (
	filePathReleasePrimary  = "/etc/os-release"
	filePathReleaseFallback = "/usr/lib/os-release"
)

// Source abstracts the host statistics the collector reads so tests can
// supply fixed values.
type Source interface {
	Memory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Load(ctx context.Context) (*load.AvgStat, error)
	CPUs(ctx context.Context) ([]cpu.InfoStat, error)
	Cores(ctx context.Context) (int, error)
}

// Collector describes the host: platform, memory, load and CPUs.
type Collector struct {
	// HumanReadable renders memory with unit suffixes.
	HumanReadable bool

	// Source overrides the gopsutil-backed host source.
	Source Source
}

// Collect builds the system group. Each statistic is read independently and
// omitted when the platform does not provide it.
func (c *Collector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := c.Source
	if src == nil {
		src = hostSource{}
	}

	b := measurement.NewBuilder(measurement.TypeSystem, c.HumanReadable)
	b.Set("platform", runtime.GOOS)
	b.Set("arch", runtime.GOARCH)

	if host, err := os.Hostname(); err == nil {
		b.SetString("hostname", host)
	}

	vm, err := src.Memory(ctx)
	if err != nil {
		slog.Debug("failed to read memory statistics", slog.String("error", err.Error()))
	} else {
		b.SetBytes("freemem", int64(vm.Available), true)
		b.SetBytes("totalmem", int64(vm.Total), true)
	}

	b.SetGroup("cpu", c.cpu(ctx, src), false)
	b.SetGroup("release", c.release(), false)

	return b.Build(), nil
}

func (c *Collector) cpu(ctx context.Context, src Source) *measurement.Builder {
	b := measurement.NewBuilder(measurement.TypeSystem, c.HumanReadable)

	if avg, err := src.Load(ctx); err == nil {
		b.Set("load", map[string]float64{
			"1":  avg.Load1,
			"5":  avg.Load5,
			"15": avg.Load15,
		})
	} else {
		slog.Debug("failed to read load average", slog.String("error", err.Error()))
	}

	if n, err := src.Cores(ctx); err == nil && n > 0 {
		b.Set("cores", n)
	} else {
		b.Set("cores", runtime.NumCPU())
	}

	infos, err := src.CPUs(ctx)
	if err != nil || len(infos) == 0 {
		if err != nil {
			slog.Debug("failed to read cpu info", slog.String("error", err.Error()))
		}
		return b
	}

	var total float64
	for _, info := range infos {
		total += info.Mhz
	}
	b.SetIf("speed", total/float64(len(infos)), total > 0)
	b.SetString("model", infos[0].ModelName)

	return b
}

// release reads os-release key/values, falling back to /usr/lib/os-release
// when /etc/os-release is absent.
func (c *Collector) release() *measurement.Builder {
	b := measurement.NewBuilder(measurement.TypeSystem, c.HumanReadable)

	path := filePathReleasePrimary
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filePathReleaseFallback
	}

	params, err := file.NewParser(
		file.WithVTrimChars(`"'`),
		file.WithSkipEmptyValues(true),
	).GetMap(path)
	if err != nil {
		slog.Debug("os release unavailable", slog.String("error", err.Error()))
		return b
	}

	for k, v := range params {
		b.Set(k, v)
	}
	return b
}

type hostSource struct{}

func (hostSource) Memory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (hostSource) Load(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

func (hostSource) CPUs(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

func (hostSource) Cores(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}
