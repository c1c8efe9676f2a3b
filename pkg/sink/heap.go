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

package sink

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"strings"
)

// Heap dump formats accepted by NewHeapDumper.
const (
	HeapFormatPprof = "pprof"
	HeapFormatDump  = "dump"
)

// HeapDumper writes a heap dump of the running process to path.
type HeapDumper interface {
	WriteHeapDump(path string) error
}

// HeapDumperFunc adapts a function to HeapDumper.
type HeapDumperFunc func(path string) error

func (f HeapDumperFunc) WriteHeapDump(path string) error { return f(path) }

// NewHeapDumper returns the dumper for format. Anything other than "dump"
// selects the pprof heap profile.
func NewHeapDumper(format string) HeapDumper {
	if strings.EqualFold(strings.TrimSpace(format), HeapFormatDump) {
		return RuntimeDumper{}
	}
	return PprofDumper{}
}

// PprofDumper writes a gzipped pprof heap profile after forcing a collection,
// so the profile reflects the live heap at the time of the fault.
type PprofDumper struct{}

func (PprofDumper) WriteHeapDump(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.Lookup("heap").WriteTo(f, 0); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return f.Close()
}

// RuntimeDumper writes the runtime's own heap dump format. It stops the world
// for the duration of the dump.
type RuntimeDumper struct{}

func (RuntimeDumper) WriteHeapDump(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create heap dump: %w", err)
	}
	debug.WriteHeapDump(f.Fd())
	return f.Close()
}
