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
	"io"
	"log/slog"
	"os"

	"github.com/NVIDIA/crashcap/pkg/capture"
	"github.com/NVIDIA/crashcap/pkg/identity"
	"github.com/NVIDIA/crashcap/pkg/serializer"
)

// HeapExt is the extension of heap dumps written next to capture files.
const HeapExt = ".heapsnapshot"

// Option configures a Sink.
type Option func(*Sink)

// WithConsole sets the stream ToConsole writes to. Defaults to os.Stderr.
func WithConsole(w io.Writer) Option {
	return func(s *Sink) {
		s.console = w
	}
}

// WithHeapDumper sets the heap dumper. Defaults to PprofDumper.
func WithHeapDumper(h HeapDumper) Option {
	return func(s *Sink) {
		s.heap = h
	}
}

// Sink persists captures to the console and the exceptions directory.
// None of its methods escalate failures; they are logged and counted.
type Sink struct {
	dir     string
	console io.Writer
	heap    HeapDumper
}

// New returns a Sink writing into dir, the exceptions directory.
func New(dir string, opts ...Option) *Sink {
	s := &Sink{
		dir:     dir,
		console: os.Stderr,
		heap:    PprofDumper{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the exceptions directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Persist writes rec to the console, to disk and dumps the heap, in that order.
func (s *Sink) Persist(rec *capture.Record) {
	s.ToConsole(rec)
	s.ToDisk(rec)
	s.DumpHeap(rec)
}

// ToConsole writes a framed, indented rendering of the cached snapshot.
func (s *Sink) ToConsole(rec *capture.Record) {
	body, err := serializer.Marshal(serializer.FormatJSON, rec.Snapshot())
	if err != nil {
		sinkWritesTotal.WithLabelValues(targetConsole, statusFailure).Inc()
		slog.Error("failed to render capture", "filename", rec.Filename, "error", err)
		return
	}
	if _, err := fmt.Fprintf(s.console, "\nException (%s) :\n%s\n", rec.Filename, body); err != nil {
		sinkWritesTotal.WithLabelValues(targetConsole, statusFailure).Inc()
		slog.Error("failed to write capture to console", "filename", rec.Filename, "error", err)
		return
	}
	sinkWritesTotal.WithLabelValues(targetConsole, statusSuccess).Inc()
}

// ToDisk writes the cached snapshot to <dir>/<filename>.json and returns the
// path, or "" when the write failed.
func (s *Sink) ToDisk(rec *capture.Record) string {
	path := identity.Path(s.dir, rec.Filename, identity.RecordExt)

	body, err := serializer.Marshal(serializer.FormatJSON, rec.Snapshot())
	if err == nil {
		err = serializer.WriteFileAtomic(path, body, 0o600)
	}
	if err != nil {
		sinkWritesTotal.WithLabelValues(targetDisk, statusFailure).Inc()
		slog.Error("failed to write exception to disk", "path", path, "error", err)
		return ""
	}

	sinkWritesTotal.WithLabelValues(targetDisk, statusSuccess).Inc()
	slog.Debug("exception written", "path", path)
	return path
}

// DumpHeap writes a heap dump named after rec. Errors are only logged.
func (s *Sink) DumpHeap(rec *capture.Record) {
	if _, err := s.WriteHeap(rec.Filename); err != nil {
		slog.Warn("heap dump failed", "filename", rec.Filename, "error", err)
	}
}

// WriteHeap writes a heap dump to <dir>/<filename>.heapsnapshot and returns the path.
func (s *Sink) WriteHeap(filename string) (string, error) {
	path := identity.Path(s.dir, filename, HeapExt)
	if s.heap == nil {
		return "", fmt.Errorf("no heap dumper configured")
	}
	if err := s.heap.WriteHeapDump(path); err != nil {
		sinkWritesTotal.WithLabelValues(targetHeap, statusFailure).Inc()
		return "", err
	}
	sinkWritesTotal.WithLabelValues(targetHeap, statusSuccess).Inc()
	return path, nil
}
