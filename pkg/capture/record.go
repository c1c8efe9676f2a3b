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

package capture

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/identity"
	"github.com/NVIDIA/crashcap/pkg/snapshotter"
)

// Options holds what New needs beyond the fault itself.
type Options struct {
	// Allocator hands out the record id. Required.
	Allocator *identity.Allocator

	// Snapshotter builds the snapshot. If nil, a default one is used.
	Snapshotter *snapshotter.Snapshotter

	// AppName is embedded in the filename when set.
	AppName string

	// HumanReadable is recorded for consumers; byte formatting itself is
	// configured on the Snapshotter's collector factory.
	HumanReadable bool

	// Timeout bounds the remote relay. Defaults to defaults.RelayTimeout.
	Timeout time.Duration

	// Now returns the capture time. Defaults to time.Now.
	Now func() time.Time
}

// Record is one captured fault. Its snapshot is computed exactly once; every
// accessor and every rendering afterwards sees the same value.
type Record struct {
	ID            int64
	Message       string
	Stack         []string
	Filename      string
	HumanReadable bool
	Timeout       time.Duration

	cause  error
	frames []snapshotter.Frame

	once  sync.Once
	snap  *snapshotter.Snapshot
	build func() (*snapshotter.Snapshot, error)
}

// New assigns an id and filename to f and materializes its snapshot.
// The snapshot is built even if ctx is canceled: a fault is described no
// matter what the caller was doing.
func New(ctx context.Context, f Fault, opts Options) (*Record, error) {
	if f == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "fault cannot be nil")
	}
	if opts.Allocator == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "identity allocator is required")
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaults.RelayTimeout
	}
	snapper := opts.Snapshotter
	if snapper == nil {
		snapper = &snapshotter.Snapshotter{}
	}

	id := opts.Allocator.Next()
	r := &Record{
		ID:            id,
		Message:       f.Error(),
		Stack:         f.StackTrace(),
		Filename:      identity.Filename(now(), opts.AppName, os.Getpid(), id),
		HumanReadable: opts.HumanReadable,
		Timeout:       timeout,
		cause:         f,
	}
	if fr, ok := f.(Framer); ok {
		r.frames = fr.Frames()
	}

	bctx := context.WithoutCancel(ctx)
	r.build = func() (*snapshotter.Snapshot, error) {
		return snapper.Build(bctx, snapshotter.Input{
			Message: r.Message,
			Stack:   r.Stack,
			Frames:  r.frames,
		})
	}

	r.Snapshot()
	return r, nil
}

// Snapshot returns the cached snapshot, building it on first use.
func (r *Record) Snapshot() *snapshotter.Snapshot {
	r.once.Do(func() {
		if r.build != nil {
			snap, err := r.build()
			if err == nil {
				r.snap = snap
				return
			}
		}
		r.snap = snapshotter.NewSnapshot()
	})
	return r.snap
}

// MarshalJSON renders the cached snapshot.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}

// Error returns the fault message.
func (r *Record) Error() string {
	return r.Message
}

// StackTrace returns the fault stack.
func (r *Record) StackTrace() []string {
	return r.Stack
}

// Unwrap returns the fault the record was created from.
func (r *Record) Unwrap() error {
	return r.cause
}

// String renders the snapshot as indented JSON without braces, for reading
// in a terminal.
func (r *Record) String() string {
	b, err := json.MarshalIndent(r.Snapshot(), "", "  ")
	if err != nil {
		return r.Message
	}
	return strings.NewReplacer("{", "", "}", "").Replace(string(b))
}
