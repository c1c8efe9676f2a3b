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
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/NVIDIA/crashcap/pkg/collector"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/identity"
	"github.com/NVIDIA/crashcap/pkg/measurement"
	"github.com/NVIDIA/crashcap/pkg/snapshotter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCollector reports how many times it ran, so tests can observe
// whether a snapshot was rebuilt.
type countingCollector struct {
	t     measurement.Type
	calls int
}

func (c *countingCollector) Collect(context.Context) (*measurement.Measurement, error) {
	c.calls++
	return &measurement.Measurement{Type: c.t, Data: measurement.Group{
		"calls": c.calls,
		"at":    time.Now().UnixNano(),
	}}, nil
}

type stubFactory struct {
	proc *countingCollector
}

func (f *stubFactory) CreateEnvironmentCollector() collector.Collector {
	return &countingCollector{t: measurement.TypeEnvironment}
}

func (f *stubFactory) CreateRepositoryCollector() collector.Collector {
	return &countingCollector{t: measurement.TypeRepository}
}

func (f *stubFactory) CreateSystemCollector() collector.Collector {
	return &countingCollector{t: measurement.TypeSystem}
}

func (f *stubFactory) CreateProcessCollector() collector.Collector {
	return f.proc
}

func newOptions(t *testing.T) (Options, *stubFactory) {
	t.Helper()
	alloc, err := identity.NewAllocator(t.TempDir())
	require.NoError(t, err)

	f := &stubFactory{proc: &countingCollector{t: measurement.TypeProcess}}
	return Options{
		Allocator:   alloc,
		Snapshotter: &snapshotter.Snapshotter{Factory: f},
		AppName:     "billing",
		Timeout:     250 * time.Millisecond,
	}, f
}

func TestNew(t *testing.T) {
	opts, _ := newOptions(t)
	ts := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.Local)
	opts.Now = func() time.Time { return ts }
	opts.HumanReadable = true

	r, err := New(context.Background(), FromMessage("disk on fire"), opts)
	require.NoError(t, err)

	assert.Equal(t, int64(0), r.ID)
	assert.Equal(t, "disk on fire", r.Message)
	assert.Equal(t, "disk on fire", r.Error())
	assert.Equal(t, fmt.Sprintf("Tue-Mar-04-2025-billing-%d-0", os.Getpid()), r.Filename)
	assert.Equal(t, 250*time.Millisecond, r.Timeout)
	assert.True(t, r.HumanReadable)
	assert.NotEmpty(t, r.StackTrace())
	assert.Equal(t, "disk on fire", r.Snapshot().Exception["message"])
}

func TestNew_Validation(t *testing.T) {
	opts, _ := newOptions(t)

	_, err := New(context.Background(), nil, opts)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	opts.Allocator = nil
	_, err = New(context.Background(), FromMessage("x"), opts)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestNew_DefaultTimeout(t *testing.T) {
	opts, _ := newOptions(t)
	opts.Timeout = 0

	r, err := New(context.Background(), FromMessage("x"), opts)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, r.Timeout)
}

func TestRecord_SnapshotIsComputedOnce(t *testing.T) {
	opts, f := newOptions(t)

	r, err := New(context.Background(), FromMessage("once"), opts)
	require.NoError(t, err)
	require.Equal(t, 1, f.proc.calls, "New materializes the snapshot")

	first := r.Snapshot()
	b1, err := json.Marshal(r)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	second := r.Snapshot()
	b2, err := r.MarshalJSON()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, f.proc.calls)
}

func TestRecord_CanceledContextStillSnapshots(t *testing.T) {
	opts, f := newOptions(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New(ctx, FromMessage("late"), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, f.proc.calls)
	assert.Equal(t, "late", r.Snapshot().Exception["message"])
}

func TestRecord_MonotonicIDsAndUniqueFilenames(t *testing.T) {
	opts, _ := newOptions(t)

	seen := make(map[string]bool)
	prev := int64(-1)
	for i := 0; i < 5; i++ {
		r, err := New(context.Background(), FromMessage("x"), opts)
		require.NoError(t, err)
		assert.Greater(t, r.ID, prev)
		prev = r.ID
		assert.False(t, seen[r.Filename], "duplicate filename %s", r.Filename)
		seen[r.Filename] = true
	}
}

func TestRecord_Unwrap(t *testing.T) {
	opts, _ := newOptions(t)
	cause := io.ErrUnexpectedEOF

	r, err := New(context.Background(), FromError(fmt.Errorf("read header: %w", cause)), opts)
	require.NoError(t, err)
	assert.True(t, stderrors.Is(r, cause))
}

func TestRecord_String(t *testing.T) {
	opts, _ := newOptions(t)
	r, err := New(context.Background(), FromMessage("printable"), opts)
	require.NoError(t, err)

	s := r.String()
	assert.NotContains(t, s, "{")
	assert.NotContains(t, s, "}")
	assert.Contains(t, s, `"message": "printable"`)
}

func TestRecord_ZeroValueSnapshot(t *testing.T) {
	var r Record
	snap := r.Snapshot()
	require.NotNil(t, snap)

	b, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte(`{"runtime":{}`)))
	assert.True(t, strings.HasSuffix(string(b), `"exception":{}}`))
}
