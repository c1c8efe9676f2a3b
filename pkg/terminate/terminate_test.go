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

package terminate

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/crashcap/pkg/capture"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/relay"
	"github.com/NVIDIA/crashcap/pkg/sink"
)

type recorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

type persistFunc func(rec *capture.Record)

func (f persistFunc) Persist(rec *capture.Record) { f(rec) }

type sendFunc func(ctx context.Context, rec *capture.Record, onComplete func(error))

func (f sendFunc) Send(ctx context.Context, rec *capture.Record, onComplete func(error)) {
	f(ctx, rec, onComplete)
}

func record(timeout time.Duration) *capture.Record {
	return &capture.Record{Filename: "f", Timeout: timeout}
}

func TestSaveRelaySuccess(t *testing.T) {
	rec := &recorder{}
	var states []State
	c := New(
		persistFunc(func(*capture.Record) { rec.add("persist") }),
		sendFunc(func(_ context.Context, _ *capture.Record, done func(error)) {
			rec.add("send")
			go done(nil)
		}),
		WithObserver(func(_ *capture.Record, s State) { states = append(states, s) }),
	)

	var doneCalls atomic.Int32
	err := c.Save(context.Background(), record(time.Second), func(err error) {
		doneCalls.Add(1)
		assert.NoError(t, err)
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), doneCalls.Load())
	assert.Equal(t, []string{"persist", "send"}, rec.get())
	assert.Equal(t, []State{StateCapturing, StatePersisting, StateRelaying, StateTerminated}, states)
	assert.Equal(t, StateTerminated, c.State())
}

func TestSaveTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	c := New(nil, sendFunc(func(ctx context.Context, _ *capture.Record, done func(error)) {
		go func() {
			<-block
			done(nil)
		}()
	}))

	start := time.Now()
	var got error
	err := c.Save(context.Background(), record(30*time.Millisecond), func(err error) { got = err })

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.HasCode(got, errors.ErrCodeTimeout), "got %v", got)
}

func TestSaveLoserIsSuppressed(t *testing.T) {
	var completions atomic.Int32
	lateDone := make(chan struct{})

	c := New(nil, sendFunc(func(_ context.Context, _ *capture.Record, done func(error)) {
		go func() {
			time.Sleep(60 * time.Millisecond)
			done(stderrors.New("late relay"))
			close(lateDone)
		}()
	}))

	err := c.Save(context.Background(), record(10*time.Millisecond), func(error) { completions.Add(1) })
	assert.True(t, errors.HasCode(err, errors.ErrCodeTimeout))

	<-lateDone
	assert.Equal(t, int32(1), completions.Load(), "the relay completing after the timeout must be a no-op")
}

func TestSaveRelayCalledTwice(t *testing.T) {
	var completions atomic.Int32
	c := New(nil, sendFunc(func(_ context.Context, _ *capture.Record, done func(error)) {
		go func() {
			done(nil)
			done(stderrors.New("again"))
		}()
	}))

	err := c.Save(context.Background(), record(time.Second), func(error) { completions.Add(1) })
	assert.NoError(t, err)
	assert.Equal(t, int32(1), completions.Load())
}

func TestSaveWithoutDoneAborts(t *testing.T) {
	var aborts atomic.Int32
	c := New(nil, relay.New(nil), WithAborter(AborterFunc(func() { aborts.Add(1) })))

	err := c.Save(context.Background(), record(time.Second), nil)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), aborts.Load())
}

func TestSaveWithoutDoneAbortsOnceAfterTimeout(t *testing.T) {
	var aborts atomic.Int32
	lateDone := make(chan struct{})

	c := New(nil, sendFunc(func(_ context.Context, _ *capture.Record, done func(error)) {
		go func() {
			time.Sleep(60 * time.Millisecond)
			done(nil)
			close(lateDone)
		}()
	}), WithAborter(AborterFunc(func() { aborts.Add(1) })))

	err := c.Save(context.Background(), record(10*time.Millisecond), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTimeout), "got %v", err)
	assert.Equal(t, int32(1), aborts.Load())

	<-lateDone
	assert.Equal(t, int32(1), aborts.Load(), "a relay completing after the timeout must not abort again")
	assert.Equal(t, StateTerminated, c.State())
}

func TestSaveWithoutDoneAbortsOnceWhenRacing(t *testing.T) {
	for i := 0; i < 20; i++ {
		var aborts atomic.Int32
		relayed := make(chan struct{})

		c := New(nil, sendFunc(func(_ context.Context, _ *capture.Record, done func(error)) {
			go func() {
				time.Sleep(5 * time.Millisecond)
				done(nil)
				close(relayed)
			}()
		}), WithAborter(AborterFunc(func() { aborts.Add(1) })))

		_ = c.Save(context.Background(), record(5*time.Millisecond), nil)
		<-relayed
		time.Sleep(10 * time.Millisecond)
		assert.Equal(t, int32(1), aborts.Load(), "iteration %d", i)
	}
}

func TestSaveCanceledContextStillRelays(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var relayCtxErr error
	c := New(nil, sendFunc(func(rctx context.Context, _ *capture.Record, done func(error)) {
		relayCtxErr = rctx.Err()
		go done(nil)
	}))

	require.NoError(t, c.Save(ctx, record(time.Second), func(error) {}))
	assert.NoError(t, relayCtxErr)
}

func TestSaveContinuesAfterDiskFailure(t *testing.T) {
	s := sink.New(filepath.Join(t.TempDir(), "missing"),
		sink.WithConsole(&discard{}),
		sink.WithHeapDumper(sink.HeapDumperFunc(func(string) error { return stderrors.New("no dump") })))

	var relayed atomic.Bool
	c := New(s, relay.New(relay.ReporterFunc(func(context.Context, *capture.Record) error {
		relayed.Store(true)
		return nil
	})))

	err := c.Save(context.Background(), record(time.Second), func(error) {})
	assert.NoError(t, err)
	assert.True(t, relayed.Load())
}

func TestSaveNilSender(t *testing.T) {
	c := New(nil, nil)
	assert.NoError(t, c.Save(context.Background(), record(0), func(error) {}))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "capturing", StateCapturing.String())
	assert.Equal(t, "persisting", StatePersisting.String())
	assert.Equal(t, "relaying", StateRelaying.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "unknown", State(42).String())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
