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
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NVIDIA/crashcap/pkg/capture"
	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/errors"
)

// State is a step of the save sequence.
type State int32

const (
	StateCapturing State = iota
	StatePersisting
	StateRelaying
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCapturing:
		return "capturing"
	case StatePersisting:
		return "persisting"
	case StateRelaying:
		return "relaying"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Persister writes a capture locally. *sink.Sink implements it.
type Persister interface {
	Persist(rec *capture.Record)
}

// Sender hands a capture to the remote relay. *relay.Relay implements it.
type Sender interface {
	Send(ctx context.Context, rec *capture.Record, onComplete func(error))
}

// Aborter ends the process. Implementations used outside tests never return.
type Aborter interface {
	Abort()
}

// AborterFunc adapts a function to Aborter.
type AborterFunc func()

func (f AborterFunc) Abort() { f() }

// Option configures a Controller.
type Option func(*Controller)

// WithAborter replaces the process abort.
func WithAborter(a Aborter) Option {
	return func(c *Controller) {
		c.aborter = a
	}
}

// WithObserver registers a callback invoked on every state transition.
func WithObserver(fn func(rec *capture.Record, s State)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// Controller drives a capture through persistence and relay and then ends
// the process.
type Controller struct {
	persister Persister
	sender    Sender
	aborter   Aborter
	observer  func(rec *capture.Record, s State)
	state     atomic.Int32
}

// New returns a Controller. The default aborter raises SIGABRT with a crash
// traceback so the OS can keep a core dump.
func New(p Persister, s Sender, opts ...Option) *Controller {
	c := &Controller{
		persister: p,
		sender:    s,
		aborter:   ProcessAborter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the state of the most recent save.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) enter(rec *capture.Record, s State) {
	c.state.Store(int32(s))
	slog.Debug("capture state", "filename", rec.Filename, "state", s.String())
	if c.observer != nil {
		c.observer(rec, s)
	}
}

// Save persists rec, relays it and waits for the relay to complete or for
// rec.Timeout to pass, whichever comes first. The winner's result is passed
// to done; the loser is ignored. A nil done aborts the process instead, in
// which case Save only returns if the aborter does.
func (c *Controller) Save(ctx context.Context, rec *capture.Record, done func(error)) error {
	c.enter(rec, StateCapturing)

	c.enter(rec, StatePersisting)
	if c.persister != nil {
		c.persister.Persist(rec)
	}

	c.enter(rec, StateRelaying)
	timeout := rec.Timeout
	if timeout <= 0 {
		timeout = defaults.RelayTimeout
	}

	var once sync.Once
	result := make(chan error, 1)
	kill := func(err error) {
		once.Do(func() { result <- err })
	}

	timer := time.AfterFunc(timeout, func() {
		kill(errors.NewWithContext(errors.ErrCodeTimeout, "relay did not complete in time", map[string]any{
			"filename": rec.Filename,
			"timeout":  timeout.String(),
		}))
	})
	defer timer.Stop()

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if c.sender != nil {
		c.sender.Send(rctx, rec, kill)
	} else {
		go kill(nil)
	}

	err := <-result
	c.enter(rec, StateTerminated)
	if err != nil {
		slog.Warn("relay did not succeed", "filename", rec.Filename, "error", err)
	}

	if done != nil {
		done(err)
		return err
	}

	slog.Error("aborting after captured fault", "filename", rec.Filename)
	c.aborter.Abort()
	return err
}
