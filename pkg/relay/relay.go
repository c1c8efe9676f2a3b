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

package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/NVIDIA/crashcap/pkg/capture"
)

// Reporter delivers a capture to a remote collector.
type Reporter interface {
	Report(ctx context.Context, rec *capture.Record) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, rec *capture.Record) error

func (f ReporterFunc) Report(ctx context.Context, rec *capture.Record) error { return f(ctx, rec) }

// Relay schedules a Reporter off the calling goroutine.
type Relay struct {
	reporter Reporter
}

// New returns a Relay for r. A nil reporter completes every Send with nil.
func New(r Reporter) *Relay {
	return &Relay{reporter: r}
}

// Send runs the reporter on a new goroutine and calls onComplete exactly once
// with its result. onComplete never runs on the caller's goroutine, and a
// panicking reporter completes with an error.
func (r *Relay) Send(ctx context.Context, rec *capture.Record, onComplete func(error)) {
	var once sync.Once
	complete := func(err error) {
		once.Do(func() {
			if onComplete != nil {
				onComplete(err)
			}
		})
	}

	var reporter Reporter
	if r != nil {
		reporter = r.reporter
	}
	name := reporterName(reporter)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				relayTotal.WithLabelValues(name, "panic").Inc()
				slog.Error("reporter panicked", "reporter", name, "panic", fmt.Sprint(p))
				complete(fmt.Errorf("reporter %s panicked: %v", name, p))
			}
		}()

		if reporter == nil {
			complete(nil)
			return
		}

		start := time.Now()
		err := reporter.Report(ctx, rec)
		relayDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			relayTotal.WithLabelValues(name, "error").Inc()
			slog.Warn("relay failed", "reporter", name, "filename", rec.Filename, "error", err)
		} else {
			relayTotal.WithLabelValues(name, "success").Inc()
		}
		complete(err)
	}()
}

func reporterName(r Reporter) string {
	if r == nil {
		return "none"
	}
	if n, ok := r.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
