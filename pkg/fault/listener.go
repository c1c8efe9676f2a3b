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

package fault

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/crashcap/pkg/capture"
	"github.com/NVIDIA/crashcap/pkg/collector"
	"github.com/NVIDIA/crashcap/pkg/config"
	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/identity"
	"github.com/NVIDIA/crashcap/pkg/relay"
	"github.com/NVIDIA/crashcap/pkg/sink"
	"github.com/NVIDIA/crashcap/pkg/snapshotter"
	"github.com/NVIDIA/crashcap/pkg/terminate"
)

// CrashExt is the extension of the file receiving fatal runtime errors.
const CrashExt = ".crash"

// Option configures a Listener.
type Option func(*Listener)

// WithReporter replaces the reporter built from the relay URI.
func WithReporter(r relay.Reporter) Option {
	return func(l *Listener) {
		l.reporter = r
		l.reporterSet = true
	}
}

// WithRelayOptions tunes the reporter built from the relay URI.
func WithRelayOptions(o relay.Options) Option {
	return func(l *Listener) {
		l.relayOpts = o
	}
}

// WithDone sets the completion callback of every save. Without one the
// process is aborted once a capture has been saved.
func WithDone(fn func(error)) Option {
	return func(l *Listener) {
		l.done = fn
	}
}

// WithAborter replaces the process abort.
func WithAborter(a terminate.Aborter) Option {
	return func(l *Listener) {
		l.ctrlOpts = append(l.ctrlOpts, terminate.WithAborter(a))
	}
}

// WithConsole sets where captures are printed. Defaults to os.Stderr.
func WithConsole(w io.Writer) Option {
	return func(l *Listener) {
		l.sinkOpts = append(l.sinkOpts, sink.WithConsole(w))
	}
}

// WithHeapDumper replaces the dumper selected by heap_format.
func WithHeapDumper(h sink.HeapDumper) Option {
	return func(l *Listener) {
		l.heapDumper = h
	}
}

// WithFactory replaces the snapshot collector factory.
func WithFactory(f collector.Factory) Option {
	return func(l *Listener) {
		l.factory = f
	}
}

// WithLookupEnv replaces os.LookupEnv for production detection.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *Listener) {
		l.lookupEnv = fn
	}
}

// Listener is the process-wide capture service. The panic and error paths
// share one gate: only the first fault of the process is captured, later
// ones pass through untouched.
type Listener struct {
	cfg        *config.Config
	alloc      *identity.Allocator
	snapper    *snapshotter.Snapshotter
	sink       *sink.Sink
	ctrl       *terminate.Controller
	limiter    *rate.Limiter
	done       func(error)
	lookupEnv  func(string) (string, bool)
	factory    collector.Factory
	heapDumper sink.HeapDumper
	sinkOpts   []sink.Option
	ctrlOpts   []terminate.Option
	relayOpts  relay.Options

	reporter    relay.Reporter
	reporterSet bool

	fired     atomic.Bool
	listening atomic.Bool
	sigCh     chan os.Signal
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New prepares capture for cfg. It creates the exceptions directory; failing
// to do so is the only fatal error. A nil cfg means config.Default() with the
// CRASHCAP_* environment applied. CRASHCAP_DISABLE is honored either way; cfg
// itself is never modified.
func New(cfg *config.Config, opts ...Option) (*Listener, error) {
	l := &Listener{
		lookupEnv: os.LookupEnv,
		stop:      make(chan struct{}),
		sigCh:     make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(l)
	}

	var err error
	if l.cfg, err = resolveConfig(cfg, l.lookupEnv); err != nil {
		return nil, err
	}
	cfg = l.cfg

	if !config.IsProduction(l.lookupEnv) {
		debug.SetTraceback("all")
	}

	dir := cfg.ExceptionsDir()
	alloc, err := identity.NewAllocator(dir)
	if err != nil {
		return nil, err
	}
	l.alloc = alloc

	if l.factory == nil {
		l.factory = collector.NewDefaultFactory(
			collector.WithHumanReadable(cfg.HumanReadable),
			collector.WithRedactEnv(cfg.RedactEnv),
		)
	}
	l.snapper = &snapshotter.Snapshotter{Factory: l.factory}

	if l.heapDumper == nil {
		l.heapDumper = sink.NewHeapDumper(cfg.HeapFormat)
	}
	l.sink = sink.New(dir, append([]sink.Option{sink.WithHeapDumper(l.heapDumper)}, l.sinkOpts...)...)

	if !l.reporterSet {
		ro := l.relayOpts
		if ro.Kubeconfig == "" {
			ro.Kubeconfig = cfg.Kubeconfig
		}
		ro.PlainHTTP = ro.PlainHTTP || cfg.PlainHTTP
		ro.InsecureTLS = ro.InsecureTLS || cfg.InsecureTLS
		if l.reporter, err = relay.NewReporter(cfg.Relay, ro); err != nil {
			return nil, err
		}
	}
	l.ctrl = terminate.New(l.sink, relay.New(l.reporter), l.ctrlOpts...)

	interval := rate.Every(cfg.SignalDumpInterval)
	if cfg.SignalDumpInterval <= 0 {
		interval = rate.Inf
	}
	l.limiter = rate.NewLimiter(interval, defaults.SignalDumpBurst)

	slog.Debug("crash capture ready",
		"directory", dir,
		"relay", cfg.Relay,
		"disabled", cfg.Disabled)
	return l, nil
}

func resolveConfig(cfg *config.Config, lookup func(string) (string, bool)) (*config.Config, error) {
	var c config.Config
	if cfg == nil {
		c = *config.Default()
		if err := c.ApplyEnv(lookup); err != nil {
			return nil, err
		}
	} else {
		c = *cfg
		if v, ok := lookup(config.EnvDisable); ok {
			disabled, err := config.ParseBool(v)
			if err != nil {
				return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid environment value", err,
					map[string]any{"key": config.EnvDisable, "value": v})
			}
			c.Disabled = c.Disabled || disabled
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Config returns the configuration in use.
func (l *Listener) Config() *config.Config {
	return l.cfg
}

// Dir returns the exceptions directory.
func (l *Listener) Dir() string {
	return l.alloc.Dir()
}

// Controller exposes the save sequence, mainly to observe its state.
func (l *Listener) Controller() *terminate.Controller {
	return l.ctrl
}

// Recover captures a panic. It must be deferred directly:
//
//	defer listener.Recover()
//
// When capture is disabled, or a fault was already captured, the panic is
// re-raised with its original value.
func (l *Listener) Recover() {
	p := recover()
	if p == nil {
		return
	}
	l.handlePanic(p)
}

func (l *Listener) handlePanic(p any) {
	if l == nil || l.cfg.Disabled {
		capturesTotal.WithLabelValues("panic", "skipped").Inc()
		panic(p)
	}
	if !l.fired.CompareAndSwap(false, true) {
		capturesTotal.WithLabelValues("panic", "skipped").Inc()
		slog.Warn("fault after capture, re-raising", "panic", fmt.Sprint(p))
		panic(p)
	}

	rec, err := l.record(context.Background(), capture.FromPanic(p))
	if err != nil {
		capturesTotal.WithLabelValues("panic", "failed").Inc()
		slog.Error("failed to capture panic", "error", err)
		panic(p)
	}
	capturesTotal.WithLabelValues("panic", "captured").Inc()
	_ = l.ctrl.Save(context.Background(), rec, l.done)
}

// Capture records err and runs the save sequence, like a recovered panic.
// It returns the record once the sequence completed. With the default
// completion the process is aborted and Capture does not return.
func (l *Listener) Capture(ctx context.Context, err error) (*capture.Record, error) {
	if l.cfg.Disabled {
		capturesTotal.WithLabelValues("error", "skipped").Inc()
		return nil, errors.New(errors.ErrCodeUnavailable, "crash capture is disabled")
	}
	if !l.fired.CompareAndSwap(false, true) {
		capturesTotal.WithLabelValues("error", "skipped").Inc()
		return nil, errors.New(errors.ErrCodeUnavailable, "a fault was already captured")
	}

	rec, rerr := l.record(ctx, capture.FromError(err))
	if rerr != nil {
		capturesTotal.WithLabelValues("error", "failed").Inc()
		return nil, rerr
	}
	capturesTotal.WithLabelValues("error", "captured").Inc()
	_ = l.ctrl.Save(ctx, rec, l.done)
	return rec, nil
}

func (l *Listener) record(ctx context.Context, f capture.Fault) (*capture.Record, error) {
	return capture.New(ctx, f, capture.Options{
		Allocator:     l.alloc,
		Snapshotter:   l.snapper,
		AppName:       l.cfg.AppName,
		HumanReadable: l.cfg.HumanReadable,
		Timeout:       l.cfg.Timeout,
	})
}

// Listen starts the out-of-band heap dump trigger (SIGUSR1 where available)
// and, when configured, mirrors fatal runtime errors into a crash file. It
// returns immediately; Close or ctx stops it.
func (l *Listener) Listen(ctx context.Context) error {
	if !l.listening.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeInvalidRequest, "listener already started")
	}

	if l.cfg.CrashOutput {
		if err := l.setCrashOutput(); err != nil {
			slog.Warn("fatal error output not redirected", "error", err)
		}
	}

	if !notifyDump(l.sigCh) {
		slog.Debug("heap dump signal not supported on this platform")
		return nil
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ctx.Done():
				signal.Stop(l.sigCh)
				return
			case <-l.stop:
				return
			case <-l.sigCh:
				if !l.limiter.Allow() {
					heapDumpsTotal.WithLabelValues("signal", "throttled").Inc()
					slog.Debug("heap dump throttled")
					continue
				}
				if _, err := l.dumpHeap("signal"); err != nil {
					slog.Warn("signal heap dump failed", "error", err)
				}
			}
		}
	}()
	return nil
}

func (l *Listener) setCrashOutput() error {
	name := identity.Filename(time.Now(), l.cfg.AppName, os.Getpid(), l.alloc.Next())
	path := identity.Path(l.alloc.Dir(), name, CrashExt)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open crash output: %w", err)
	}
	defer f.Close()
	if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err != nil {
		return fmt.Errorf("failed to set crash output: %w", err)
	}
	slog.Debug("fatal errors mirrored", "path", path)
	return nil
}

// DumpHeap writes a heap-only dump named with the next capture id. Nothing
// else is captured and the process keeps running.
func (l *Listener) DumpHeap() (string, error) {
	return l.dumpHeap("manual")
}

func (l *Listener) dumpHeap(trigger string) (string, error) {
	name := identity.Filename(time.Now(), l.cfg.AppName, os.Getpid(), l.alloc.Next())
	path, err := l.sink.WriteHeap(name)
	if err != nil {
		heapDumpsTotal.WithLabelValues(trigger, "failed").Inc()
		return "", err
	}
	heapDumpsTotal.WithLabelValues(trigger, "written").Inc()
	slog.Info("heap dump written", "path", path, "trigger", trigger)
	return path, nil
}

// Close stops signal delivery. Safe to call more than once.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		signal.Stop(l.sigCh)
		close(l.stop)
	})
	l.wg.Wait()
	return nil
}
