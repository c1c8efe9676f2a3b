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

//go:build !windows

package fault

import (
	"context"
	"os"
	"os/signal"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/NVIDIA/crashcap/pkg/config"
	"github.com/NVIDIA/crashcap/pkg/sink"
)

func TestSignalTriggersHeapDump(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.SignalDumpInterval = time.Hour })
	require.NoError(t, f.l.Listen(context.Background()))

	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGUSR1))
	require.Eventually(t, func() bool {
		return len(files(t, f.dir, sink.HeapExt)) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGUSR1))
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, files(t, f.dir, sink.HeapExt), 1, "second signal within the interval is throttled")
	assert.Zero(t, f.aborts.Load())
}

func TestSignalStoppedWhenContextEnds(t *testing.T) {
	f := newFixture(t, nil)

	// keep SIGUSR1 from terminating the test binary once the listener lets go
	own := make(chan os.Signal, 1)
	signal.Notify(own, unix.SIGUSR1)
	defer signal.Stop(own)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.l.Listen(ctx))
	cancel()
	f.l.wg.Wait()

	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGUSR1))
	select {
	case <-own:
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not delivered")
	}

	select {
	case <-f.l.sigCh:
		t.Fatal("listener still subscribed after its context ended")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Empty(t, files(t, f.dir, sink.HeapExt))
}
