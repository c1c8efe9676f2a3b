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

package terminate

import (
	"os/signal"
	"runtime/debug"
	"time"

	"golang.org/x/sys/unix"
)

// ProcessAborter raises SIGABRT against the current process until it dies.
// The crash traceback level makes the runtime dump all goroutines and
// re-raise the signal so the kernel can write a core file.
type ProcessAborter struct{}

func (ProcessAborter) Abort() {
	debug.SetTraceback("crash")
	signal.Reset(unix.SIGABRT)
	pid := unix.Getpid()
	for {
		_ = unix.Kill(pid, unix.SIGABRT)
		time.Sleep(10 * time.Millisecond)
	}
}
