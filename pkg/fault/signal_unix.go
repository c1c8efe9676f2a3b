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
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// DumpSignal requests an out-of-band heap dump.
var DumpSignal os.Signal = unix.SIGUSR1

func notifyDump(ch chan<- os.Signal) bool {
	signal.Notify(ch, DumpSignal)
	return true
}
