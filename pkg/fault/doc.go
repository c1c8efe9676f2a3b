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

// Package fault wires crash capture into a program.
//
//	func main() {
//		l, err := fault.New(cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer l.Recover()
//		_ = l.Listen(ctx)
//		defer l.Close()
//		...
//	}
//
// A recovered panic, or an error passed to Capture, becomes a capture record
// that is printed, written to <directory>/exceptions, relayed and then the
// process aborts. Only the first fault of a process is captured; later ones
// pass through. CRASHCAP_DISABLE turns capture off and lets panics propagate,
// whatever the Config passed to New says; a nil Config is read from the
// CRASHCAP_* environment.
//
// SIGUSR1 writes a heap-only dump for live inspection, rate limited by
// signal_dump_interval.
package fault
