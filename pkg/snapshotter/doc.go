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

// Package snapshotter assembles the structured description of a process at
// the moment it faulted.
//
// # Snapshot Layout
//
//	runtime      library major version and Go runtime identifiers
//	environment  args, executable, cwd, sorted env, gid, uid
//	repository   .git/config sections plus checkout and sha1, or {}
//	system       platform, arch, hostname, memory, cpu load/cores/speed/model
//	process      uptime, title, active goroutines/handles, memory, pid,
//	             build settings, linked modules
//	exception    timestamp, epoch milliseconds, message, stack lines and the
//	             frames that belong to the program itself
//
// # Usage
//
//	s := &snapshotter.Snapshotter{
//	    Factory: collector.NewDefaultFactory(collector.WithHumanReadable(true)),
//	}
//	snap, err := s.Build(ctx, snapshotter.Input{
//	    Message: err.Error(),
//	    Stack:   []string{string(debug.Stack())},
//	})
//
// Collectors run in parallel, each bounded by CollectorTimeout. A collector
// that fails only empties its own group; Build returns an error solely when
// the context is already done.
//
// # Metrics
//
//   - crashcap_snapshot_build_duration_seconds
//   - crashcap_snapshot_build_total{status}
//   - crashcap_snapshot_collector_duration_seconds{collector}
//   - crashcap_snapshot_collector_errors_total{collector}
package snapshotter
