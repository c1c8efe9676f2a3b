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

// Package defaults provides centralized configuration constants for crash capture.
//
// This package defines timeout values and rate limits used across the
// codebase. Centralizing these values ensures consistency and makes tuning
// easier.
//
// # Timeout Categories
//
//   - Relay timeouts: how long a captured process waits for the remote relay
//   - Collector timeouts: for snapshot data collection
//   - Transport timeouts: HTTP, Kubernetes and OCI relay targets
//
// # Usage
//
//	import "github.com/NVIDIA/crashcap/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CollectorTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
// The relay timeout bounds the time between persistence and termination of
// a faulted process. Transport timeouts should stay at or below it, since
// the process is aborted when the relay deadline fires regardless of any
// in-flight request.
package defaults
