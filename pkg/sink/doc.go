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

// Package sink persists captures.
//
// A capture is written to the console (stderr), then atomically to
// <exceptions>/<filename>.json, then a heap dump goes to
// <exceptions>/<filename>.heapsnapshot. Each step is best effort: failures
// are logged and counted in crashcap_sink_writes_total, never returned to the
// faulting code path.
package sink
