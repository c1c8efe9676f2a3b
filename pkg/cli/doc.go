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

// Package cli implements the crashcap command-line interface.
//
// # Commands
//
// snapshot - Print what a capture would contain right now:
//
//	crashcap snapshot [--message TEXT] [--output FILE|cm://ns/name] [--format json|yaml|table]
//
// inspect - Render a persisted capture:
//
//	crashcap inspect exceptions/Mon-Jan-02-2006-4242-0.json --format yaml
//
// trigger - Raise a fault in a process with capture enabled:
//
//	crashcap trigger [--mode panic|error] [--no-abort] [--wait 30s]
//
// # Configuration
//
// Root flags override CRASHCAP_* environment variables, which override the
// file given with --config. The resolved configuration also drives logging:
// --log-level and --log-file (rotated with lumberjack).
//
// # Exit Codes
//
//	0  Success
//	1  General error, or a fault captured by trigger --no-abort
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/crashcap/pkg/version.Library=v1.0.0' -X 'github.com/NVIDIA/crashcap/pkg/cli.commit=abc123'"
package cli
