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

// Package config loads crashcap settings.
//
// Values are layered: built-in defaults, then an optional YAML (or JSON)
// file, then CRASHCAP_* environment variables. Command line flags are
// applied last by the CLI.
//
//	directory: /var/lib/billing
//	human_readable: true
//	timeout: 5s
//	app_name: billing
//	relay: https://collector.example.com/v1/crashes
//	heap_format: pprof
//	redact_env: ["*TOKEN*", "*SECRET*", "*PASSWORD*"]
//
// Durations use Go syntax (5s, 250ms). CRASHCAP_TIMEOUT_MS takes plain
// milliseconds.
package config
