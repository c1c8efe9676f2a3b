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

// Package logging provides structured logging utilities for crash capture.
//
// This package wraps the standard library slog package with crashcap defaults
// and conventions for consistent logging across all components. It supports
// JSON output with module and version context, optional size-rotated log
// files, and level selection through flags or the LOG_LEVEL environment
// variable.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("crashcap", "v1.0.0")
//	    slog.Info("listener installed", "directory", dir)
//	}
//
// Also writing to a rotated file:
//
//	closer := logging.SetDefaultStructuredLoggerWithFile("crashcap", version, "info", "/var/log/crashcap.log")
//	defer closer.Close()
//
// Environment configuration:
//
//	LOG_LEVEL=debug crashcap snapshot
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "ERROR",
//	    "msg": "failed to write exception to disk",
//	    "module": "crashcap",
//	    "version": "v1.0.0",
//	    "path": "/srv/app/exceptions/Mon-Oct-19-2026-4242-0.json"
//	}
//
// Crash capture runs while the host process is failing, so components log
// and continue rather than return errors wherever persistence is best-effort.
package logging
