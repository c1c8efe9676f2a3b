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

// Package collector provides the interface and factory for the collectors
// that fill a crash snapshot.
//
// # Core Interface
//
//	type Collector interface {
//	    Collect(ctx context.Context) (*measurement.Measurement, error)
//	}
//
// Every collector is best effort: statistics the platform cannot provide are
// left out of the group instead of failing the collection. An error is only
// returned when the context is done.
//
// # Available Collectors
//
// Environment (environment): arguments, executable, working directory,
// environment variables (optionally redacted), gid and uid.
//
// Repository (git): .git/config sections plus the checked out ref and commit,
// found by walking up from the working directory.
//
// System (system): platform, architecture, hostname, free and total memory,
// load averages, CPU count, speed and model, os-release.
//
// Process (process): uptime, title, goroutine and file descriptor counts,
// resident and heap memory, pid, build settings and linked modules.
//
// # Factory Pattern
//
//	factory := collector.NewDefaultFactory(
//	    collector.WithHumanReadable(true),
//	    collector.WithRedactEnv([]string{"*TOKEN*"}),
//	)
//	m, err := factory.CreateSystemCollector().Collect(ctx)
package collector
