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

package collector

import (
	"github.com/NVIDIA/crashcap/pkg/collector/environment"
	"github.com/NVIDIA/crashcap/pkg/collector/git"
	"github.com/NVIDIA/crashcap/pkg/collector/process"
	"github.com/NVIDIA/crashcap/pkg/collector/system"
)

// Factory creates collectors with their dependencies.
// This interface enables dependency injection for testing.
type Factory interface {
	CreateEnvironmentCollector() Collector
	CreateRepositoryCollector() Collector
	CreateSystemCollector() Collector
	CreateProcessCollector() Collector
}

// Option is a functional option for configuring DefaultFactory.
type Option func(*DefaultFactory)

// WithHumanReadable renders memory sizes with unit suffixes.
func WithHumanReadable(human bool) Option {
	return func(f *DefaultFactory) {
		f.HumanReadable = human
	}
}

// WithWorkDir sets where the repository lookup starts.
func WithWorkDir(dir string) Option {
	return func(f *DefaultFactory) {
		f.WorkDir = dir
	}
}

// WithRedactEnv masks environment values whose keys match the patterns.
func WithRedactEnv(patterns []string) Option {
	return func(f *DefaultFactory) {
		f.RedactEnv = patterns
	}
}

// DefaultFactory creates collectors with production dependencies.
type DefaultFactory struct {
	HumanReadable bool
	WorkDir       string
	RedactEnv     []string
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateEnvironmentCollector creates an invocation/environment collector.
func (f *DefaultFactory) CreateEnvironmentCollector() Collector {
	return &environment.Collector{
		Redact: f.RedactEnv,
	}
}

// CreateRepositoryCollector creates a git metadata collector.
func (f *DefaultFactory) CreateRepositoryCollector() Collector {
	return &git.Collector{
		WorkDir: f.WorkDir,
	}
}

// CreateSystemCollector creates a host statistics collector.
func (f *DefaultFactory) CreateSystemCollector() Collector {
	return &system.Collector{
		HumanReadable: f.HumanReadable,
	}
}

// CreateProcessCollector creates a process statistics collector.
func (f *DefaultFactory) CreateProcessCollector() Collector {
	return &process.Collector{
		HumanReadable: f.HumanReadable,
	}
}
