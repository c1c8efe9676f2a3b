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
	"context"
	"testing"

	"github.com/NVIDIA/crashcap/pkg/collector/environment"
	"github.com/NVIDIA/crashcap/pkg/collector/git"
	"github.com/NVIDIA/crashcap/pkg/collector/process"
	"github.com/NVIDIA/crashcap/pkg/collector/system"
	"github.com/NVIDIA/crashcap/pkg/measurement"
)

func TestNewDefaultFactory_Options(t *testing.T) {
	factory := NewDefaultFactory(
		WithHumanReadable(true),
		WithWorkDir("/srv/app"),
		WithRedactEnv([]string{"*TOKEN*"}),
	)

	env, ok := factory.CreateEnvironmentCollector().(*environment.Collector)
	if !ok {
		t.Fatal("Expected *environment.Collector")
	}
	if len(env.Redact) != 1 || env.Redact[0] != "*TOKEN*" {
		t.Errorf("Redact = %v, want [*TOKEN*]", env.Redact)
	}

	repo, ok := factory.CreateRepositoryCollector().(*git.Collector)
	if !ok {
		t.Fatal("Expected *git.Collector")
	}
	if repo.WorkDir != "/srv/app" {
		t.Errorf("WorkDir = %q, want /srv/app", repo.WorkDir)
	}

	sys, ok := factory.CreateSystemCollector().(*system.Collector)
	if !ok {
		t.Fatal("Expected *system.Collector")
	}
	if !sys.HumanReadable {
		t.Error("Expected system collector to be human readable")
	}

	proc, ok := factory.CreateProcessCollector().(*process.Collector)
	if !ok {
		t.Fatal("Expected *process.Collector")
	}
	if !proc.HumanReadable {
		t.Error("Expected process collector to be human readable")
	}
}

func TestDefaultFactory_AllCollectors(t *testing.T) {
	factory := NewDefaultFactory(WithWorkDir(t.TempDir()))

	tests := []struct {
		create func() Collector
		want   measurement.Type
	}{
		{factory.CreateEnvironmentCollector, measurement.TypeEnvironment},
		{factory.CreateRepositoryCollector, measurement.TypeRepository},
		{factory.CreateSystemCollector, measurement.TypeSystem},
		{factory.CreateProcessCollector, measurement.TypeProcess},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			c := tt.create()
			if c == nil {
				t.Fatal("Expected non-nil collector")
			}
			m, err := c.Collect(context.Background())
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if m.Type != tt.want {
				t.Errorf("Type = %s, want %s", m.Type, tt.want)
			}
		})
	}
}
