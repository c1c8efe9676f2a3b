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

package snapshotter

import (
	"github.com/NVIDIA/crashcap/pkg/measurement"
)

// Snapshot is the JSON document persisted for every capture. Field order is
// the order groups appear in the rendered record.
type Snapshot struct {
	Runtime     measurement.Group `json:"runtime" yaml:"runtime"`
	Environment measurement.Group `json:"environment" yaml:"environment"`
	Repository  measurement.Group `json:"repository" yaml:"repository"`
	System      measurement.Group `json:"system" yaml:"system"`
	Process     measurement.Group `json:"process" yaml:"process"`
	Exception   measurement.Group `json:"exception" yaml:"exception"`
}

// NewSnapshot creates a Snapshot with every group initialized, so absent data
// renders as {} rather than null.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Runtime:     measurement.Group{},
		Environment: measurement.Group{},
		Repository:  measurement.Group{},
		System:      measurement.Group{},
		Process:     measurement.Group{},
		Exception:   measurement.Group{},
	}
}

// Set stores the data of m in the group it belongs to.
func (s *Snapshot) Set(m *measurement.Measurement) {
	if m == nil || m.Data == nil {
		return
	}
	switch m.Type {
	case measurement.TypeRuntime:
		s.Runtime = m.Data
	case measurement.TypeEnvironment:
		s.Environment = m.Data
	case measurement.TypeRepository:
		s.Repository = m.Data
	case measurement.TypeSystem:
		s.System = m.Data
	case measurement.TypeProcess:
		s.Process = m.Data
	case measurement.TypeException:
		s.Exception = m.Data
	}
}

// Frame is one call site of a fault's stack.
type Frame struct {
	Function string `json:"function" yaml:"function"`
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line" yaml:"line"`
	// Failed marks frames that belong to the program's own module rather
	// than the runtime or a dependency.
	Failed bool `json:"failed" yaml:"failed"`
}

// Input is the fault-specific part of a snapshot.
type Input struct {
	Message string
	Stack   []string
	Frames  []Frame
}
