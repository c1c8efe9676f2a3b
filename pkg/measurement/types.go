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

package measurement

// Type identifies one top-level group of a capture snapshot.
type Type string

// String returns the JSON key of the group.
func (t Type) String() string {
	return string(t)
}

const (
	TypeRuntime     Type = "runtime"
	TypeEnvironment Type = "environment"
	TypeRepository  Type = "repository"
	TypeSystem      Type = "system"
	TypeProcess     Type = "process"
	TypeException   Type = "exception"
)

// Types lists every group in snapshot order.
var Types = []Type{
	TypeRuntime,
	TypeEnvironment,
	TypeRepository,
	TypeSystem,
	TypeProcess,
	TypeException,
}

// ParseType parses a group name. It returns false for unknown names.
func ParseType(s string) (Type, bool) {
	for _, t := range Types {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Group is the JSON-ready content of one snapshot group. Values are scalars,
// slices or nested Groups/maps.
type Group map[string]any

// Measurement is what a collector returns: the group it filled and its data.
type Measurement struct {
	Type Type  `json:"type" yaml:"type"`
	Data Group `json:"data" yaml:"data"`
}

// Group returns the nested group stored under key, or nil.
func (g Group) Group(key string) Group {
	switch v := g[key].(type) {
	case Group:
		return v
	case map[string]any:
		return Group(v)
	}
	return nil
}
