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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	cpu := NewBuilder(TypeSystem, true).
		Set("cores", 8).
		SetString("model", "")

	m := NewBuilder(TypeSystem, true).
		SetString("hostname", "node-1").
		SetString("empty", "").
		SetIf("skipped", 1, false).
		SetBytes("freemem", 1536, true).
		SetBytes("totalmem", 0, false).
		SetGroup("cpu", cpu, false).
		SetGroup("load", NewBuilder(TypeSystem, true), false).
		SetGroup("release", NewBuilder(TypeSystem, true), true).
		Build()

	require.NotNil(t, m)
	assert.Equal(t, TypeSystem, m.Type)
	assert.Equal(t, "node-1", m.Data["hostname"])
	assert.Equal(t, "1.5kb", m.Data["freemem"])
	assert.NotContains(t, m.Data, "empty")
	assert.NotContains(t, m.Data, "skipped")
	assert.NotContains(t, m.Data, "totalmem")
	assert.NotContains(t, m.Data, "load")
	assert.Contains(t, m.Data, "release")

	nested := m.Data.Group("cpu")
	require.NotNil(t, nested)
	assert.Equal(t, 8, nested["cores"])
	assert.NotContains(t, nested, "model")
}

func TestBuilder_RawBytes(t *testing.T) {
	b := NewBuilder(TypeProcess, false).SetBytes("rss", 4096, true)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, int64(4096), b.Build().Data["rss"])
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, ok := ParseType(typ.String())
		assert.True(t, ok, typ)
		assert.Equal(t, typ, got)
	}

	_, ok := ParseType("K8s")
	assert.False(t, ok)
}

func TestGroup_Group(t *testing.T) {
	g := Group{
		"a": Group{"x": 1},
		"b": map[string]any{"y": 2},
		"c": "scalar",
	}
	assert.Equal(t, Group{"x": 1}, g.Group("a"))
	assert.Equal(t, Group{"y": 2}, g.Group("b"))
	assert.Nil(t, g.Group("c"))
	assert.Nil(t, g.Group("missing"))
}
