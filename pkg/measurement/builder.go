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

// Builder fills a Group. Setters that take an ok flag drop the field when the
// platform could not provide it, so missing data never reaches the snapshot
// as a zero value.
type Builder struct {
	t     Type
	human bool
	data  Group
}

// NewBuilder starts a group of type t. human selects unit strings for byte
// values (see Bytes).
func NewBuilder(t Type, human bool) *Builder {
	return &Builder{
		t:     t,
		human: human,
		data:  make(Group),
	}
}

// Set stores value under key.
func (b *Builder) Set(key string, value any) *Builder {
	b.data[key] = value
	return b
}

// SetIf stores value under key only when ok is true.
func (b *Builder) SetIf(key string, value any, ok bool) *Builder {
	if ok {
		b.data[key] = value
	}
	return b
}

// SetString stores non-empty strings.
func (b *Builder) SetString(key, value string) *Builder {
	return b.SetIf(key, value, value != "")
}

// SetBytes stores a byte count formatted according to the builder's
// human-readable setting.
func (b *Builder) SetBytes(key string, value int64, ok bool) *Builder {
	if ok {
		b.data[key] = Bytes(value, b.human)
	}
	return b
}

// SetGroup stores a nested group built by child. Empty children are kept
// only when keepEmpty is true.
func (b *Builder) SetGroup(key string, child *Builder, keepEmpty bool) *Builder {
	if child == nil {
		return b
	}
	if len(child.data) == 0 && !keepEmpty {
		return b
	}
	b.data[key] = child.data
	return b
}

// Len reports how many fields have been set.
func (b *Builder) Len() int {
	return len(b.data)
}

// Build returns the finished measurement.
func (b *Builder) Build() *Measurement {
	return &Measurement{
		Type: b.t,
		Data: b.data,
	}
}
