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
	"math"
	"strconv"
)

const (
	kb int64 = 1 << 10
	mb int64 = 1 << 20
	gb int64 = 1 << 30
	tb int64 = 1 << 40
)

var units = []struct {
	size   int64
	suffix string
}{
	{tb, "tb"},
	{gb, "gb"},
	{mb, "mb"},
	{kb, "kb"},
}

// Bytes renders a byte count. When human is false the raw int64 is returned.
// Otherwise the largest unit not exceeding |b| is used, rounded to two
// decimals with half-up rounding: 1536 -> "1.5kb", -2097152 -> "-2mb",
// 512 -> "512b".
func Bytes(b int64, human bool) any {
	if !human {
		return b
	}

	abs := b
	if abs < 0 {
		abs = -abs
	}

	for _, u := range units {
		if abs >= u.size {
			v := math.Floor(float64(b)/float64(u.size)*100+0.5) / 100
			return strconv.FormatFloat(v, 'f', -1, 64) + u.suffix
		}
	}

	return strconv.FormatInt(b, 10) + "b"
}
