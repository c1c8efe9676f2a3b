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

import "testing"

func TestBytes(t *testing.T) {
	tests := []struct {
		name  string
		in    int64
		human bool
		want  any
	}{
		{name: "raw", in: 1536, human: false, want: int64(1536)},
		{name: "raw negative", in: -7, human: false, want: int64(-7)},
		{name: "kilobytes", in: 1536, human: true, want: "1.5kb"},
		{name: "negative megabytes", in: -2097152, human: true, want: "-2mb"},
		{name: "below a kilobyte", in: 512, human: true, want: "512b"},
		{name: "zero", in: 0, human: true, want: "0b"},
		{name: "exact kilobyte", in: 1024, human: true, want: "1kb"},
		{name: "gigabytes", in: 3 << 30, human: true, want: "3gb"},
		{name: "terabytes", in: 5 << 40, human: true, want: "5tb"},
		{name: "rounds half up", in: 1029, human: true, want: "1kb"},
		{name: "two decimals", in: 1300, human: true, want: "1.27kb"},
		{name: "just below megabyte", in: (1 << 20) - 1, human: true, want: "1024kb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bytes(tt.in, tt.human); got != tt.want {
				t.Errorf("Bytes(%d, %v) = %#v, want %#v", tt.in, tt.human, got, tt.want)
			}
		})
	}
}
