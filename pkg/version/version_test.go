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

package version

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr error
	}{
		{name: "full", input: "1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3, Precision: 3}},
		{name: "v prefix", input: "v4.5.6", want: Version{Major: 4, Minor: 5, Patch: 6, Precision: 3}},
		{name: "major only", input: "7", want: Version{Major: 7, Precision: 1}},
		{name: "with extras", input: "v0.1.0-rc.1", want: Version{Major: 0, Minor: 1, Precision: 3, Extras: "-rc.1"}},
		{name: "empty", input: "", wantErr: ErrEmptyVersion},
		{name: "too many", input: "1.2.3.4", wantErr: ErrTooManyComponents},
		{name: "non numeric", input: "dev", wantErr: ErrNonNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseVersion(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMajorOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v2.4.1", "2"},
		{"0.1.0", "0"},
		{"dev", "dev"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := MajorOf(tt.in); got != tt.want {
			t.Errorf("MajorOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
