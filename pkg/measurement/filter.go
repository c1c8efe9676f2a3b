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

import "strings"

// RedactedValue replaces values whose key matches a redaction pattern.
const RedactedValue = "<redacted>"

// Redact returns a copy of values in which every key matching one of patterns
// has its value replaced with RedactedValue. Keys are kept so the snapshot
// still shows which variables were set.
//
// Patterns support wildcards:
//   - "prefix*" matches keys starting with "prefix"
//   - "*suffix" matches keys ending with "suffix"
//   - "*contains*" matches keys containing "contains"
//   - "exact" matches keys exactly
//
// Matching is case-insensitive.
func Redact(values map[string]string, patterns []string) map[string]string {
	result := make(map[string]string, len(values))
	for key, value := range values {
		if MatchAny(key, patterns) {
			value = RedactedValue
		}
		result[key] = value
	}
	return result
}

// MatchAny reports whether key matches at least one pattern.
func MatchAny(key string, patterns []string) bool {
	for _, p := range patterns {
		if matchesPattern(strings.ToUpper(key), strings.ToUpper(p)) {
			return true
		}
	}
	return false
}

// matchesPattern supports multiple wildcard segments, e.g. "a*b*c" matches "aXbYc".
func matchesPattern(key, pattern string) bool {
	if pattern == "" {
		return false
	}
	if !strings.Contains(pattern, "*") {
		return key == pattern
	}

	segments := strings.Split(pattern, "*")
	pos := 0
	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == 0 {
			if !strings.HasPrefix(key, segment) {
				return false
			}
			pos = len(segment)
			continue
		}

		if i == len(segments)-1 {
			return len(key)-pos >= len(segment) && strings.HasSuffix(key[pos:], segment)
		}

		idx := strings.Index(key[pos:], segment)
		if idx == -1 {
			return false
		}
		pos += idx + len(segment)
	}

	return true
}
