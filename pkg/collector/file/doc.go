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

// Package file parses the small line-oriented files crash collectors read:
// /etc/os-release, .git/HEAD, loose refs and .git/packed-refs.
//
// # Usage
//
// Key/value files:
//
//	p := file.NewParser(
//	    file.WithVTrimChars(`"'`),
//	    file.WithSkipEmptyValues(true),
//	)
//	release, err := p.GetMap("/etc/os-release")
//	// release["PRETTY_NAME"] == "Ubuntu 24.04 LTS"
//
// packed-refs, keyed by ref name:
//
//	p := file.NewParser(
//	    file.WithKVDelimiter(" "),
//	    file.WithCommentPrefixes("#", "^"),
//	    file.WithValueKeyed(true),
//	)
//	refs, err := p.GetMap(".git/packed-refs")
//	sha := refs["refs/heads/main"]
//
// # Error Handling
//
// Errors are wrapped with the path that failed. Callers in the collector
// packages treat every error as "field unavailable" and move on.
package file
