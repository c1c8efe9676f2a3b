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

// Package git discovers version-control metadata for the running program.
//
// Resolve walks upward from a start directory until it finds a .git
// directory or reaches the filesystem root:
//
//	md := git.Resolve("")
//	md.Checkout() // "refs/heads/main"
//	md.SHA1()     // "4b825dc642cb6eb9a060e54bf8d69288fbee4904"
//
// The sections of .git/config form the base of the result, so remotes and
// branch tracking show up next to checkout and sha1. Loose refs are preferred
// and packed-refs is consulted when the loose file is missing. A detached
// HEAD yields only sha1.
//
// Every failure is swallowed. Missing files omit their field, a malformed
// config leaves an empty base and a tree without a repository produces an
// empty map.
package git
