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

// Package identity allocates capture ids and builds the collision-resistant
// base names used for every artifact of a capture.
//
// An Allocator is created once per output directory. It counts the records
// already persisted there and hands out increasing ids from that seed:
//
//	alloc, err := identity.NewAllocator("/var/crash/exceptions")
//	if err != nil {
//	    return err // directory could not be created
//	}
//	id := alloc.Next()
//	name := identity.Filename(time.Now(), "billing", os.Getpid(), id)
//	// Tue-Mar-04-2025-billing-4242-7
//
// The seed is not coordinated between processes. Filename embeds the pid and
// the date so that two processes starting from the same count still write
// different files.
package identity
