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

// Package capture turns a fault into a Record: an id, a filename and a
// snapshot of the process computed exactly once.
//
//	alloc, _ := identity.NewAllocator(dir)
//	rec, err := capture.New(ctx, capture.FromPanic(v), capture.Options{
//	    Allocator: alloc,
//	    AppName:   "billing",
//	})
//
// A Record is itself an error: Error returns the fault message, StackTrace
// the stack lines and Unwrap the original fault. MarshalJSON renders the
// cached snapshot, so console output, the file on disk and the relayed copy
// are always the same document.
package capture
