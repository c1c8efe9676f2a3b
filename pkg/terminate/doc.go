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

// Package terminate runs the save sequence of a capture.
//
// The sequence moves through capturing, persisting, relaying and terminated.
// Persistence is synchronous and unconditional. The relay then races a timer
// of the record's timeout; a once gate lets the first of the two decide the
// outcome and suppresses the other. Unless the caller supplies a completion
// callback, the process is aborted afterwards and never resumes.
package terminate
