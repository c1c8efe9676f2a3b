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

// Package measurement defines the groups a crash snapshot is made of and the
// helpers collectors use to fill them.
//
// # Core Types
//
//   - Type: snapshot group name (runtime, environment, repository, system,
//     process, exception)
//   - Group: JSON-ready map holding a group's fields
//   - Measurement: a Type with its Group, returned by collectors
//
// # Building Groups
//
// Builders drop fields the platform could not provide instead of emitting
// zero values:
//
//	b := measurement.NewBuilder(measurement.TypeSystem, human)
//	b.SetString("hostname", host)
//	b.SetBytes("freemem", int64(vm.Free), err == nil)
//	m := b.Build()
//
// # Byte Formatting
//
// Bytes renders memory magnitudes either raw or with the largest fitting
// unit:
//
//	measurement.Bytes(1536, false)    // int64(1536)
//	measurement.Bytes(1536, true)     // "1.5kb"
//	measurement.Bytes(-2097152, true) // "-2mb"
//
// # Redaction
//
// Environment values can be masked by key pattern before they are written:
//
//	env = measurement.Redact(env, []string{"*TOKEN*", "*SECRET*", "AWS_*"})
package measurement
