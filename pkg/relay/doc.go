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

// Package relay hands captures to a remote collector.
//
// Relay.Send is a scheduling boundary: the reporter always runs on its own
// goroutine and the completion callback fires exactly once, even when the
// reporter panics. Reporters are picked by URI:
//
//	r, err := relay.NewReporter("https://collector.example.com/v1/crashes", relay.Options{})
//	if err != nil {
//		return err
//	}
//	relay.New(r).Send(ctx, rec, func(err error) { ... })
//
// Supported schemes are http(s)://, cm://namespace/name, oci://registry/repo[:tag]
// and journal://. An empty URI disables relaying; Send then completes with nil.
package relay
