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

// Package oci pushes captures to OCI registries with ORAS.
//
// A capture becomes a single-layer OCI 1.1 artifact whose manifest carries
// ArtifactType and whose layer is the capture JSON:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/acme/crashes:billing-1-0")
//	if err != nil {
//		return err
//	}
//	res, err := oci.PushBytes(ctx, ref, data, oci.PushOptions{Title: "billing-1-0.json"})
//
// Credentials come from the Docker credential store when present.
package oci
