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

// Package serializer encodes captures and snapshots and delivers them to a
// destination.
//
// # Formats
//
//   - JSON: two-space indented, HTML characters unescaped. Used for capture files.
//   - YAML: two-space indented. Used for configuration and CLI output.
//   - Table: flattened dotted keys, sorted. Write-only.
//
// # Destinations
//
// Writer serializes to any io.Writer (stdout, files). HTTPWriter posts to a
// remote collector with a per-request X-Request-Id. ConfigMapWriter stores the
// payload in a Kubernetes ConfigMap addressed as cm://namespace/name.
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, "")
//	if err := w.Serialize(ctx, snap); err != nil {
//		return err
//	}
//
// WriteFileAtomic writes through a synced temporary file and a rename, so a
// reader either sees the previous content or the complete new content.
//
// # Reading
//
// FromFile and IntoFile decode a local JSON or YAML file, picking the format
// from the extension:
//
//	cfg, err := serializer.FromFile[Config]("crashcap.yaml")
package serializer
