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

package cli

import (
	"context"
	"strings"

	"github.com/NVIDIA/crashcap/pkg/serializer"
)

// serializerFor picks the destination of a command's output: the command
// writer when output is empty, a ConfigMap for cm:// URIs, a file otherwise.
func (a *app) serializerFor(format serializer.Format, output string) serializer.Serializer {
	output = strings.TrimSpace(output)
	switch {
	case output == "":
		return serializer.NewWriter(format, a.stdout)
	case strings.HasPrefix(output, serializer.ConfigMapURIScheme):
		namespace, cmName, err := serializer.ParseConfigMapURI(output)
		if err != nil {
			break
		}
		return serializer.NewConfigMapWriter(namespace, cmName, format,
			serializer.WithKubeconfig(a.cfg.Kubeconfig))
	}
	return serializer.NewFileWriterOrStdout(format, output)
}

// write serializes v to output and closes the destination.
func (a *app) write(ctx context.Context, format serializer.Format, output string, v any) error {
	s := a.serializerFor(format, output)
	if c, ok := s.(serializer.Closer); ok {
		defer func() {
			_ = c.Close()
		}()
	}
	return s.Serialize(ctx, v)
}
