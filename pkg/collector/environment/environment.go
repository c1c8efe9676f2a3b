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

package environment

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/NVIDIA/crashcap/pkg/measurement"
)

// Collector describes how the process was started: arguments, executable,
// working directory, environment and credentials.
type Collector struct {
	// Redact lists key patterns whose environment values are masked.
	Redact []string

	// Environ overrides os.Environ, for tests.
	Environ func() []string
}

// Collect builds the environment group. Values the platform cannot provide
// (gid/uid on Windows, an unresolvable executable) are omitted.
func (c *Collector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := measurement.NewBuilder(measurement.TypeEnvironment, false)
	b.Set("args", append([]string(nil), os.Args...))

	if exe, err := os.Executable(); err == nil {
		b.Set("executable", exe)
	} else {
		slog.Debug("failed to resolve executable", slog.String("error", err.Error()))
	}

	if wd, err := os.Getwd(); err == nil {
		b.Set("cwd", wd)
	} else {
		slog.Debug("failed to resolve working directory", slog.String("error", err.Error()))
	}

	environ := os.Environ
	if c.Environ != nil {
		environ = c.Environ
	}
	b.Set("env", measurement.Redact(ParseEnviron(environ()), c.Redact))

	gid := os.Getgid()
	b.SetIf("gid", gid, gid >= 0)
	uid := os.Getuid()
	b.SetIf("uid", uid, uid >= 0)

	return b.Build(), nil
}

// ParseEnviron turns KEY=value entries into a map. Entries without '=' map to
// an empty value; Windows per-drive entries ("=C:=C:\\") keep their leading
// '=' in the key. encoding/json writes map keys in sorted order.
func ParseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if kv == "" {
			continue
		}
		i := strings.Index(kv[1:], "=")
		if i < 0 {
			env[kv] = ""
			continue
		}
		env[kv[:i+1]] = kv[i+2:]
	}
	return env
}
