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
	stderrors "errors"
	"io/fs"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/serializer"
	"github.com/NVIDIA/crashcap/pkg/snapshotter"
)

func (a *app) inspectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "inspect",
		EnableShellCompletion: true,
		Usage:                 "Render a persisted capture in another format",
		ArgsUsage:             "<capture.json>",
		Description: `Read a capture written to the exceptions directory and print it as JSON,
YAML or a flat table, or copy it to a ConfigMap:

  crashcap inspect exceptions/Mon-Jan-02-2006-4242-0.json --format table`,
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errors.New(errors.ErrCodeInvalidRequest, "capture file path is required")
			}
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			snap, err := serializer.FromFile[snapshotter.Snapshot](path)
			if stderrors.Is(err, fs.ErrNotExist) {
				return errors.WrapWithContext(errors.ErrCodeNotFound, "capture file not found", err,
					map[string]any{"path": path})
			}
			if err != nil {
				return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to read capture", err,
					map[string]any{"path": path})
			}
			return a.write(ctx, format, cmd.String("output"), snap)
		},
	}
}
