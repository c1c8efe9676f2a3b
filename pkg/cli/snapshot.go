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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/crashcap/pkg/collector"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/snapshotter"
)

func (a *app) snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Print the snapshot a capture would contain right now",
		Description: `Collect the runtime, environment, repository, system and process groups of
this process, exactly as they would be recorded for a fault, without faulting.
The exception group carries the optional --message.

The snapshot can be output in JSON, YAML, or table format.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Message recorded in the exception group",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			s := &snapshotter.Snapshotter{
				Factory: collector.NewDefaultFactory(
					collector.WithHumanReadable(a.cfg.HumanReadable),
					collector.WithRedactEnv(a.cfg.RedactEnv),
				),
			}
			snap, err := s.Build(ctx, snapshotter.Input{Message: cmd.String("message")})
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, "failed to build snapshot", err)
			}
			return a.write(ctx, format, cmd.String("output"), snap)
		},
	}
}
