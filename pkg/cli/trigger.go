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
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/fault"
)

const (
	triggerPanic = "panic"
	triggerError = "error"
)

func (a *app) triggerCmd() *cli.Command {
	return &cli.Command{
		Name:                  "trigger",
		EnableShellCompletion: true,
		Usage:                 "Raise a fault and capture it end to end",
		Description: `Raise a panic (or report an error) inside a process with capture enabled,
to check where captures land and that the relay is reachable:

  crashcap trigger --relay http://collector:8080/crashes --no-abort

Without --no-abort the process aborts once the capture is saved, the same as
a real fault. With --wait the process first listens for the heap dump signal
(SIGUSR1) for that long.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Value: triggerPanic,
				Usage: fmt.Sprintf("How the fault is raised (%s or %s)", triggerPanic, triggerError),
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Value:   "crashcap trigger",
				Usage:   "Fault message",
			},
			&cli.BoolFlag{
				Name:  "no-abort",
				Usage: "Exit with status 1 instead of aborting after the capture is saved",
			},
			&cli.DurationFlag{
				Name:  "wait",
				Usage: "Listen for heap dump signals this long before raising the fault",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mode := cmd.String("mode")
			if mode != triggerPanic && mode != triggerError {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest, "unknown trigger mode",
					map[string]any{"mode": mode})
			}

			var opts []fault.Option
			var relayErr error
			if cmd.Bool("no-abort") {
				opts = append(opts, fault.WithDone(func(err error) { relayErr = err }))
			}

			l, err := fault.New(a.cfg, opts...)
			if err != nil {
				return err
			}
			defer l.Close()

			if wait := cmd.Duration("wait"); wait > 0 {
				if err := l.Listen(ctx); err != nil {
					return err
				}
				slog.Info("waiting for heap dump signals", "wait", wait.String())
				select {
				case <-ctx.Done():
				case <-time.After(wait):
				}
			}

			msg := cmd.String("message")
			if mode == triggerError {
				rec, err := l.Capture(ctx, stderrors.New(msg))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "captured %s in %s\n", rec.Filename, l.Dir())
			} else {
				func() {
					defer l.Recover()
					panic(msg)
				}()
				fmt.Fprintf(a.stdout, "captured panic in %s\n", l.Dir())
			}

			if relayErr != nil {
				slog.Warn("relay failed", "error", relayErr)
			}
			return cli.Exit("fault captured", 1)
		},
	}
}
