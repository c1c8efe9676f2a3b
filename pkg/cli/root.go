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
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/crashcap/pkg/config"
	"github.com/NVIDIA/crashcap/pkg/logging"
	"github.com/NVIDIA/crashcap/pkg/version"
)

const name = "crashcap"

var (
	// overridden during build with ldflags
	commit = "unknown"
	date   = "unknown"
)

// app carries state shared between the root hooks and the commands.
type app struct {
	cfg    *config.Config
	logs   io.Closer
	stdout io.Writer
}

// Execute runs the CLI with os.Args. It is called by main.main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ec cli.ExitCoder
		if stderrors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cli.Command {
	return (&app{stdout: stdout}).rootCmd()
}

func (a *app) rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               version.Library,
		EnableShellCompletion: true,
		Usage:                 "Capture, persist and relay process crash snapshots",
		Description: fmt.Sprintf(`crashcap - process crash capture

Version: %s
Commit:  %s
Built:   %s

Every setting can come from a YAML or JSON config file, CRASHCAP_* environment
variables or flags, in increasing order of precedence.`, version.Library, commit, date),
		Writer: a.stdout,
		Flags:  rootFlags(),
		Before: a.before,
		After:  a.after,
		// Exit codes are handled by Execute so tests never exit the process.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			a.snapshotCmd(),
			a.inspectCmd(),
			a.triggerCmd(),
		},
	}
}

// before resolves the configuration and installs the default logger.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return ctx, err
	}
	a.cfg = cfg

	a.logs = logging.SetDefaultStructuredLoggerWithFile(name, version.Library, cfg.LogLevel, cfg.LogFile)
	slog.Debug("starting",
		"name", name,
		"version", version.Library,
		"commit", commit,
		"date", date,
		"logLevel", cfg.LogLevel)
	return ctx, nil
}

func (a *app) after(context.Context, *cli.Command) error {
	if a.logs == nil {
		return nil
	}
	err := a.logs.Close()
	a.logs = nil
	return err
}
