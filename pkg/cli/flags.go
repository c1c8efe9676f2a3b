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
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/crashcap/pkg/config"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/serializer"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path or ConfigMap URI (cm://namespace/name); stdout when empty",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   fmt.Sprintf("Output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
)

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML or JSON config file",
			Sources: cli.EnvVars("CRASHCAP_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "directory",
			Aliases: []string{"d"},
			Usage:   "Base directory under which exceptions/ is created (default: working directory)",
			Sources: cli.EnvVars(config.EnvDirectory),
		},
		&cli.StringFlag{
			Name:    "app-name",
			Usage:   "Application name embedded in capture filenames",
			Sources: cli.EnvVars(config.EnvAppName),
		},
		&cli.StringFlag{
			Name:    "relay",
			Usage:   "Where captures are relayed: http(s)://, cm://namespace/name, oci://registry/repo or journal://",
			Sources: cli.EnvVars(config.EnvRelay),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "How long to wait for the relay before terminating",
			Sources: cli.EnvVars(config.EnvTimeout),
		},
		&cli.BoolFlag{
			Name:    "human-readable",
			Usage:   "Render byte counts with units",
			Sources: cli.EnvVars(config.EnvHumanReadable),
		},
		&cli.StringFlag{
			Name:    "heap-format",
			Usage:   fmt.Sprintf("Heap dump format (%s or %s)", config.HeapFormatPprof, config.HeapFormatDump),
			Sources: cli.EnvVars(config.EnvHeapFormat),
		},
		&cli.StringSliceFlag{
			Name:  "redact-env",
			Usage: "Glob pattern of environment variables to mask (can be repeated)",
		},
		&cli.StringFlag{
			Name:    "kubeconfig",
			Usage:   "Kubeconfig used by cm:// outputs and relays",
			Sources: cli.EnvVars(config.EnvKubeconfig),
		},
		&cli.BoolFlag{
			Name:  "plain-http",
			Usage: "Talk to OCI registries over plain HTTP",
		},
		&cli.BoolFlag{
			Name:  "insecure-tls",
			Usage: "Skip TLS certificate verification for relays",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars(config.EnvLogLevel),
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Also write logs to this file, rotated",
			Sources: cli.EnvVars(config.EnvLogFile),
		},
	}
}

// applyFlags overrides cfg with every flag explicitly set and re-validates.
func applyFlags(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("directory") {
		cfg.Directory = cmd.String("directory")
	}
	if cmd.IsSet("app-name") {
		cfg.AppName = cmd.String("app-name")
	}
	if cmd.IsSet("relay") {
		cfg.Relay = cmd.String("relay")
	}
	if cmd.IsSet("timeout") {
		cfg.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("human-readable") {
		cfg.HumanReadable = cmd.Bool("human-readable")
	}
	if cmd.IsSet("heap-format") {
		cfg.HeapFormat = cmd.String("heap-format")
	}
	if cmd.IsSet("redact-env") {
		cfg.RedactEnv = cmd.StringSlice("redact-env")
	}
	if cmd.IsSet("kubeconfig") {
		cfg.Kubeconfig = cmd.String("kubeconfig")
	}
	if cmd.IsSet("plain-http") {
		cfg.PlainHTTP = cmd.Bool("plain-http")
	}
	if cmd.IsSet("insecure-tls") {
		cfg.InsecureTLS = cmd.Bool("insecure-tls")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}
	return cfg.Validate()
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	format := serializer.Format(strings.ToLower(cmd.String("format")))
	if format.IsUnknown() {
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest, "unknown output format",
			map[string]any{"format": cmd.String("format")})
	}
	return format, nil
}
