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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/errors"
	"github.com/NVIDIA/crashcap/pkg/serializer"
)

// ExceptionsDirName is the directory created under Directory for captures.
const ExceptionsDirName = "exceptions"

// Environment variables read by ApplyEnv.
const (
	EnvDirectory          = "CRASHCAP_DIRECTORY"
	EnvHumanReadable      = "CRASHCAP_HUMAN_READABLE"
	EnvTimeout            = "CRASHCAP_TIMEOUT"
	EnvTimeoutMillis      = "CRASHCAP_TIMEOUT_MS"
	EnvAppName            = "CRASHCAP_APP_NAME"
	EnvRelay              = "CRASHCAP_RELAY"
	EnvHeapFormat         = "CRASHCAP_HEAP_FORMAT"
	EnvDisable            = "CRASHCAP_DISABLE"
	EnvSignalDumpInterval = "CRASHCAP_SIGNAL_DUMP_INTERVAL"
	EnvCrashOutput        = "CRASHCAP_CRASH_OUTPUT"
	EnvLogLevel           = "CRASHCAP_LOG_LEVEL"
	EnvLogFile            = "CRASHCAP_LOG_FILE"
	EnvRedactEnv          = "CRASHCAP_REDACT_ENV"
	EnvKubeconfig         = "CRASHCAP_KUBECONFIG"
	EnvEnvironment        = "CRASHCAP_ENV"
	EnvGoEnvironment      = "GO_ENV"
)

// Heap dump formats.
const (
	HeapFormatPprof = "pprof"
	HeapFormatDump  = "dump"
)

// Config is everything crashcap reads from files, the environment and flags.
type Config struct {
	// Directory is the base under which exceptions/ is created.
	Directory string `json:"directory" yaml:"directory"`
	// HumanReadable renders byte counts with units.
	HumanReadable bool `json:"human_readable" yaml:"human_readable"`
	// Timeout bounds the remote relay before the process is aborted anyway.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// AppName is embedded in capture filenames.
	AppName string `json:"app_name" yaml:"app_name"`
	// Relay is the reporter URI; empty disables relaying.
	Relay string `json:"relay" yaml:"relay"`
	// HeapFormat is pprof or dump.
	HeapFormat string `json:"heap_format" yaml:"heap_format"`
	// Disabled turns capture off; faults propagate untouched.
	Disabled bool `json:"disabled" yaml:"disabled"`
	// SignalDumpInterval is the minimum gap between signal triggered heap dumps.
	SignalDumpInterval time.Duration `json:"signal_dump_interval" yaml:"signal_dump_interval"`
	// CrashOutput mirrors fatal runtime errors into exceptions/.
	CrashOutput bool `json:"crash_output" yaml:"crash_output"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `json:"log_level" yaml:"log_level"`
	// LogFile additionally writes logs to a rotated file.
	LogFile string `json:"log_file" yaml:"log_file"`
	// RedactEnv lists glob patterns of environment variables whose values are masked.
	RedactEnv []string `json:"redact_env" yaml:"redact_env"`
	// Kubeconfig is used by the cm:// relay.
	Kubeconfig string `json:"kubeconfig" yaml:"kubeconfig"`
	// PlainHTTP talks to OCI registries without TLS.
	PlainHTTP bool `json:"plain_http" yaml:"plain_http"`
	// InsecureTLS skips certificate verification for relays.
	InsecureTLS bool `json:"insecure_tls" yaml:"insecure_tls"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &Config{
		Directory:          dir,
		Timeout:            defaults.RelayTimeout,
		HeapFormat:         HeapFormatPprof,
		SignalDumpInterval: defaults.SignalDumpInterval,
		LogLevel:           "info",
	}
}

// Load reads path over the defaults (when path is not empty), applies the
// environment and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := serializer.IntoFile(path, cfg); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				"failed to load config", err, map[string]any{"path": path})
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CRASHCAP_* variables found through lookup.
// CRASHCAP_TIMEOUT_MS wins over CRASHCAP_TIMEOUT.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || err != nil {
			return
		}
		b, perr := ParseBool(v)
		if perr != nil {
			err = invalidEnv(key, v, perr)
			return
		}
		*dst = b
	}
	duration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || err != nil {
			return
		}
		d, perr := time.ParseDuration(strings.TrimSpace(v))
		if perr != nil {
			err = invalidEnv(key, v, perr)
			return
		}
		*dst = d
	}

	str(EnvDirectory, &c.Directory)
	str(EnvAppName, &c.AppName)
	str(EnvRelay, &c.Relay)
	str(EnvHeapFormat, &c.HeapFormat)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvLogFile, &c.LogFile)
	str(EnvKubeconfig, &c.Kubeconfig)
	boolean(EnvHumanReadable, &c.HumanReadable)
	boolean(EnvDisable, &c.Disabled)
	boolean(EnvCrashOutput, &c.CrashOutput)
	duration(EnvTimeout, &c.Timeout)
	duration(EnvSignalDumpInterval, &c.SignalDumpInterval)

	if v, ok := lookup(EnvTimeoutMillis); ok && err == nil {
		ms, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if perr != nil {
			err = invalidEnv(EnvTimeoutMillis, v, perr)
		} else {
			c.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := lookup(EnvRedactEnv); ok {
		c.RedactEnv = SplitList(v)
	}
	return err
}

func invalidEnv(key, value string, cause error) error {
	return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid environment value", cause,
		map[string]any{"key": key, "value": value})
}

// Validate checks field values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "directory cannot be empty")
	}
	if c.Timeout <= 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "timeout must be positive",
			map[string]any{"timeout": c.Timeout.String()})
	}
	if c.SignalDumpInterval < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "signal_dump_interval cannot be negative")
	}
	switch strings.ToLower(c.HeapFormat) {
	case HeapFormatPprof, HeapFormatDump, "":
	default:
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "unsupported heap_format",
			map[string]any{"heap_format": c.HeapFormat})
	}
	return nil
}

// ExceptionsDir returns <Directory>/exceptions as an absolute path.
func (c *Config) ExceptionsDir() string {
	dir := c.Directory
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Join(dir, ExceptionsDirName)
}

// IsProduction reports whether CRASHCAP_ENV, or failing that GO_ENV, is "production".
func IsProduction(lookup func(string) (string, bool)) bool {
	for _, key := range []string{EnvEnvironment, EnvGoEnvironment} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.EqualFold(strings.TrimSpace(v), "production")
		}
	}
	return false
}

// ParseBool accepts the usual spellings of a boolean switch, including
// yes/no and on/off. An empty value counts as true so that a bare
// CRASHCAP_DISABLE= disables capture.
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", v)
	}
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
