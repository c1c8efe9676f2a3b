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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/crashcap/pkg/defaults"
	"github.com/NVIDIA/crashcap/pkg/errors"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, wd, cfg.Directory)
	assert.Equal(t, defaults.RelayTimeout, cfg.Timeout)
	assert.Equal(t, HeapFormatPprof, cfg.HeapFormat)
	assert.Equal(t, defaults.SignalDumpInterval, cfg.SignalDumpInterval)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join(wd, ExceptionsDirName), cfg.ExceptionsDir())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		EnvDirectory:          "/var/crash",
		EnvHumanReadable:      "yes",
		EnvTimeout:            "1s",
		EnvTimeoutMillis:      "250",
		EnvAppName:            "billing",
		EnvRelay:              "journal://",
		EnvHeapFormat:         "dump",
		EnvDisable:            "",
		EnvSignalDumpInterval: "1m",
		EnvCrashOutput:        "on",
		EnvRedactEnv:          "*TOKEN*, ,*SECRET*",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/var/crash", cfg.Directory)
	assert.True(t, cfg.HumanReadable)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout, "milliseconds win over the duration form")
	assert.Equal(t, "billing", cfg.AppName)
	assert.Equal(t, "journal://", cfg.Relay)
	assert.Equal(t, HeapFormatDump, cfg.HeapFormat)
	assert.True(t, cfg.Disabled, "a bare CRASHCAP_DISABLE disables capture")
	assert.Equal(t, time.Minute, cfg.SignalDumpInterval)
	assert.True(t, cfg.CrashOutput)
	assert.Equal(t, []string{"*TOKEN*", "*SECRET*"}, cfg.RedactEnv)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bool", EnvHumanReadable, "maybe"},
		{"duration", EnvTimeout, "soon"},
		{"millis", EnvTimeoutMillis, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().ApplyEnv(env(map[string]string{tt.key: tt.val}))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty directory", func(c *Config) { c.Directory = " " }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative interval", func(c *Config) { c.SignalDumpInterval = -time.Second }},
		{"heap format", func(c *Config) { c.HeapFormat = "hprof" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.True(t, errors.HasCode(cfg.Validate(), errors.ErrCodeInvalidRequest))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crashcap.yaml")
	content := "directory: " + dir + "\ntimeout: 2s\napp_name: api\nredact_env: [\"*KEY*\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(EnvAppName, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Directory)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "from-env", cfg.AppName, "environment overrides the file")
	assert.Equal(t, []string{"*KEY*"}, cfg.RedactEnv)
	assert.Equal(t, HeapFormatPprof, cfg.HeapFormat, "unset keys keep defaults")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 0s\n"), 0o600))
	_, err = Load(path)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, defaults.RelayTimeout, cfg.Timeout)
}

func TestIsProduction(t *testing.T) {
	assert.True(t, IsProduction(env(map[string]string{EnvEnvironment: "Production"})))
	assert.True(t, IsProduction(env(map[string]string{EnvGoEnvironment: "production"})))
	assert.False(t, IsProduction(env(map[string]string{EnvEnvironment: "dev", EnvGoEnvironment: "production"})))
	assert.False(t, IsProduction(env(nil)))
}
