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

package git

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/crashcap/pkg/collector/file"
	"github.com/NVIDIA/crashcap/pkg/measurement"

	"gopkg.in/ini.v1"
)

// Keys added on top of the config sections.
const (
	KeyCheckout = "checkout"
	KeySHA1     = "sha1"
)

const (
	dirName    = ".git"
	headFile   = "HEAD"
	configFile = "config"
	packedRefs = "packed-refs"
	refPrefix  = "ref: "
	shaLength  = 40
)

// Metadata is the repository description stored in a snapshot: the sections
// of .git/config as the base, plus checkout and sha1 when they resolve.
type Metadata map[string]any

// Checkout returns the symbolic ref HEAD points at, if any.
func (m Metadata) Checkout() string {
	s, _ := m[KeyCheckout].(string)
	return s
}

// SHA1 returns the resolved commit id, if any.
func (m Metadata) SHA1() string {
	s, _ := m[KeySHA1].(string)
	return s
}

// Resolve walks from startDir towards the filesystem root looking for a .git
// directory and describes the first one found. It never fails: unreadable
// files omit their fields and a tree without a repository yields an empty
// Metadata.
func Resolve(startDir string) Metadata {
	dir := startDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			slog.Debug("failed to determine working directory", slog.String("error", err.Error()))
			return Metadata{}
		}
		dir = wd
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return Metadata{}
	}

	for {
		dot := filepath.Join(dir, dirName)
		fi, err := os.Lstat(dot)
		switch {
		case err == nil && fi.IsDir():
			return read(dot)
		case err != nil && !os.IsNotExist(err):
			// transient or permission error: keep walking
			slog.Debug("skipping unreadable path", slog.String("path", dot), slog.String("error", err.Error()))
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Metadata{}
		}
		dir = parent
	}
}

func read(dot string) Metadata {
	data := readConfig(filepath.Join(dot, configFile))
	parser := file.NewParser(file.WithCommentPrefixes())

	head, err := parser.GetFirstLine(filepath.Join(dot, headFile))
	if err != nil {
		slog.Debug("failed to read HEAD", slog.String("error", err.Error()))
		return data
	}

	if !strings.HasPrefix(head, refPrefix) {
		// detached HEAD holds the commit id itself
		if isSHA(head) {
			data[KeySHA1] = head
		}
		return data
	}

	checkout := strings.TrimSpace(head[len(refPrefix):])
	if checkout == "" {
		return data
	}
	data[KeyCheckout] = checkout

	if sha := resolveRef(dot, checkout, parser); sha != "" {
		data[KeySHA1] = sha
	}
	return data
}

func resolveRef(dot, ref string, parser *file.Parser) string {
	local := filepath.FromSlash(ref)
	if !filepath.IsLocal(local) {
		slog.Debug("ignoring ref outside repository", slog.String("ref", ref))
		return ""
	}

	sha, err := parser.GetFirstLine(filepath.Join(dot, local))
	if err == nil {
		return sha
	}

	refs, perr := file.NewParser(
		file.WithKVDelimiter(" "),
		file.WithCommentPrefixes("#", "^"),
		file.WithValueKeyed(true),
	).GetMap(filepath.Join(dot, packedRefs))
	if perr != nil {
		slog.Debug("failed to resolve ref",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
			slog.String("packed_error", perr.Error()))
		return ""
	}
	return refs[ref]
}

// readConfig parses .git/config into section -> key -> value. Parse
// failures produce an empty base.
func readConfig(path string) Metadata {
	data := Metadata{}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		Loose:                    true,
		AllowBooleanKeys:         true,
		AllowShadows:             true,
		SpaceBeforeInlineComment: true,
	}, path)
	if err != nil {
		slog.Debug("failed to parse git config", slog.String("path", path), slog.String("error", err.Error()))
		return data
	}

	for _, section := range cfg.Sections() {
		keys := section.KeysHash()
		if section.Name() == ini.DefaultSection {
			for k, v := range keys {
				data[k] = v
			}
			continue
		}
		data[section.Name()] = keys
	}

	return data
}

func isSHA(s string) bool {
	if len(s) != shaLength {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

// Collector fills the repository group of a snapshot.
type Collector struct {
	// WorkDir is where the upward walk starts. Empty means the process
	// working directory.
	WorkDir string
}

// Collect resolves repository metadata. It never returns an error; an absent
// repository yields an empty group.
func (c *Collector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	md := Resolve(c.WorkDir)
	return &measurement.Measurement{
		Type: measurement.TypeRepository,
		Data: measurement.Group(md),
	}, nil
}
