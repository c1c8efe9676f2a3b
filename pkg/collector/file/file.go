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

package file

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// Option configures a Parser.
type Option func(*Parser)

// Parser reads small line-oriented metadata files (os-release, git
// packed-refs, HEAD pointers) into lines or key/value maps.
type Parser struct {
	delimiter       string
	maxSize         int
	commentPrefixes []string
	kvDelimiter     string
	vTrimChars      string
	skipEmptyValues bool
	valueKeyed      bool
}

// WithDelimiter sets the entry delimiter. Default is newline.
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delimiter = delim
	}
}

// WithMaxSize sets the largest file, in bytes, the parser accepts.
// Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithCommentPrefixes sets the prefixes of lines that are dropped.
// Default is "#". Passing no prefixes keeps every line.
func WithCommentPrefixes(prefixes ...string) Option {
	return func(p *Parser) {
		p.commentPrefixes = prefixes
	}
}

// WithKVDelimiter sets the key/value separator used by GetMap.
// Default is "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithVTrimChars sets characters trimmed from both ends of values.
func WithVTrimChars(trimChars string) Option {
	return func(p *Parser) {
		p.vTrimChars = trimChars
	}
}

// WithSkipEmptyValues drops entries whose value is empty or missing.
func WithSkipEmptyValues(skip bool) Option {
	return func(p *Parser) {
		p.skipEmptyValues = skip
	}
}

// WithValueKeyed indexes GetMap by the second field instead of the first.
// packed-refs lines are "<sha1> <ref>" but are looked up by ref.
func WithValueKeyed(v bool) Option {
	return func(p *Parser) {
		p.valueKeyed = v
	}
}

// NewParser creates a parser. Defaults: newline delimiter, 1MB limit,
// "#" comments, "=" key/value separator.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		delimiter:       "\n",
		maxSize:         1 << 20,
		commentPrefixes: []string{"#"},
		kvDelimiter:     "=",
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetMap reads path and splits each line into a key and a value.
// Lines without the separator map to an empty value unless empty values are
// skipped. Later duplicates win.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	lines, err := p.GetLines(path)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, p.kvDelimiter)
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}

		if p.skipEmptyValues && (!found || value == "") {
			slog.Debug("skipping entry without value", "path", path, "key", key)
			continue
		}

		if p.valueKeyed {
			key, value = value, key
		}
		result[key] = value
	}

	return result, nil
}

// GetLines reads path and returns its trimmed, non-empty, non-comment
// entries. It fails when the file cannot be read, is larger than the
// configured limit or is not valid UTF-8.
func (p *Parser) GetLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	if len(b) > p.maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, p.maxSize)
	}

	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of file %q is not valid UTF-8", path)
	}

	parts := strings.Split(string(b), p.delimiter)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		line := strings.TrimSpace(part)
		if line == "" || p.isComment(line) {
			continue
		}
		result = append(result, line)
	}

	return result, nil
}

// GetFirstLine returns the first entry of path, as used for single-value
// pointer files such as .git/HEAD or a loose ref.
func (p *Parser) GetFirstLine(path string) (string, error) {
	lines, err := p.GetLines(path)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("file %q is empty", path)
	}
	return lines[0], nil
}

func (p *Parser) isComment(line string) bool {
	for _, prefix := range p.commentPrefixes {
		if prefix != "" && strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
