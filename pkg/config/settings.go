// Copyright (c) 2025, The amctl Authors.  All rights reserved.
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
	"strings"
	"unicode/utf8"

	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
)

// ParserOption configures a SettingsParser.
type ParserOption func(*SettingsParser)

// SettingsParser reads flat key/value settings files.
type SettingsParser struct {
	maxSize      int
	kvDelimiter  string
	skipComments bool
}

// WithMaxSize sets the maximum size (in bytes) of the settings file.
// Default is 1MB.
func WithMaxSize(size int) ParserOption {
	return func(p *SettingsParser) {
		p.maxSize = size
	}
}

// WithKVDelimiter sets the key/value separator.
// Default is "=".
func WithKVDelimiter(delim string) ParserOption {
	return func(p *SettingsParser) {
		p.kvDelimiter = delim
	}
}

// WithSkipComments sets whether lines starting with '#' or ';' are ignored.
// Default is true.
func WithSkipComments(skip bool) ParserOption {
	return func(p *SettingsParser) {
		p.skipComments = skip
	}
}

// NewSettingsParser creates a parser with the provided options.
func NewSettingsParser(opts ...ParserOption) *SettingsParser {
	p := &SettingsParser{
		maxSize:      1 << 20,
		kvDelimiter:  "=",
		skipComments: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Settings holds parsed entries in file order.
type Settings struct {
	entries []entry
}

type entry struct {
	key   string
	value string
}

// Get returns the value of the first line whose key matches exactly,
// or "" when no line matches.
func (s Settings) Get(key string) string {
	v, _ := s.Lookup(key)
	return v
}

// Lookup returns the first value for key and whether any line matched.
func (s Settings) Lookup(key string) (string, bool) {
	for _, e := range s.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// Len returns the number of parsed entries, duplicates included.
func (s Settings) Len() int {
	return len(s.entries)
}

// ParseFile reads the settings file at path.
// A missing or unreadable file is a ConfigError.
func (p *SettingsParser) ParseFile(path string) (Settings, error) {
	if path == "" {
		return Settings{}, apperrors.New(apperrors.ErrCodeConfig, "settings file path cannot be empty").
			WithRemediation("pass --config <file> or create %s", "config.ini")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, apperrors.Wrap(apperrors.ErrCodeConfig,
			fmt.Sprintf("failed to read settings file %q", path), err).
			WithRemediation("create %s (see config.ini.example) or pass --config <file>", path)
	}

	if len(b) > p.maxSize {
		return Settings{}, apperrors.New(apperrors.ErrCodeConfig,
			fmt.Sprintf("settings file %q exceeds maximum size of %d bytes", path, p.maxSize))
	}

	if !utf8.Valid(b) {
		return Settings{}, apperrors.New(apperrors.ErrCodeConfig,
			fmt.Sprintf("content of settings file %q is not valid UTF-8", path))
	}

	return p.Parse(string(b)), nil
}

// Parse splits content into entries. Each line is split on the first
// delimiter; key and value are trimmed. Section headers, comments and
// lines without a delimiter are ignored.
func (p *SettingsParser) Parse(content string) Settings {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	s := Settings{entries: make([]entry, 0, len(lines))}
	for _, line := range lines {
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}
		if strings.HasPrefix(clean, "[") && strings.HasSuffix(clean, "]") {
			continue
		}
		if p.skipComments && (strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, ";")) {
			continue
		}

		key, value, found := strings.Cut(clean, p.kvDelimiter)
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		s.entries = append(s.entries, entry{key: key, value: strings.TrimSpace(value)})
	}
	return s
}
