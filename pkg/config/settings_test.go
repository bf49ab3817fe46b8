package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
)

func TestNewSettingsParser(t *testing.T) {
	p := NewSettingsParser()
	assert.Equal(t, 1<<20, p.maxSize)
	assert.Equal(t, "=", p.kvDelimiter)
	assert.True(t, p.skipComments)

	p = NewSettingsParser(WithMaxSize(10), WithKVDelimiter(":"), WithSkipComments(false))
	assert.Equal(t, 10, p.maxSize)
	assert.Equal(t, ":", p.kvDelimiter)
	assert.False(t, p.skipComments)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		want    string
		found   bool
	}{
		{name: "spaced separator", content: "key = value\nother=1\n", key: "key", want: "value", found: true},
		{name: "tight separator", content: "key = value\nother=1\n", key: "other", want: "1", found: true},
		{name: "absent key", content: "key = value\n", key: "missing", want: "", found: false},
		{name: "first match wins", content: "region = us-east1\nregion = europe-west1\n", key: "region", want: "us-east1", found: true},
		{name: "value keeps later separators", content: "sub = a=b=c\n", key: "sub", want: "a=b=c", found: true},
		{name: "surrounding whitespace", content: "   image_tag   =    v1   \n", key: "image_tag", want: "v1", found: true},
		{name: "section headers ignored", content: "[gcp]\nproject_id = p1\n[registry]\n", key: "project_id", want: "p1", found: true},
		{name: "comments ignored", content: "# project_id = commented\nproject_id = real\n", key: "project_id", want: "real", found: true},
		{name: "semicolon comments ignored", content: "; project_id = commented\n", key: "project_id", want: "", found: false},
		{name: "empty value present", content: "image_tag =\n", key: "image_tag", want: "", found: true},
		{name: "line without separator", content: "project_id\n", key: "project_id", want: "", found: false},
		{name: "exact key match only", content: "project_id_old = x\n", key: "project_id", want: "", found: false},
		{name: "crlf line endings", content: "a = 1\r\nb = 2\r\n", key: "b", want: "2", found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettingsParser().Parse(tt.content)
			got, found := s.Lookup(tt.key)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, s.Get(tt.key))
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.ini")
		require.NoError(t, os.WriteFile(path, []byte("[gcp]\nproject_id = p1\n"), 0o600))

		s, err := NewSettingsParser().ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, "p1", s.Get("project_id"))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		_, err := NewSettingsParser().ParseFile(filepath.Join(t.TempDir(), "nope.ini"))
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfig, apperrors.CodeOf(err))
		assert.NotEmpty(t, apperrors.RemediationOf(err))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSettingsParser().ParseFile("")
		assert.Equal(t, apperrors.ErrCodeConfig, apperrors.CodeOf(err))
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.ini")
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a = b\n", 10)), 0o600))
		_, err := NewSettingsParser(WithMaxSize(8)).ParseFile(path)
		assert.Equal(t, apperrors.ErrCodeConfig, apperrors.CodeOf(err))
	})

	t.Run("invalid utf8", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.ini")
		require.NoError(t, os.WriteFile(path, []byte{'a', '=', 0xff, 0xfe}, 0o600))
		_, err := NewSettingsParser().ParseFile(path)
		assert.Equal(t, apperrors.ErrCodeConfig, apperrors.CodeOf(err))
	})
}

// sanitizeKey turns arbitrary input into a key the file grammar can carry.
func sanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "k"
	}
	return b.String()
}

func sanitizeValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

func TestParsePropertyRoundTrip(t *testing.T) {
	prop := func(rawKey, rawValue string, leftPad, rightPad uint8) bool {
		key := sanitizeKey(rawKey)
		value := sanitizeValue(rawValue)
		line := key + strings.Repeat(" ", int(leftPad%4)) + "=" + strings.Repeat(" ", int(rightPad%4)) + value
		s := NewSettingsParser().Parse(line + "\n")
		return s.Get(key) == strings.TrimSpace(value)
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func TestParsePropertyFirstMatchWins(t *testing.T) {
	prop := func(rawKey, first, second string) bool {
		key := sanitizeKey(rawKey)
		content := key + " = " + sanitizeValue(first) + "\n" + key + "=" + sanitizeValue(second) + "\n"
		return NewSettingsParser().Parse(content).Get(key) == strings.TrimSpace(sanitizeValue(first))
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}

func FuzzParse(f *testing.F) {
	f.Add("key = value\nother=1\n")
	f.Add("[section]\n# comment\nproject_id=p1\n")
	f.Add("a==b\n=\n")
	f.Fuzz(func(t *testing.T, content string) {
		s := NewSettingsParser().Parse(content)
		for _, e := range s.entries {
			if e.key == "" {
				t.Fatalf("parsed empty key from %q", content)
			}
			if e.key != strings.TrimSpace(e.key) || e.value != strings.TrimSpace(e.value) {
				t.Fatalf("untrimmed entry %+v", e)
			}
			if got := s.Get(e.key); got != firstValue(s, e.key) {
				t.Fatalf("Get(%q) = %q, want first match", e.key, got)
			}
		}
	})
}

func firstValue(s Settings, key string) string {
	for _, e := range s.entries {
		if e.key == key {
			return e.value
		}
	}
	return ""
}
