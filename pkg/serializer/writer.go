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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type
type Format string

const (
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
	// FormatTable outputs data in table format
	FormatTable Format = "table"
)

const defaultValueKey = "value"

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTable:
		return "txt"
	default:
		return "json"
	}
}

// SupportedFormats returns a list of all supported output formats
// for serialization.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
	}
}

func normalize(format Format) Format {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		return FormatJSON
	}
	return format
}

// Writer serializes values to an io.Writer.
type Writer struct {
	format Format
	output io.Writer
}

// NewWriter creates a new Writer with the specified format and output destination.
// If output is nil, os.Stdout will be used.
// If format is unknown, defaults to JSON format.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return &Writer{
		format: normalize(format),
		output: output,
	}
}

// Serialize writes v in the configured format.
func (w *Writer) Serialize(_ context.Context, v any) error {
	content, err := Marshal(w.format, v)
	if err != nil {
		return err
	}
	if _, err := w.output.Write(content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Marshal encodes v in format. JSON is indented by two spaces.
func Marshal(format Format, v any) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
		}
	case FormatTable:
		if err := writeTable(&buf, v); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return buf.Bytes(), nil
}

func writeTable(w io.Writer, v any) error {
	flat := make(map[string]any)
	flattenValue(flat, reflect.ValueOf(v), "")
	if len(flat) == 0 {
		_, err := fmt.Fprintln(w, "<empty>")
		return err
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	for _, key := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
	}
	return tw.Flush()
}

func flattenValue(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // remaining kinds are leaves
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			flattenValue(out, val.Field(i), joinKey(prefix, fieldName(field)))
		}
	case reflect.Map:
		for _, mapKey := range val.MapKeys() {
			flattenValue(out, val.MapIndex(mapKey), joinKey(prefix, fmt.Sprintf("%v", mapKey.Interface())))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			flattenValue(out, val.Index(i), joinKey(prefix, fmt.Sprintf("[%d]", i)))
		}
	default:
		if prefix == "" {
			prefix = defaultValueKey
		}
		out[prefix] = val.Interface()
	}
}

// fieldName prefers the json tag name of a struct field.
func fieldName(f reflect.StructField) string {
	if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
		return tag
	}
	return f.Name
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}
