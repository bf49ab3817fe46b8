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
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const defaultFileMode os.FileMode = 0o644

// FileWriter replaces a file atomically: content goes to a temporary file in
// the same directory which is then renamed over the target. Readers never
// observe a partially written file.
type FileWriter struct {
	path   string
	format Format
	mode   os.FileMode
}

// NewFileWriter returns a FileWriter for path.
func NewFileWriter(format Format, path string) *FileWriter {
	return &FileWriter{
		path:   path,
		format: normalize(format),
		mode:   defaultFileMode,
	}
}

// Path returns the target file path.
func (w *FileWriter) Path() string {
	return w.path
}

// Serialize writes v to the target file.
func (w *FileWriter) Serialize(_ context.Context, v any) error {
	content, err := Marshal(w.format, v)
	if err != nil {
		return err
	}
	return WriteFileAtomic(w.path, content, w.mode)
}

// WriteFileAtomic writes data to path through a temporary file and rename.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
