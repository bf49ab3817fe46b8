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

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	utilexec "k8s.io/utils/exec"
)

// Runner executes an external command and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// PathLooker resolves executables on PATH.
type PathLooker interface {
	LookPath(file string) (string, error)
}

// CommandError describes a command that ran and exited unsuccessfully,
// or that could not be started.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Cause    error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Name, strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
	}
	if e.Stderr != "" {
		return msg + ": " + lastLine(e.Stderr)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error {
	return e.Cause
}

// StderrContains reports whether err is a CommandError whose stderr
// contains any of the given substrings.
func StderrContains(err error, subs ...string) bool {
	var ce *CommandError
	if !errors.As(err, &ce) {
		return false
	}
	for _, s := range subs {
		if strings.Contains(ce.Stderr, s) {
			return true
		}
	}
	return false
}

// ExecRunner runs commands with k8s.io/utils/exec.
type ExecRunner struct {
	exec   utilexec.Interface
	stream io.Writer
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithExec overrides the exec implementation.
func WithExec(e utilexec.Interface) Option {
	return func(r *ExecRunner) {
		r.exec = e
	}
}

// WithStream mirrors command stderr to w while it is captured.
// gcloud and helm report progress on stderr.
func WithStream(w io.Writer) Option {
	return func(r *ExecRunner) {
		r.stream = w
	}
}

// NewExecRunner returns a Runner backed by the host's executables.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{exec: utilexec.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath implements PathLooker.
func (r *ExecRunner) LookPath(file string) (string, error) {
	return r.exec.LookPath(file)
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	slog.Debug("running command", "name", name, "args", args)

	cmd := r.exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.SetStdout(&stdout)
	if r.stream != nil {
		cmd.SetStderr(io.MultiWriter(&stderr, r.stream))
	} else {
		cmd.SetStderr(&stderr)
	}

	if err := cmd.Run(); err != nil {
		ce := &CommandError{
			Name:   name,
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Cause:  err,
		}
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) {
			ce.ExitCode = exitErr.ExitStatus()
		}
		return stdout.Bytes(), ce
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
