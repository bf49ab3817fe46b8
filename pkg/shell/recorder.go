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
	"context"
	"strings"
	"sync"
)

// Call is one recorded command invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Recorder is a Runner that records calls and answers them with Handler.
// A nil Handler succeeds with empty output.
type Recorder struct {
	Handler func(call Call) ([]byte, error)

	mu    sync.Mutex
	calls []Call
}

// Run implements Runner.
func (r *Recorder) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if r.Handler == nil {
		return nil, nil
	}
	return r.Handler(call)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsWithPrefix returns the recorded calls whose command line starts with prefix.
func (r *Recorder) CallsWithPrefix(prefix string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if strings.HasPrefix(c.String(), prefix) {
			out = append(out, c)
		}
	}
	return out
}
