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

// Package shell runs the external tools amctl drives (gcloud, helm).
//
// Runner is the seam every component uses for remote calls; ExecRunner is
// the production implementation on top of k8s.io/utils/exec and Recorder is
// an in-memory implementation for tests. Failures are reported as
// CommandError carrying the exit code and captured stderr, so callers can
// tell "not found" responses apart from real failures.
package shell
