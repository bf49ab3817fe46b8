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

// Package defaults provides centralized configuration constants for amctl.
//
// This package defines settings file defaults, descriptor file names, the
// external tools each pipeline needs, and the fixed IAM roles and Kubernetes
// names used by workload identity federation. Centralizing these values keeps
// the deploy and link pipelines consistent with the chart they install.
package defaults
