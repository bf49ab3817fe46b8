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

// Package registry provisions the container image destination.
//
// Two mutually exclusive backends are supported:
//
//   - Artifact Registry: read-then-create of a docker-format repository
//     identified by (name, region). Images are published as
//     {region}-docker.pkg.dev/{project}/{repository}/{image}:{tag}.
//   - Docker Hub: validation only; the repository and the access token
//     secret exist beforehand. Images are published as
//     {username}/{image}:{tag}.
//
// Target carries both the tagged reference (build output) and the untagged
// reference (release image.repository value).
package registry
