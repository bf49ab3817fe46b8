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

// Package build submits the remote Cloud Build that builds and pushes the
// target generator image.
//
// For Artifact Registry the build pushes straight to the tagged reference.
// For Docker Hub the repository's pipeline descriptor (cloudbuild.yaml) is run
// with the image reference, the Docker Hub username and the Secret Manager
// secret id as substitutions, so the remote builder can log in and push.
// Missing descriptors fail the run before any remote call.
package build
