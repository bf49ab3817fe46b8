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

// Package config loads the amctl settings file into an immutable DeploymentConfig.
//
// The settings file is flat key/value text:
//
//	[gcp]
//	project_id = my-project
//	region=us-central1
//
//	[registry]
//	registry_type = dockerhub
//	dockerhub_username = alice
//	dockerhub_secret_id = dockerhub-token
//
// Keys match exactly on the text before the first '='. Values are trimmed.
// The first matching line wins, unknown keys are ignored and section
// headers are cosmetic.
//
// The registry backend is an enumerated variant: ArtifactRegistry or
// DockerHub, each carrying only the fields it needs. Validate reports the
// first required field that is empty or still a placeholder.
package config
