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

package config

import (
	"log/slog"

	"github.com/apigee-monitor/amctl/pkg/defaults"
)

// Load reads the settings file at path and builds a DeploymentConfig.
// Keys that are absent or blank fall back to their documented defaults;
// project_id and the Docker Hub fields have none. Load does not check
// for required fields; call Validate for that.
func Load(path string) (*DeploymentConfig, error) {
	settings, err := NewSettingsParser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	return FromSettings(path, settings)
}

// FromSettings builds a DeploymentConfig from parsed settings.
func FromSettings(source string, s Settings) (*DeploymentConfig, error) {
	kind, err := ParseBackendKind(s.Get(KeyRegistryType))
	if err != nil {
		return nil, err
	}

	region := orDefault(s.Get(KeyRegion), defaults.Region)

	var backend Backend
	switch kind {
	case BackendArtifactRegistry:
		backend = ArtifactRegistry{
			Region:     region,
			Repository: orDefault(s.Get(KeyRepositoryName), defaults.RepositoryName),
		}
	case BackendDockerHub:
		backend = DockerHub{
			Username: s.Get(KeyDockerHubUsername),
			SecretID: s.Get(KeyDockerHubSecretID),
		}
	}

	cfg := NewDeploymentConfig(
		WithSource(source),
		WithBackend(backend),
		WithProjectID(s.Get(KeyProjectID)),
		WithImage(
			orDefault(s.Get(KeyImageName), defaults.ImageName),
			orDefault(s.Get(KeyImageTag), defaults.ImageTag),
		),
		WithRelease(
			orDefault(s.Get(KeyReleaseName), defaults.ReleaseName),
			orDefault(s.Get(KeyChartPath), defaults.ChartPath),
			orDefault(s.Get(KeyNamespace), defaults.Namespace),
		),
		WithIngressServiceName(orDefault(s.Get(KeyIngressServiceName), defaults.IngressServiceName)),
		WithGSAName(orDefault(s.Get(KeyGSAName), defaults.GSAName)),
		WithBuildContext(orDefault(s.Get(KeyBuildContext), defaults.BuildContext)),
		WithCloudBuildFile(orDefault(s.Get(KeyCloudBuildFile), defaults.CloudBuildFile)),
	)

	slog.Debug("configuration loaded",
		"source", source,
		"backend", kind,
		"project", cfg.ProjectID(),
		"release", cfg.ReleaseName(),
		"namespace", cfg.Namespace(),
	)
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
