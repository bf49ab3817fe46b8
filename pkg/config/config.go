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
	"fmt"
	"strings"

	"github.com/apigee-monitor/amctl/pkg/defaults"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
)

// Recognized settings keys.
const (
	KeyRegistryType       = "registry_type"
	KeyProjectID          = "project_id"
	KeyRegion             = "region"
	KeyRepositoryName     = "repository_name"
	KeyImageName          = "image_name"
	KeyImageTag           = "image_tag"
	KeyReleaseName        = "release_name"
	KeyChartPath          = "chart_path"
	KeyNamespace          = "namespace"
	KeyIngressServiceName = "ingress_service_name"
	KeyDockerHubUsername  = "dockerhub_username"
	KeyDockerHubSecretID  = "dockerhub_secret_id"
	KeyGSAName            = "gsa_name"
	KeyBuildContext       = "build_context"
	KeyCloudBuildFile     = "cloudbuild_file"
)

// placeholders are sentinel values shipped in the example settings file.
var placeholders = map[string]bool{
	"your-gcp-project-id":       true,
	"your-project-id":           true,
	"your-dockerhub-username":   true,
	"your-dockerhub-secret-id":  true,
	"your-secret-manager-id":    true,
	"your-ingress-service-name": true,
	"changeme":                  true,
}

// placeholderPrefix marks any other "your-*" sentinel.
const placeholderPrefix = "your-"

// IsPlaceholder reports whether v is a placeholder sentinel: one of the
// known values or anything starting with "your-", ignoring case.
func IsPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return placeholders[v] || strings.HasPrefix(v, placeholderPrefix)
}

// BackendKind names a registry backend variant.
type BackendKind string

const (
	// BackendArtifactRegistry publishes to Google Artifact Registry.
	BackendArtifactRegistry BackendKind = "artifactregistry"
	// BackendDockerHub publishes to Docker Hub via a Secret Manager credential.
	BackendDockerHub BackendKind = "dockerhub"
)

// ParseBackendKind maps a registry_type value to a BackendKind.
// An empty value selects Artifact Registry.
func ParseBackendKind(v string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "artifactregistry", "artifact-registry", "artifact_registry", "gar", "gcp":
		return BackendArtifactRegistry, nil
	case "dockerhub", "docker-hub", "docker_hub":
		return BackendDockerHub, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeConfig,
			fmt.Sprintf("invalid %s %q", KeyRegistryType, v)).
			WithRemediation("set %s to %q or %q", KeyRegistryType, BackendArtifactRegistry, BackendDockerHub)
	}
}

// Backend is the registry backend variant carried by a DeploymentConfig.
// Implementations are ArtifactRegistry and DockerHub.
type Backend interface {
	Kind() BackendKind
	fields() []field
}

// ArtifactRegistry carries the fields required to publish to Artifact Registry.
type ArtifactRegistry struct {
	Region     string
	Repository string
}

// Kind implements Backend.
func (ArtifactRegistry) Kind() BackendKind { return BackendArtifactRegistry }

func (a ArtifactRegistry) fields() []field {
	return []field{
		{KeyRegion, a.Region},
		{KeyRepositoryName, a.Repository},
	}
}

// DockerHub carries the fields required to publish to Docker Hub.
// SecretID names a Secret Manager secret holding the Docker Hub token.
type DockerHub struct {
	Username string
	SecretID string
}

// Kind implements Backend.
func (DockerHub) Kind() BackendKind { return BackendDockerHub }

func (d DockerHub) fields() []field {
	return []field{
		{KeyDockerHubUsername, d.Username},
		{KeyDockerHubSecretID, d.SecretID},
	}
}

type field struct {
	key   string
	value string
}

// DeploymentConfig is the immutable configuration of one run.
type DeploymentConfig struct {
	source             string
	backend            Backend
	projectID          string
	imageName          string
	imageTag           string
	releaseName        string
	chartPath          string
	namespace          string
	ingressServiceName string
	gsaName            string
	buildContext       string
	cloudBuildFile     string
}

// Getter methods for read-only access

// Source returns the settings file the config was loaded from, if any.
func (c *DeploymentConfig) Source() string { return c.source }

// Backend returns the active registry backend variant.
func (c *DeploymentConfig) Backend() Backend { return c.backend }

// ProjectID returns the Google Cloud project id.
func (c *DeploymentConfig) ProjectID() string { return c.projectID }

// ImageName returns the container image name.
func (c *DeploymentConfig) ImageName() string { return c.imageName }

// ImageTag returns the container image tag.
func (c *DeploymentConfig) ImageTag() string { return c.imageTag }

// ReleaseName returns the release name.
func (c *DeploymentConfig) ReleaseName() string { return c.releaseName }

// ChartPath returns the chart directory.
func (c *DeploymentConfig) ChartPath() string { return c.chartPath }

// Namespace returns the release namespace.
func (c *DeploymentConfig) Namespace() string { return c.namespace }

// IngressServiceName returns the Apigee ingress service name passed to the release.
func (c *DeploymentConfig) IngressServiceName() string { return c.ingressServiceName }

// GSAName returns the account id of the Google service account.
func (c *DeploymentConfig) GSAName() string { return c.gsaName }

// BuildContext returns the build context directory.
func (c *DeploymentConfig) BuildContext() string { return c.buildContext }

// CloudBuildFile returns the pipeline descriptor used by the Docker Hub backend.
func (c *DeploymentConfig) CloudBuildFile() string { return c.cloudBuildFile }

// Settings returns the effective configuration keyed by settings key.
func (c *DeploymentConfig) Settings() map[string]string {
	m := map[string]string{
		KeyRegistryType:       string(c.backend.Kind()),
		KeyProjectID:          c.projectID,
		KeyImageName:          c.imageName,
		KeyImageTag:           c.imageTag,
		KeyReleaseName:        c.releaseName,
		KeyChartPath:          c.chartPath,
		KeyNamespace:          c.namespace,
		KeyIngressServiceName: c.ingressServiceName,
		KeyGSAName:            c.gsaName,
		KeyBuildContext:       c.buildContext,
	}
	for _, f := range c.backend.fields() {
		m[f.key] = f.value
	}
	if c.backend.Kind() == BackendDockerHub {
		m[KeyCloudBuildFile] = c.cloudBuildFile
	}
	return m
}

// Validate checks that every field required by the active backend is set
// and is not a placeholder. The error names the first offending key.
func (c *DeploymentConfig) Validate() error {
	if c.backend == nil {
		return apperrors.New(apperrors.ErrCodeConfig, "registry backend is not set").
			WithRemediation("set %s in %s", KeyRegistryType, c.sourceName())
	}

	required := []field{{KeyProjectID, c.projectID}}
	required = append(required, c.backend.fields()...)
	required = append(required,
		field{KeyImageName, c.imageName},
		field{KeyImageTag, c.imageTag},
		field{KeyReleaseName, c.releaseName},
		field{KeyChartPath, c.chartPath},
		field{KeyNamespace, c.namespace},
		field{KeyIngressServiceName, c.ingressServiceName},
		field{KeyGSAName, c.gsaName},
		field{KeyBuildContext, c.buildContext},
	)
	if c.backend.Kind() == BackendDockerHub {
		required = append(required, field{KeyCloudBuildFile, c.cloudBuildFile})
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return apperrors.New(apperrors.ErrCodeConfig,
				fmt.Sprintf("%s is required for registry backend %s", f.key, c.backend.Kind())).
				WithRemediation("set %s in %s", f.key, c.sourceName()).
				WithContext("key", f.key)
		}
		if IsPlaceholder(f.value) {
			return apperrors.New(apperrors.ErrCodeConfig,
				fmt.Sprintf("%s is still set to placeholder %q", f.key, f.value)).
				WithRemediation("replace the placeholder value of %s in %s", f.key, c.sourceName()).
				WithContext("key", f.key)
		}
	}
	return nil
}

func (c *DeploymentConfig) sourceName() string {
	if c.source == "" {
		return "the settings file"
	}
	return c.source
}

// Option is a functional option for configuring DeploymentConfig instances.
type Option func(*DeploymentConfig)

// WithSource records the settings file path.
func WithSource(path string) Option {
	return func(c *DeploymentConfig) { c.source = path }
}

// WithBackend sets the registry backend variant.
func WithBackend(b Backend) Option {
	return func(c *DeploymentConfig) { c.backend = b }
}

// WithProjectID sets the Google Cloud project id.
func WithProjectID(id string) Option {
	return func(c *DeploymentConfig) { c.projectID = id }
}

// WithImage sets the image name and tag.
func WithImage(name, tag string) Option {
	return func(c *DeploymentConfig) {
		c.imageName = name
		c.imageTag = tag
	}
}

// WithRelease sets the release name, chart path and namespace.
func WithRelease(name, chartPath, namespace string) Option {
	return func(c *DeploymentConfig) {
		c.releaseName = name
		c.chartPath = chartPath
		c.namespace = namespace
	}
}

// WithIngressServiceName sets the Apigee ingress service name.
func WithIngressServiceName(name string) Option {
	return func(c *DeploymentConfig) { c.ingressServiceName = name }
}

// WithGSAName sets the Google service account id.
func WithGSAName(name string) Option {
	return func(c *DeploymentConfig) { c.gsaName = name }
}

// WithBuildContext sets the build context directory.
func WithBuildContext(dir string) Option {
	return func(c *DeploymentConfig) { c.buildContext = dir }
}

// WithCloudBuildFile sets the Docker Hub pipeline descriptor path.
func WithCloudBuildFile(path string) Option {
	return func(c *DeploymentConfig) { c.cloudBuildFile = path }
}

// NewDeploymentConfig returns a config populated with defaults and the
// given options applied in order.
func NewDeploymentConfig(options ...Option) *DeploymentConfig {
	c := &DeploymentConfig{
		backend:            ArtifactRegistry{Region: defaults.Region, Repository: defaults.RepositoryName},
		imageName:          defaults.ImageName,
		imageTag:           defaults.ImageTag,
		releaseName:        defaults.ReleaseName,
		chartPath:          defaults.ChartPath,
		namespace:          defaults.Namespace,
		ingressServiceName: defaults.IngressServiceName,
		gsaName:            defaults.GSAName,
		buildContext:       defaults.BuildContext,
		cloudBuildFile:     defaults.CloudBuildFile,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
