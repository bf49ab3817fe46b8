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

package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apigee-monitor/amctl/pkg/config"
	"github.com/apigee-monitor/amctl/pkg/defaults"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
)

// RepositoryAPI is the subset of the Artifact Registry API the provisioner needs.
type RepositoryAPI interface {
	RepositoryExists(ctx context.Context, name, region string) (bool, error)
	CreateRepository(ctx context.Context, name, region, format, description string) error
}

// Provisioner ensures the publish destination exists and returns its Target.
type Provisioner interface {
	Provision(ctx context.Context) (Target, error)
}

// NewProvisioner returns the Provisioner for the backend carried by cfg.
func NewProvisioner(cfg *config.DeploymentConfig, api RepositoryAPI) (Provisioner, error) {
	switch b := cfg.Backend().(type) {
	case config.ArtifactRegistry:
		return &ArtifactRegistryProvisioner{api: api, backend: b, cfg: cfg}, nil
	case config.DockerHub:
		return &DockerHubProvisioner{backend: b, cfg: cfg}, nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeConfig,
			fmt.Sprintf("unsupported registry backend %T", cfg.Backend())).
			WithRemediation("set %s to %q or %q", config.KeyRegistryType,
				config.BackendArtifactRegistry, config.BackendDockerHub)
	}
}

// ArtifactRegistryProvisioner creates the Artifact Registry repository when absent.
//
// Two concurrent runs may both observe the repository as absent; the later
// create fails and aborts that run. Runs are expected to be serialized.
type ArtifactRegistryProvisioner struct {
	api     RepositoryAPI
	backend config.ArtifactRegistry
	cfg     *config.DeploymentConfig
}

// Provision implements Provisioner.
func (p *ArtifactRegistryProvisioner) Provision(ctx context.Context) (Target, error) {
	target, err := TargetFor(p.cfg)
	if err != nil {
		return Target{}, err
	}

	name, region := p.backend.Repository, p.backend.Region
	exists, err := p.api.RepositoryExists(ctx, name, region)
	if err != nil {
		return Target{}, apperrors.Wrap(apperrors.ErrCodeRegistry,
			fmt.Sprintf("failed to describe repository %q in %s", name, region), err).
			WithRemediation("check that the Artifact Registry API is enabled and you can read repositories in project %s",
				p.cfg.ProjectID())
	}

	if exists {
		slog.Info("artifact registry repository exists", "name", name, "region", region)
		return target, nil
	}

	if err := p.api.CreateRepository(ctx, name, region, defaults.RepositoryFormat, defaults.RepositoryDescription); err != nil {
		return Target{}, apperrors.Wrap(apperrors.ErrCodeRegistry,
			fmt.Sprintf("failed to create repository %q in %s", name, region), err).
			WithRemediation("check artifactregistry.repositories.create permission in project %s, then re-run",
				p.cfg.ProjectID())
	}

	slog.Info("artifact registry repository created", "name", name, "region", region)
	return target, nil
}

// DockerHubProvisioner validates the Docker Hub destination. The repository
// and the Secret Manager secret holding the access token are provisioned
// outside amctl.
type DockerHubProvisioner struct {
	backend config.DockerHub
	cfg     *config.DeploymentConfig
}

// Provision implements Provisioner.
func (p *DockerHubProvisioner) Provision(_ context.Context) (Target, error) {
	if p.backend.Username == "" {
		return Target{}, apperrors.New(apperrors.ErrCodeRegistry, "docker hub username is not set").
			WithRemediation("set %s in %s", config.KeyDockerHubUsername, p.cfg.Source())
	}
	if p.backend.SecretID == "" {
		return Target{}, apperrors.New(apperrors.ErrCodeRegistry, "docker hub secret id is not set").
			WithRemediation("create the Secret Manager secret with pre.sh and set %s in %s",
				config.KeyDockerHubSecretID, p.cfg.Source())
	}

	target, err := TargetFor(p.cfg)
	if err != nil {
		return Target{}, err
	}

	slog.Info("docker hub destination validated",
		"username", p.backend.Username,
		"secret", p.backend.SecretID,
		"image", target.Untagged,
	)
	return target, nil
}
