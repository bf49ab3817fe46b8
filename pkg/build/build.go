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

package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/apigee-monitor/amctl/pkg/config"
	"github.com/apigee-monitor/amctl/pkg/defaults"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/gcloud"
	"github.com/apigee-monitor/amctl/pkg/registry"
)

// Cloud Build user substitutions consumed by the Docker Hub pipeline descriptor.
const (
	SubstitutionImageName       = "_IMAGE_NAME"
	SubstitutionDockerHubUser   = "_DOCKERHUB_USERNAME"
	SubstitutionDockerHubSecret = "_DOCKERHUB_SECRET_ID"
)

// Submitter submits a remote build and blocks until it finishes.
type Submitter interface {
	SubmitBuild(ctx context.Context, req gcloud.BuildRequest) error
}

// Job correlates a build context with its publish target. Resubmitting the
// same job overwrites the tag; it does not create a new artifact.
type Job struct {
	ID         string
	ContextDir string
	Target     registry.Target
	Request    gcloud.BuildRequest
}

// Builder triggers remote build-and-push of the target generator image.
type Builder struct {
	submitter Submitter
	cfg       *config.DeploymentConfig
	runID     string
}

// NewBuilder returns a Builder submitting through submitter.
func NewBuilder(cfg *config.DeploymentConfig, submitter Submitter, runID string) *Builder {
	return &Builder{
		submitter: submitter,
		cfg:       cfg,
		runID:     runID,
	}
}

// Plan validates the local descriptors and returns the Job that Build would
// submit for target. No remote call is made.
func (b *Builder) Plan(target registry.Target) (*Job, error) {
	contextDir := b.cfg.BuildContext()
	if err := requireBuildDescriptor(contextDir); err != nil {
		return nil, err
	}

	job := &Job{
		ID:         b.runID,
		ContextDir: contextDir,
		Target:     target,
	}

	switch backend := b.cfg.Backend().(type) {
	case config.ArtifactRegistry:
		job.Request = gcloud.BuildRequest{
			SourceDir: contextDir,
			Tag:       target.Tagged,
		}
	case config.DockerHub:
		pipelineFile := b.cfg.CloudBuildFile()
		if err := requirePipelineDescriptor(pipelineFile); err != nil {
			return nil, err
		}
		job.Request = gcloud.BuildRequest{
			SourceDir:  contextDir,
			ConfigFile: pipelineFile,
			Substitutions: map[string]string{
				SubstitutionImageName:       target.Tagged,
				SubstitutionDockerHubUser:   backend.Username,
				SubstitutionDockerHubSecret: backend.SecretID,
			},
		}
	default:
		return nil, apperrors.New(apperrors.ErrCodeBuild,
			fmt.Sprintf("unsupported registry backend %T", b.cfg.Backend()))
	}
	return job, nil
}

// Build validates the descriptors and submits the remote build for target.
func (b *Builder) Build(ctx context.Context, target registry.Target) (*Job, error) {
	job, err := b.Plan(target)
	if err != nil {
		return nil, err
	}

	slog.Info("submitting remote build",
		"job", job.ID,
		"context", job.ContextDir,
		"image", job.Target.Tagged,
		"backend", job.Target.Backend,
	)

	start := time.Now()
	if err := b.submitter.SubmitBuild(ctx, job.Request); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeBuild,
			fmt.Sprintf("remote build of %s failed", job.Target.Tagged), err).
			WithRemediation("inspect the Cloud Build log in project %s; the image tag was not updated",
				b.cfg.ProjectID()).
			WithContext("job", job.ID)
	}

	slog.Info("image built and pushed",
		"job", job.ID,
		"image", job.Target.Tagged,
		"duration_sec", time.Since(start).Seconds(),
	)
	return job, nil
}

func requireBuildDescriptor(contextDir string) error {
	path := filepath.Join(contextDir, defaults.BuildDescriptor)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return apperrors.New(apperrors.ErrCodeBuild,
			fmt.Sprintf("build descriptor %s not found", path)).
			WithRemediation("create %s or point %s at the directory containing it",
				path, config.KeyBuildContext)
	}
	return nil
}

// pipelineDescriptor is the part of a Cloud Build config amctl checks.
type pipelineDescriptor struct {
	Steps []struct {
		Name string `yaml:"name"`
	} `yaml:"steps"`
}

func requirePipelineDescriptor(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeBuild,
			fmt.Sprintf("pipeline descriptor %s not found", path), err).
			WithRemediation("create %s at the repository root (required for %s) or set %s",
				path, config.BackendDockerHub, config.KeyCloudBuildFile)
	}

	var desc pipelineDescriptor
	if err := yaml.Unmarshal(b, &desc); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeBuild,
			fmt.Sprintf("pipeline descriptor %s is not valid YAML", path), err).
			WithRemediation("fix the syntax of %s", path)
	}
	if len(desc.Steps) == 0 {
		return apperrors.New(apperrors.ErrCodeBuild,
			fmt.Sprintf("pipeline descriptor %s defines no steps", path)).
			WithRemediation("add the build and push steps to %s", path)
	}
	return nil
}
