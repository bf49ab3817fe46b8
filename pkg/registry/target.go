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
	"fmt"

	"github.com/distribution/reference"

	"github.com/apigee-monitor/amctl/pkg/config"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
)

// Target is the publish destination of one run.
type Target struct {
	// Backend is the registry backend the references belong to.
	Backend config.BackendKind
	// Domain is the registry host (e.g. "us-central1-docker.pkg.dev", "docker.io").
	Domain string
	// Tagged is the fully qualified image reference including the tag.
	Tagged string
	// Untagged is Tagged without the tag.
	Untagged string
	// Tag is the image tag.
	Tag string
}

// String returns the tagged reference.
func (t Target) String() string {
	return t.Tagged
}

// ArtifactRegistryRepository returns the untagged reference
// {region}-docker.pkg.dev/{project}/{repository}/{image}.
func ArtifactRegistryRepository(region, project, repository, image string) string {
	return fmt.Sprintf("%s-docker.pkg.dev/%s/%s/%s", region, project, repository, image)
}

// DockerHubRepository returns the untagged reference {username}/{image}.
func DockerHubRepository(username, image string) string {
	return fmt.Sprintf("%s/%s", username, image)
}

// TargetFor computes the Target of cfg according to its backend's URL grammar.
func TargetFor(cfg *config.DeploymentConfig) (Target, error) {
	var untagged string
	switch b := cfg.Backend().(type) {
	case config.ArtifactRegistry:
		untagged = ArtifactRegistryRepository(b.Region, cfg.ProjectID(), b.Repository, cfg.ImageName())
	case config.DockerHub:
		untagged = DockerHubRepository(b.Username, cfg.ImageName())
	default:
		return Target{}, apperrors.New(apperrors.ErrCodeConfig,
			fmt.Sprintf("unsupported registry backend %T", cfg.Backend()))
	}
	return newTarget(cfg.Backend().Kind(), untagged, cfg.ImageTag())
}

func newTarget(kind config.BackendKind, untagged, tag string) (Target, error) {
	tagged := untagged + ":" + tag

	ref, err := reference.ParseNormalizedNamed(tagged)
	if err != nil {
		return Target{}, apperrors.Wrap(apperrors.ErrCodeConfig,
			fmt.Sprintf("invalid image reference %q", tagged), err).
			WithRemediation("check %s, %s and the registry fields for invalid characters",
				config.KeyImageName, config.KeyImageTag)
	}
	if _, ok := ref.(reference.Tagged); !ok {
		return Target{}, apperrors.New(apperrors.ErrCodeConfig,
			fmt.Sprintf("image reference %q has no tag", tagged)).
			WithRemediation("set %s", config.KeyImageTag)
	}

	return Target{
		Backend:  kind,
		Domain:   reference.Domain(ref),
		Tagged:   tagged,
		Untagged: untagged,
		Tag:      tag,
	}, nil
}
