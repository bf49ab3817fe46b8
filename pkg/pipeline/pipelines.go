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

package pipeline

import (
	"context"
	"log/slog"

	"k8s.io/client-go/kubernetes"

	"github.com/apigee-monitor/amctl/pkg/build"
	"github.com/apigee-monitor/amctl/pkg/config"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/identity"
	"github.com/apigee-monitor/amctl/pkg/preflight"
	"github.com/apigee-monitor/amctl/pkg/registry"
	"github.com/apigee-monitor/amctl/pkg/release"
	"github.com/apigee-monitor/amctl/pkg/shell"
)

// Pipeline names.
const (
	NameDeploy = "deploy"
	NameLink   = "link"
)

// Step names.
const (
	StepPreflight = "preflight"
	StepRegistry  = "registry"
	StepBuild     = "build"
	StepRelease   = "release"
	StepIdentity  = "identity"
)

// DeployDeps are the collaborators of the deploy pipeline.
type DeployDeps struct {
	Looker       shell.PathLooker
	Repositories registry.RepositoryAPI
	Submitter    build.Submitter
	Helm         shell.Runner
}

// Deploy returns the steps preflight, registry, build and release. The
// registry target computed by the registry step flows into the later steps.
func Deploy(cfg *config.DeploymentConfig, deps DeployDeps, runID string) []Step {
	var target registry.Target

	return []Step{
		{
			Name: StepPreflight,
			Run: func(context.Context) error {
				return preflight.NewValidator(deps.Looker, preflight.DeployTools...).Validate(cfg)
			},
		},
		{
			Name: StepRegistry,
			Run: func(ctx context.Context) error {
				p, err := registry.NewProvisioner(cfg, deps.Repositories)
				if err != nil {
					return err
				}
				target, err = p.Provision(ctx)
				return err
			},
		},
		{
			Name: StepBuild,
			Run: func(ctx context.Context) error {
				_, err := build.NewBuilder(cfg, deps.Submitter, runID).Build(ctx, target)
				return err
			},
		},
		{
			Name: StepRelease,
			Run: func(ctx context.Context) error {
				_, err := release.NewDeployer(cfg, deps.Helm).Deploy(ctx, target)
				return err
			},
		},
	}
}

// KubeClientFunc returns the cluster client, built on first use.
type KubeClientFunc func() (kubernetes.Interface, error)

// LinkDeps are the collaborators of the link pipeline.
type LinkDeps struct {
	Looker     shell.PathLooker
	IAM        identity.IAM
	KubeClient KubeClientFunc
}

// Link returns the steps preflight and identity.
func Link(cfg *config.DeploymentConfig, deps LinkDeps) []Step {
	return []Step{
		{
			Name: StepPreflight,
			Run: func(context.Context) error {
				return preflight.NewValidator(deps.Looker, preflight.LinkTools...).Validate(cfg)
			},
		},
		{
			Name: StepIdentity,
			Run: func(ctx context.Context) error {
				clientset, err := deps.KubeClient()
				if err != nil {
					return apperrors.Wrap(apperrors.ErrCodeIdentity, "failed to create kubernetes client", err).
						WithRemediation("set --kubeconfig or KUBECONFIG to the target cluster credentials")
				}
				b, err := identity.NewLinker(cfg, deps.IAM, clientset).Link(ctx)
				if err != nil {
					return err
				}
				slog.Debug("binding", "member", b.Member)
				return nil
			},
		},
	}
}
