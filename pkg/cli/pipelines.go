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

package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"
	"k8s.io/client-go/kubernetes"

	"github.com/apigee-monitor/amctl/pkg/config"
	"github.com/apigee-monitor/amctl/pkg/gcloud"
	"github.com/apigee-monitor/amctl/pkg/metrics"
	"github.com/apigee-monitor/amctl/pkg/pipeline"
)

func deployCmd(env *environment) *cli.Command {
	return &cli.Command{
		Name:  pipeline.NameDeploy,
		Usage: "Provision the registry, build the image and apply the release",
		Description: `Runs the deploy pipeline:

  1. preflight  validate settings, require gcloud and helm on PATH
  2. registry   ensure the Artifact Registry repository (or validate Docker Hub settings)
  3. build      submit the remote Cloud Build that pushes the image
  4. release    helm upgrade --install the monitoring chart

Every step is idempotent. A failed step stops the run and leaves earlier
steps applied; re-run once the reported problem is fixed.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String(flagConfig))
			if err != nil {
				return err
			}

			m := metrics.New()
			runner := pipeline.NewRunner(pipeline.NameDeploy, pipeline.WithMetrics(m))
			gc := gcloud.NewClient(env.runner, cfg.ProjectID())

			steps := pipeline.Deploy(cfg, pipeline.DeployDeps{
				Looker:       env.looker,
				Repositories: gc,
				Submitter:    gc,
				Helm:         env.runner,
			}, runner.RunID())

			return finish(cmd, m, runner.Run(ctx, steps...))
		},
	}
}

func linkCmd(env *environment) *cli.Command {
	return &cli.Command{
		Name:  pipeline.NameLink,
		Usage: "Link the Google service account to the release's Kubernetes service account",
		Description: `Runs the link pipeline against the cluster of the current kubeconfig:

  1. ensure the Google service account (gsa_name) exists
  2. grant it roles/monitoring.metricWriter on project_id
  3. require the <release_name>-apigee-monitor service account in namespace
  4. allow it to impersonate the GSA (roles/iam.workloadIdentityUser)
  5. annotate it with iam.gke.io/gcp-service-account

Run "amctl deploy" first; the release creates the Kubernetes service account.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String(flagConfig))
			if err != nil {
				return err
			}

			m := metrics.New()
			runner := pipeline.NewRunner(pipeline.NameLink, pipeline.WithMetrics(m))
			kubeconfig := cmd.String(flagKubeconfig)

			steps := pipeline.Link(cfg, pipeline.LinkDeps{
				Looker: env.looker,
				IAM:    gcloud.NewClient(env.runner, cfg.ProjectID()),
				KubeClient: func() (kubernetes.Interface, error) {
					clients, err := env.clients(kubeconfig)
					if err != nil {
						return nil, err
					}
					return clients.Typed, nil
				},
			})

			return finish(cmd, m, runner.Run(ctx, steps...))
		},
	}
}

// finish writes the metrics file, if requested, and returns the run error.
func finish(cmd *cli.Command, m *metrics.Metrics, res *pipeline.Result) error {
	if err := m.WriteToTextfile(cmd.String(flagMetricsFile)); err != nil {
		slog.Warn("failed to write metrics file", "path", cmd.String(flagMetricsFile), "error", err)
	}
	return res.Err()
}
