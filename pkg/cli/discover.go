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

	"github.com/apigee-monitor/amctl/pkg/defaults"
	"github.com/apigee-monitor/amctl/pkg/discovery"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/metrics"
	"github.com/apigee-monitor/amctl/pkg/serializer"
)

func discoverCmd(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Generate the Prometheus file_sd target list from ApigeeRoutes",
		Description: `Reads the ClusterIP of the Apigee ingress service and every ApigeeRoute in
the namespace, and writes one probe target per hostname and base path:

  [{"targets": ["https://<ip>/healthz<basepath>"],
    "labels": {"apigee_hostname": "...", "apigee_basepath": "...", "job": "apigee-health"}}]

The output may be a file (replaced atomically) or a ConfigMap:

  amctl discover --service-name apigee-ingressgateway-test1-svc
  amctl discover -s apigee-ingressgateway-test1-svc --output cm://monitoring/apigee-targets

With --interval the list is regenerated until interrupted.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Usage:   "Namespace of the Apigee runtime",
				Value:   defaults.DiscoveryNamespace,
				Sources: cli.EnvVars("AMCTL_APIGEE_NAMESPACE"),
			},
			&cli.StringFlag{
				Name:     "service-name",
				Aliases:  []string{"s"},
				Usage:    "Name of the Apigee ingress service (e.g. apigee-ingressgateway-test1-svc)",
				Required: true,
				Sources:  cli.EnvVars("AMCTL_INGRESS_SERVICE"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Target file path, or cm://namespace/name for a ConfigMap",
				Value:   defaults.DiscoveryOutputFile,
				Sources: cli.EnvVars("AMCTL_TARGETS_OUTPUT"),
			},
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "Regenerate every interval until interrupted (0 runs once)",
				Sources: cli.EnvVars("AMCTL_DISCOVERY_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each Kubernetes API call",
				Value: defaults.DiscoveryK8sTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			clients, err := env.clients(cmd.String(flagKubeconfig))
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeDiscovery, "failed to create kubernetes client", err).
					WithRemediation("run inside the cluster or set --kubeconfig")
			}

			output, err := discoveryOutput(cmd.String("output"), clients.Typed)
			if err != nil {
				return err
			}

			m := metrics.New()
			d := discovery.NewDiscoverer(clients.Typed, clients.Dynamic, cmd.String("service-name"), output,
				discovery.WithNamespace(cmd.String("namespace")),
				discovery.WithTimeout(cmd.Duration("timeout")),
				discovery.WithMetrics(m),
			)

			defer func() {
				if werr := m.WriteToTextfile(cmd.String(flagMetricsFile)); werr != nil {
					slog.Warn("failed to write metrics file", "error", werr)
				}
			}()

			interval := cmd.Duration("interval")
			if interval <= 0 {
				_, err := d.RunOnce(ctx)
				return err
			}

			slog.Info("starting target discovery loop", "interval", interval.String())
			d.Run(ctx, interval)
			return nil
		},
	}
}

func discoveryOutput(dest string, clientset kubernetes.Interface) (serializer.Serializer, error) {
	if !serializer.IsConfigMapURI(dest) {
		return serializer.NewFileWriter(serializer.FormatJSON, dest), nil
	}
	ns, name, err := serializer.ParseConfigMapURI(dest)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "invalid --output", err).
			WithRemediation("use a file path or cm://namespace/name")
	}
	return serializer.NewConfigMapWriter(clientset, ns, name, serializer.FormatJSON), nil
}
