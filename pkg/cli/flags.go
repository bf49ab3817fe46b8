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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/apigee-monitor/amctl/pkg/defaults"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/k8s/client"
	"github.com/apigee-monitor/amctl/pkg/serializer"
	"github.com/apigee-monitor/amctl/pkg/shell"
)

// environment holds the process-level collaborators of the commands.
type environment struct {
	stdout  io.Writer
	stderr  io.Writer
	looker  shell.PathLooker
	runner  shell.Runner
	clients func(kubeconfig string) (*client.Clients, error)
}

func defaultEnvironment() *environment {
	exec := shell.NewExecRunner(shell.WithStream(os.Stderr))
	return &environment{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		looker:  exec,
		runner:  exec,
		clients: client.BuildClients,
	}
}

// Global flag names.
const (
	flagConfig      = "config"
	flagLogLevel    = "log-level"
	flagKubeconfig  = "kubeconfig"
	flagMetricsFile = "metrics-file"
	flagFormat      = "format"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to the key=value settings file",
			Value:   defaults.SettingsFile,
			Sources: cli.EnvVars("AMCTL_CONFIG"),
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    flagKubeconfig,
			Aliases: []string{"k"},
			Usage:   "Path to kubeconfig file (overrides KUBECONFIG env and default ~/.kube/config)",
			Sources: cli.EnvVars("KUBECONFIG"),
		},
		&cli.StringFlag{
			Name:    flagMetricsFile,
			Usage:   "Write run metrics in Prometheus text format to this file (e.g. for node_exporter textfile collector)",
			Sources: cli.EnvVars("AMCTL_METRICS_FILE"),
		},
	}
}

func formatFlag(def serializer.Format) cli.Flag {
	return &cli.StringFlag{
		Name:    flagFormat,
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Value:   string(def),
	}
}

// parseOutputFormat returns the --format value or an error if unsupported.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String(flagFormat))
	if f.IsUnknown() {
		return "", apperrors.New(apperrors.ErrCodeConfig, fmt.Sprintf("unknown output format: %q", f)).
			WithRemediation("use one of: %s", strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}
