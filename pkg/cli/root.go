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
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/logging"
)

const (
	name           = "amctl"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(defaultEnvironment()).Run(ctx, os.Args); err != nil {
		printError(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd(env *environment) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Deploy and link the Apigee monitoring pipeline",
		Version:               fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		EnableShellCompletion: true,
		Description: `amctl builds and publishes the target generator image, applies the
monitoring release, and links its Kubernetes service account to a Google
service account through Workload Identity.

Settings come from a flat key=value file (default ./config.ini).

  amctl deploy     provision the registry, build the image, apply the release
  amctl link       bind the GSA to the release's KSA (run after deploy)
  amctl discover   regenerate the Prometheus file_sd target list
  amctl config     print the resolved settings`,
		Flags: globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String(flagLogLevel))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Writer:    env.stdout,
		ErrWriter: env.stderr,
		Commands: []*cli.Command{
			deployCmd(env),
			linkCmd(env),
			discoverCmd(env),
			configCmd(env),
		},
	}
}

// printError writes the failure and, when known, its remediation hint.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	if hint := apperrors.RemediationOf(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}
