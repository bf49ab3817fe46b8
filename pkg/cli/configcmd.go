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

	"github.com/urfave/cli/v3"

	"github.com/apigee-monitor/amctl/pkg/config"
	"github.com/apigee-monitor/amctl/pkg/identity"
	"github.com/apigee-monitor/amctl/pkg/registry"
	"github.com/apigee-monitor/amctl/pkg/serializer"
)

// resolvedConfig is the printable view of the effective configuration.
type resolvedConfig struct {
	Source   string            `json:"source" yaml:"source"`
	Settings map[string]string `json:"settings" yaml:"settings"`
	Image    string            `json:"image,omitempty" yaml:"image,omitempty"`
	KSA      string            `json:"ksa" yaml:"ksa"`
	Valid    bool              `json:"valid" yaml:"valid"`
	Problem  string            `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func configCmd(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the resolved settings",
		Description: `Loads the settings file, applies defaults, and prints the effective values
together with the computed image reference. With --validate the command
fails on the first missing or placeholder value, as deploy and link would.`,
		Flags: []cli.Flag{
			formatFlag(serializer.FormatYAML),
			&cli.BoolFlag{
				Name:  "validate",
				Usage: "Exit non-zero when the settings would fail preflight",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := config.Load(cmd.String(flagConfig))
			if err != nil {
				return err
			}

			out := resolvedConfig{
				Source:   cfg.Source(),
				Settings: cfg.Settings(),
				KSA:      identity.KSAName(cfg.ReleaseName()),
				Valid:    true,
			}
			if target, err := registry.TargetFor(cfg); err == nil {
				out.Image = target.Tagged
			}
			verr := cfg.Validate()
			if verr != nil {
				out.Valid = false
				out.Problem = verr.Error()
			}

			if err := serializer.NewWriter(format, env.stdout).Serialize(ctx, out); err != nil {
				return err
			}
			if cmd.Bool("validate") {
				return verr
			}
			return nil
		},
	}
}
