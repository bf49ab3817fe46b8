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

package preflight

import (
	"fmt"
	"log/slog"

	"github.com/apigee-monitor/amctl/pkg/config"
	"github.com/apigee-monitor/amctl/pkg/defaults"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/shell"
)

// installHints maps a tool to its install instructions.
var installHints = map[string]string{
	defaults.GcloudBinary: "install the Google Cloud SDK (https://cloud.google.com/sdk/docs/install) and run `gcloud auth login`",
	defaults.HelmBinary:   "install Helm 3 (https://helm.sh/docs/intro/install/)",
}

// DeployTools are the executables the deploy pipeline invokes.
var DeployTools = []string{defaults.GcloudBinary, defaults.HelmBinary}

// LinkTools are the executables the link pipeline invokes.
var LinkTools = []string{defaults.GcloudBinary}

// Validator checks configuration fields and required executables.
type Validator struct {
	looker shell.PathLooker
	tools  []string
}

// NewValidator returns a Validator resolving tools with looker.
func NewValidator(looker shell.PathLooker, tools ...string) *Validator {
	return &Validator{
		looker: looker,
		tools:  tools,
	}
}

// Validate checks cfg first and then every tool, failing on the first violation.
func (v *Validator) Validate(cfg *config.DeploymentConfig) error {
	if cfg == nil {
		return apperrors.New(apperrors.ErrCodeConfig, "configuration is not loaded").
			WithRemediation("pass --config <file> pointing at a settings file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	for _, tool := range v.tools {
		path, err := v.looker.LookPath(tool)
		if err != nil {
			hint, ok := installHints[tool]
			if !ok {
				hint = fmt.Sprintf("install %s and make sure it is on PATH", tool)
			}
			return apperrors.Wrap(apperrors.ErrCodePrerequisite,
				fmt.Sprintf("required tool %q not found in PATH", tool), err).
				WithRemediation("%s", hint).
				WithContext("tool", tool)
		}
		slog.Debug("prerequisite found", "tool", tool, "path", path)
	}

	slog.Info("prerequisites satisfied",
		"backend", cfg.Backend().Kind(),
		"project", cfg.ProjectID(),
		"tools", v.tools,
	)
	return nil
}
