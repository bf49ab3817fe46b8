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

package release

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
	"github.com/apigee-monitor/amctl/pkg/registry"
	"github.com/apigee-monitor/amctl/pkg/shell"
)

// Chart is the part of Chart.yaml the deployer validates.
type Chart struct {
	APIVersion string `yaml:"apiVersion"`
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	AppVersion string `yaml:"appVersion,omitempty"`
}

// Override is one --set value passed to the release.
type Override struct {
	Key   string
	Value string
}

// Release is the desired state of the (name, namespace) release.
type Release struct {
	Name      string
	Namespace string
	ChartPath string
	Chart     Chart
	Overrides []Override
}

// Args renders the helm upgrade --install arguments for r.
func (r *Release) Args() []string {
	args := []string{
		"upgrade", "--install", r.Name, r.ChartPath,
		"--namespace", r.Namespace,
		"--create-namespace",
	}
	for _, o := range r.Overrides {
		args = append(args, "--set", o.Key+"="+o.Value)
	}
	return args
}

// Deployer applies the monitoring release with upgrade-or-install semantics.
type Deployer struct {
	runner shell.Runner
	cfg    *config.DeploymentConfig
}

// NewDeployer returns a Deployer invoking helm through runner.
func NewDeployer(cfg *config.DeploymentConfig, runner shell.Runner) *Deployer {
	return &Deployer{
		runner: runner,
		cfg:    cfg,
	}
}

// Plan validates the chart and returns the desired release state for target.
func (d *Deployer) Plan(target registry.Target) (*Release, error) {
	chart, err := LoadChart(d.cfg.ChartPath())
	if err != nil {
		return nil, err
	}
	return &Release{
		Name:      d.cfg.ReleaseName(),
		Namespace: d.cfg.Namespace(),
		ChartPath: d.cfg.ChartPath(),
		Chart:     *chart,
		Overrides: []Override{
			{Key: defaults.ValueImageRepository, Value: target.Untagged},
			{Key: defaults.ValueImageTag, Value: target.Tag},
			{Key: defaults.ValueIngressServiceName, Value: d.cfg.IngressServiceName()},
		},
	}, nil
}

// Deploy applies the release. A failed apply is not rolled back.
func (d *Deployer) Deploy(ctx context.Context, target registry.Target) (*Release, error) {
	rel, err := d.Plan(target)
	if err != nil {
		return nil, err
	}

	slog.Info("applying release",
		"release", rel.Name,
		"namespace", rel.Namespace,
		"chart", rel.Chart.Name,
		"chart_version", rel.Chart.Version,
		"image", target.Tagged,
	)

	start := time.Now()
	if _, err := d.runner.Run(ctx, defaults.HelmBinary, rel.Args()...); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDeploy,
			fmt.Sprintf("failed to apply release %s/%s", rel.Namespace, rel.Name), err).
			WithRemediation("inspect `helm status %s -n %s`; the release may be partially applied",
				rel.Name, rel.Namespace)
	}

	slog.Info("release applied",
		"release", rel.Name,
		"namespace", rel.Namespace,
		"duration_sec", time.Since(start).Seconds(),
	)
	return rel, nil
}

// LoadChart reads and validates Chart.yaml in chartPath.
func LoadChart(chartPath string) (*Chart, error) {
	path := filepath.Join(chartPath, defaults.ChartDescriptor)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDeploy,
			fmt.Sprintf("chart descriptor %s not found", path), err).
			WithRemediation("point %s at the chart directory containing %s",
				config.KeyChartPath, defaults.ChartDescriptor)
	}

	var chart Chart
	if err := yaml.Unmarshal(b, &chart); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDeploy,
			fmt.Sprintf("chart descriptor %s is not valid YAML", path), err).
			WithRemediation("fix the syntax of %s", path)
	}
	required := []struct{ key, value string }{
		{"apiVersion", chart.APIVersion},
		{"name", chart.Name},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, apperrors.New(apperrors.ErrCodeDeploy,
				fmt.Sprintf("chart descriptor %s has no %s", path, r.key)).
				WithRemediation("set %s in %s", r.key, path)
		}
	}
	return &chart, nil
}
