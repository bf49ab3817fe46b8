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

package gcloud

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/apigee-monitor/amctl/pkg/defaults"
	"github.com/apigee-monitor/amctl/pkg/shell"
)

// notFoundMarkers identify gcloud describe responses for missing resources.
var notFoundMarkers = []string{"NOT_FOUND", "not found", "does not exist"}

// Client issues gcloud commands scoped to one project.
type Client struct {
	runner  shell.Runner
	project string
}

// NewClient returns a Client for project.
func NewClient(runner shell.Runner, project string) *Client {
	return &Client{
		runner:  runner,
		project: project,
	}
}

// Project returns the project every command is scoped to.
func (c *Client) Project() string {
	return c.project
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	args = append(args, "--project="+c.project, "--quiet")
	return c.runner.Run(ctx, defaults.GcloudBinary, args...)
}

// describe runs a describe command and maps a not-found response to false.
func (c *Client) describe(ctx context.Context, args ...string) (bool, error) {
	_, err := c.run(ctx, args...)
	if err == nil {
		return true, nil
	}
	if shell.StderrContains(err, notFoundMarkers...) {
		return false, nil
	}
	return false, err
}

// RepositoryExists reports whether the Artifact Registry repository exists.
func (c *Client) RepositoryExists(ctx context.Context, name, region string) (bool, error) {
	return c.describe(ctx, "artifacts", "repositories", "describe", name,
		"--location="+region, "--format=value(name)")
}

// CreateRepository creates an Artifact Registry repository.
func (c *Client) CreateRepository(ctx context.Context, name, region, format, description string) error {
	slog.Info("creating artifact registry repository", "name", name, "region", region, "format", format)
	_, err := c.run(ctx, "artifacts", "repositories", "create", name,
		"--repository-format="+format,
		"--location="+region,
		"--description="+description)
	return err
}

// BuildRequest is one Cloud Build submission.
type BuildRequest struct {
	// SourceDir is the local build context uploaded to Cloud Build.
	SourceDir string
	// Tag pushes the built image directly to this reference.
	// Mutually exclusive with ConfigFile.
	Tag string
	// ConfigFile is a pipeline descriptor run instead of the default build.
	ConfigFile string
	// Substitutions are passed to ConfigFile as user substitutions.
	Substitutions map[string]string
}

// SubmitBuild submits req and blocks until the remote build finishes.
func (c *Client) SubmitBuild(ctx context.Context, req BuildRequest) error {
	if req.Tag == "" && req.ConfigFile == "" {
		return fmt.Errorf("build request needs a tag or a config file")
	}
	if req.Tag != "" && req.ConfigFile != "" {
		return fmt.Errorf("build request cannot set both a tag and a config file")
	}

	args := []string{"builds", "submit", req.SourceDir}
	if req.Tag != "" {
		args = append(args, "--tag="+req.Tag)
	} else {
		args = append(args, "--config="+req.ConfigFile)
		if subs := FormatSubstitutions(req.Substitutions); subs != "" {
			args = append(args, "--substitutions="+subs)
		}
	}
	_, err := c.run(ctx, args...)
	return err
}

// FormatSubstitutions renders substitutions as a sorted KEY=VALUE list.
func FormatSubstitutions(subs map[string]string) string {
	if len(subs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+subs[k])
	}
	return strings.Join(parts, ",")
}

// ServiceAccountEmail returns the email of service account id in project.
func ServiceAccountEmail(id, project string) string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", id, project)
}

// ServiceAccountExists reports whether the service account exists.
func (c *Client) ServiceAccountExists(ctx context.Context, email string) (bool, error) {
	return c.describe(ctx, "iam", "service-accounts", "describe", email, "--format=value(email)")
}

// CreateServiceAccount creates service account id.
func (c *Client) CreateServiceAccount(ctx context.Context, id, displayName string) error {
	slog.Info("creating service account", "id", id, "project", c.project)
	_, err := c.run(ctx, "iam", "service-accounts", "create", id, "--display-name="+displayName)
	return err
}

// AddProjectBinding grants role to member at project scope.
// gcloud treats an existing identical binding as a no-op.
func (c *Client) AddProjectBinding(ctx context.Context, member, role string) error {
	_, err := c.runner.Run(ctx, defaults.GcloudBinary,
		"projects", "add-iam-policy-binding", c.project,
		"--member="+member,
		"--role="+role,
		"--condition=None",
		"--format=none",
		"--quiet")
	return err
}

// AddServiceAccountBinding grants role on service account email to member.
func (c *Client) AddServiceAccountBinding(ctx context.Context, email, member, role string) error {
	_, err := c.run(ctx, "iam", "service-accounts", "add-iam-policy-binding", email,
		"--member="+member,
		"--role="+role,
		"--format=none")
	return err
}

// ServiceAccountMember returns the IAM member string for a service account email.
func ServiceAccountMember(email string) string {
	return "serviceAccount:" + email
}
