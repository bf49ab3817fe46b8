package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/apigee-monitor/amctl/pkg/config"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/gcloud"
	"github.com/apigee-monitor/amctl/pkg/shell"
)

type fakeLooker map[string]bool

func (f fakeLooker) LookPath(file string) (string, error) {
	if f[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

var allTools = fakeLooker{"gcloud": true, "helm": true}

// notFound answers every describe with a gcloud NOT_FOUND failure.
func notFound(c shell.Call) ([]byte, error) {
	if c.Name == "gcloud" && len(c.Args) > 2 && c.Args[2] == "describe" {
		return nil, &shell.CommandError{Name: c.Name, Args: c.Args, ExitCode: 1,
			Stderr: "ERROR: (gcloud) NOT_FOUND: Requested entity was not found."}
	}
	return nil, nil
}

// workspace lays out a build context and chart under a temp dir.
func workspace(t *testing.T) (buildContext, chart string) {
	t.Helper()
	root := t.TempDir()
	buildContext = filepath.Join(root, "target-generator")
	chart = filepath.Join(root, "helm", "apigee-monitor")
	require.NoError(t, os.MkdirAll(buildContext, 0o755))
	require.NoError(t, os.MkdirAll(chart, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(buildContext, "Dockerfile"), []byte("FROM scratch\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(chart, "Chart.yaml"), []byte("apiVersion: v2\nname: apigee-monitor\nversion: 0.1.0\n"), 0o600))
	return buildContext, chart
}

func deployConfig(t *testing.T, opts ...config.Option) *config.DeploymentConfig {
	buildContext, chart := workspace(t)
	base := []config.Option{
		config.WithProjectID("p1"),
		config.WithBackend(config.ArtifactRegistry{Region: "us-central1", Repository: "repo1"}),
		config.WithImage("img", "v1"),
		config.WithRelease("mon", chart, "monitoring"),
		config.WithBuildContext(buildContext),
	}
	return config.NewDeploymentConfig(append(base, opts...)...)
}

func deployDeps(rec *shell.Recorder, looker shell.PathLooker) DeployDeps {
	client := gcloud.NewClient(rec, "p1")
	return DeployDeps{
		Looker:       looker,
		Repositories: client,
		Submitter:    client,
		Helm:         rec,
	}
}

func commandLines(rec *shell.Recorder) []string {
	var lines []string
	for _, c := range rec.Calls() {
		lines = append(lines, c.String())
	}
	return lines
}

func TestDeployPipeline(t *testing.T) {
	cfg := deployConfig(t)
	rec := &shell.Recorder{Handler: notFound}

	runner := NewRunner(NameDeploy)
	res := runner.Run(context.Background(), Deploy(cfg, deployDeps(rec, allTools), runner.RunID())...)
	require.NoError(t, res.Err())
	require.Len(t, res.Outcomes, 4)

	lines := commandLines(rec)
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "gcloud artifacts repositories describe repo1"))
	assert.True(t, strings.HasPrefix(lines[1], "gcloud artifacts repositories create repo1"))
	assert.Contains(t, lines[2], "--tag=us-central1-docker.pkg.dev/p1/repo1/img:v1")
	assert.Contains(t, lines[3], "--set image.repository=us-central1-docker.pkg.dev/p1/repo1/img")
	assert.Contains(t, lines[3], "--set image.tag=v1")
}

func TestDeployPipelineDockerHub(t *testing.T) {
	buildContext, chart := workspace(t)
	pipelineFile := filepath.Join(filepath.Dir(buildContext), "cloudbuild.yaml")
	require.NoError(t, os.WriteFile(pipelineFile, []byte("steps:\n- name: gcr.io/cloud-builders/docker\n"), 0o600))

	cfg := config.NewDeploymentConfig(
		config.WithProjectID("p1"),
		config.WithBackend(config.DockerHub{Username: "alice", SecretID: "hub-token"}),
		config.WithImage("img", "v1"),
		config.WithRelease("mon", chart, "monitoring"),
		config.WithBuildContext(buildContext),
		config.WithCloudBuildFile(pipelineFile),
	)
	rec := &shell.Recorder{}

	res := NewRunner(NameDeploy).Run(context.Background(), Deploy(cfg, deployDeps(rec, allTools), "run-1")...)
	require.NoError(t, res.Err())

	lines := commandLines(rec)
	require.Len(t, lines, 2, "docker hub needs no repository calls")
	assert.Contains(t, lines[0], "_IMAGE_NAME=alice/img:v1")
	assert.Contains(t, lines[1], "--set image.repository=alice/img --set")
}

func TestDeployPipelineFailsBeforeExternalCalls(t *testing.T) {
	tests := []struct {
		name     string
		cfg      func(t *testing.T) *config.DeploymentConfig
		looker   shell.PathLooker
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "placeholder project",
			cfg:      func(t *testing.T) *config.DeploymentConfig { return deployConfig(t, config.WithProjectID("your-gcp-project-id")) },
			looker:   allTools,
			wantCode: apperrors.ErrCodeConfig,
		},
		{
			name:     "helm missing",
			cfg:      func(t *testing.T) *config.DeploymentConfig { return deployConfig(t) },
			looker:   fakeLooker{"gcloud": true},
			wantCode: apperrors.ErrCodePrerequisite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &shell.Recorder{}
			res := NewRunner(NameDeploy).Run(context.Background(), Deploy(tt.cfg(t), deployDeps(rec, tt.looker), "r")...)
			require.Error(t, res.Err())
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(res.Err()))
			assert.Equal(t, StepPreflight, res.Failed().Step)
			assert.Empty(t, rec.Calls())
		})
	}
}

func TestDeployPipelineStopsOnRegistryFailure(t *testing.T) {
	cfg := deployConfig(t)
	rec := &shell.Recorder{Handler: func(c shell.Call) ([]byte, error) {
		return nil, &shell.CommandError{Name: c.Name, Args: c.Args, ExitCode: 1, Stderr: "PERMISSION_DENIED"}
	}}

	res := NewRunner(NameDeploy).Run(context.Background(), Deploy(cfg, deployDeps(rec, allTools), "r")...)
	require.Error(t, res.Err())
	assert.Equal(t, apperrors.ErrCodeRegistry, apperrors.CodeOf(res.Err()))
	assert.Len(t, res.Outcomes, 2)
	assert.Len(t, rec.Calls(), 1)
}

func linkClient(objs ...*corev1.ServiceAccount) KubeClientFunc {
	clientset := fake.NewClientset()
	for _, o := range objs {
		_ = clientset.Tracker().Add(o)
	}
	return func() (kubernetes.Interface, error) { return clientset, nil }
}

func TestLinkPipeline(t *testing.T) {
	cfg := config.NewDeploymentConfig(
		config.WithProjectID("p1"),
		config.WithRelease("mon", "./chart", "monitoring"),
	)
	rec := &shell.Recorder{Handler: notFound}
	ksa := &corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: "mon-apigee-monitor", Namespace: "monitoring"}}

	res := NewRunner(NameLink).Run(context.Background(), Link(cfg, LinkDeps{
		Looker:     fakeLooker{"gcloud": true},
		IAM:        gcloud.NewClient(rec, "p1"),
		KubeClient: linkClient(ksa),
	})...)
	require.NoError(t, res.Err())

	lines := commandLines(rec)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "iam service-accounts describe apigee-monitor-gsa@p1.iam.gserviceaccount.com")
	assert.Contains(t, lines[1], "iam service-accounts create apigee-monitor-gsa")
	assert.Contains(t, lines[2], "--role=roles/monitoring.metricWriter")
	assert.Contains(t, lines[3], "--member=serviceAccount:p1.svc.id.goog[monitoring/mon-apigee-monitor]")
}

func TestLinkPipelineKubeClientError(t *testing.T) {
	cfg := config.NewDeploymentConfig(config.WithProjectID("p1"))
	res := NewRunner(NameLink).Run(context.Background(), Link(cfg, LinkDeps{
		Looker: fakeLooker{"gcloud": true},
		IAM:    gcloud.NewClient(&shell.Recorder{}, "p1"),
		KubeClient: func() (kubernetes.Interface, error) {
			return nil, errors.New("no kubeconfig")
		},
	})...)
	require.Error(t, res.Err())
	assert.Equal(t, apperrors.ErrCodeIdentity, apperrors.CodeOf(res.Err()))
	assert.Contains(t, apperrors.RemediationOf(res.Err()), "kubeconfig")
}
