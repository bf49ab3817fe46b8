package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilexec "k8s.io/utils/exec"
	fakeexec "k8s.io/utils/exec/testing"
)

func fakeRunner(actions ...fakeexec.FakeAction) (*ExecRunner, *fakeexec.FakeCmd, *bytes.Buffer) {
	fcmd := &fakeexec.FakeCmd{RunScript: actions}
	fexec := &fakeexec.FakeExec{
		CommandScript: []fakeexec.FakeCommandAction{
			func(cmd string, args ...string) utilexec.Cmd {
				return fakeexec.InitFakeCmd(fcmd, cmd, args...)
			},
		},
		LookPathFunc: func(file string) (string, error) {
			if file == "gcloud" {
				return "/usr/bin/gcloud", nil
			}
			return "", utilexec.ErrExecutableNotFound
		},
	}
	var stream bytes.Buffer
	return NewExecRunner(WithExec(fexec), WithStream(&stream)), fcmd, &stream
}

func TestExecRunnerSuccess(t *testing.T) {
	r, fcmd, stream := fakeRunner(func() ([]byte, []byte, error) {
		return []byte("projects/p1/locations/us-central1/repositories/repo1\n"), []byte("progress\n"), nil
	})

	out, err := r.Run(context.Background(), "gcloud", "artifacts", "repositories", "describe", "repo1")
	require.NoError(t, err)
	assert.Equal(t, "projects/p1/locations/us-central1/repositories/repo1\n", string(out))
	assert.Equal(t, "progress\n", stream.String())
	assert.Equal(t, []string{"gcloud", "artifacts", "repositories", "describe", "repo1"}, fcmd.RunLog[0])
}

func TestExecRunnerFailure(t *testing.T) {
	r, _, _ := fakeRunner(func() ([]byte, []byte, error) {
		return nil, []byte("ERROR: (gcloud.artifacts.repositories.describe) NOT_FOUND: Requested entity was not found.\n"),
			&fakeexec.FakeExitError{Status: 1}
	})

	_, err := r.Run(context.Background(), "gcloud", "artifacts", "repositories", "describe", "repo1")
	require.Error(t, err)

	var ce *CommandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.ExitCode)
	assert.Equal(t, "gcloud", ce.Name)
	assert.True(t, StderrContains(err, "NOT_FOUND"))
	assert.False(t, StderrContains(err, "PERMISSION_DENIED"))
	assert.Contains(t, err.Error(), "exit code 1")
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestExecRunnerLookPath(t *testing.T) {
	r, _, _ := fakeRunner()

	path, err := r.LookPath("gcloud")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/gcloud", path)

	_, err = r.LookPath("helm")
	assert.Error(t, err)
}

func TestCommandErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "stderr last line",
			err:  &CommandError{Name: "helm", Args: []string{"upgrade"}, ExitCode: 1, Stderr: "line1\nError: boom"},
			want: "helm upgrade failed (exit code 1): Error: boom",
		},
		{
			name: "cause only",
			err:  &CommandError{Name: "helm", Args: []string{"version"}, Cause: errors.New("not started")},
			want: "helm version failed: not started",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStderrContainsNonCommandError(t *testing.T) {
	assert.False(t, StderrContains(errors.New("NOT_FOUND"), "NOT_FOUND"))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{Handler: func(c Call) ([]byte, error) {
		if c.Args[0] == "fail" {
			return nil, errors.New("boom")
		}
		return []byte("ok"), nil
	}}

	out, err := r.Run(context.Background(), "gcloud", "builds", "submit")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))

	_, err = r.Run(context.Background(), "helm", "fail")
	assert.Error(t, err)

	assert.Len(t, r.Calls(), 2)
	assert.Len(t, r.CallsWithPrefix("gcloud builds"), 1)
	assert.Equal(t, "helm fail", r.Calls()[1].String())
}
