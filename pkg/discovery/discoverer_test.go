package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/metrics"
	"github.com/apigee-monitor/amctl/pkg/serializer"
)

const serviceName = "apigee-ingressgateway-test1-svc"

func ingressService(ip string) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: serviceName, Namespace: "apigee"},
		Spec:       corev1.ServiceSpec{ClusterIP: ip},
	}
}

func dynamicClient(objs ...runtime.Object) *dynamicfake.FakeDynamicClient {
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{RouteGVR: RouteListKind}, objs...)
}

func routeObject(name string, hosts []any, prefixes ...string) runtime.Object {
	matches := make([]any, 0, len(prefixes))
	for _, p := range prefixes {
		matches = append(matches, match("prefix", p))
	}
	u := route(name, hosts, matches...)
	return &u
}

type captureSerializer struct {
	got any
	err error
}

func (c *captureSerializer) Serialize(_ context.Context, v any) error {
	c.got = v
	return c.err
}

func TestDiscover(t *testing.T) {
	d := NewDiscoverer(
		fake.NewClientset(ingressService("10.0.0.7")),
		dynamicClient(routeObject("r1", []any{"api.example.com"}, "/v1", "/__apigee__/health")),
		serviceName, &captureSerializer{},
	)

	groups, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"https://10.0.0.7/healthz/v1"}, groups[0].Targets)
}

func TestDiscoverServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		objects  []runtime.Object
		wantText string
	}{
		{name: "missing service", wantText: "not found in namespace apigee"},
		{name: "headless service", objects: []runtime.Object{ingressService("None")}, wantText: "has no ClusterIP"},
		{name: "no ip", objects: []runtime.Object{ingressService("")}, wantText: "has no ClusterIP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &captureSerializer{}
			d := NewDiscoverer(fake.NewClientset(tt.objects...), dynamicClient(), serviceName, out)

			_, err := d.RunOnce(context.Background())
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeDiscovery, apperrors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantText)
			assert.Nil(t, out.got, "nothing is written on error")
		})
	}
}

func TestDiscoverListError(t *testing.T) {
	dyn := dynamicClient()
	dyn.PrependReactor("list", "apigeeroutes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("the server could not find the requested resource")
	})
	d := NewDiscoverer(fake.NewClientset(ingressService("10.0.0.7")), dyn, serviceName, &captureSerializer{})

	_, err := d.Discover(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDiscovery, apperrors.CodeOf(err))
	assert.Contains(t, apperrors.RemediationOf(err), "apigeeroutes.apigee.cloud.google.com")
}

func TestRunOnceWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apigee_targets.json")
	m := metrics.New()
	d := NewDiscoverer(
		fake.NewClientset(ingressService("10.0.0.7")),
		dynamicClient(routeObject("r1", []any{"a.example.com", "b.example.com"}, "/v1")),
		serviceName, serializer.NewFileWriter(serializer.FormatJSON, path),
		WithMetrics(m),
	)

	n, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"targets": ["https://10.0.0.7/healthz/v1"], "labels": {"apigee_hostname": "a.example.com", "apigee_basepath": "/v1", "job": "apigee-health"}},
		{"targets": ["https://10.0.0.7/healthz/v1"], "labels": {"apigee_hostname": "b.example.com", "apigee_basepath": "/v1", "job": "apigee-health"}}
	]`, string(b))
}

func TestRunOnceNoRoutesWritesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apigee_targets.json")
	d := NewDiscoverer(fake.NewClientset(ingressService("10.0.0.7")), dynamicClient(),
		serviceName, serializer.NewFileWriter(serializer.FormatJSON, path))

	n, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(b))
}

func TestRunOnceWriteError(t *testing.T) {
	d := NewDiscoverer(fake.NewClientset(ingressService("10.0.0.7")), dynamicClient(),
		serviceName, &captureSerializer{err: errors.New("read-only file system")})

	_, err := d.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDiscovery, apperrors.CodeOf(err))
}

func TestWithNamespace(t *testing.T) {
	svc := ingressService("10.0.0.9")
	svc.Namespace = "apigee-prod"
	d := NewDiscoverer(fake.NewClientset(svc), dynamicClient(), serviceName, &captureSerializer{},
		WithNamespace("apigee-prod"), WithTimeout(time.Second))

	ip, err := d.ServiceIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", ip)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runs := 0
	out := &countingSerializer{onWrite: func() {
		runs++
		if runs == 2 {
			cancel()
		}
	}}
	d := NewDiscoverer(fake.NewClientset(ingressService("10.0.0.7")), dynamicClient(), serviceName, out)

	done := make(chan struct{})
	go func() {
		d.Run(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, runs, 2)
}

type countingSerializer struct {
	onWrite func()
}

func (c *countingSerializer) Serialize(context.Context, any) error {
	c.onWrite()
	return nil
}
