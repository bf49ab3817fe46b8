package serializer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestParseConfigMapURI(t *testing.T) {
	tests := []struct {
		name          string
		uri           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{name: "valid", uri: "cm://monitoring/apigee-targets", wantNamespace: "monitoring", wantName: "apigee-targets"},
		{name: "spaces", uri: "cm://monitoring / apigee-targets ", wantNamespace: "monitoring", wantName: "apigee-targets"},
		{name: "missing scheme", uri: "monitoring/apigee-targets", wantErr: true},
		{name: "wrong scheme", uri: "http://monitoring/apigee-targets", wantErr: true},
		{name: "missing name", uri: "cm://monitoring/", wantErr: true},
		{name: "missing namespace", uri: "cm:///apigee-targets", wantErr: true},
		{name: "missing separator", uri: "cm://monitoring", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, name, err := ParseConfigMapURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNamespace, ns)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestIsConfigMapURI(t *testing.T) {
	assert.True(t, IsConfigMapURI(" cm://a/b"))
	assert.False(t, IsConfigMapURI("/etc/prometheus/targets.json"))
}

func TestConfigMapWriter(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewClientset()
	w := NewConfigMapWriter(clientset, "monitoring", "apigee-targets", FormatJSON)
	w.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	assert.Equal(t, "targets.json", w.DataKey())

	require.NoError(t, w.Serialize(ctx, []string{"a"}))
	require.NoError(t, w.Serialize(ctx, []string{"b"}))

	cm, err := clientset.CoreV1().ConfigMaps("monitoring").Get(ctx, "apigee-targets", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"b\"\n]\n", cm.Data["targets.json"])
	assert.Equal(t, "2025-01-02T03:04:05Z", cm.Data["timestamp"])
	assert.Equal(t, "amctl", cm.Labels["app.kubernetes.io/managed-by"])
}
