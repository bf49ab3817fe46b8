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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/client-go/kubernetes"
)

// ConfigMapURIScheme prefixes ConfigMap destinations: cm://namespace/name.
const ConfigMapURIScheme = "cm://"

const (
	fieldManager        = "amctl"
	configMapTimeout    = 30 * time.Second
	configMapDataPrefix = "targets"
)

// ConfigMapWriter writes serialized data to a ConfigMap with server-side
// apply. The ConfigMap is created if it does not exist.
type ConfigMapWriter struct {
	clientset kubernetes.Interface
	namespace string
	name      string
	format    Format
	labels    map[string]string
	now       func() time.Time
}

// NewConfigMapWriter returns a ConfigMapWriter for namespace/name.
func NewConfigMapWriter(clientset kubernetes.Interface, namespace, name string, format Format) *ConfigMapWriter {
	return &ConfigMapWriter{
		clientset: clientset,
		namespace: namespace,
		name:      name,
		format:    normalize(format),
		labels: map[string]string{
			"app.kubernetes.io/name":       "apigee-monitor",
			"app.kubernetes.io/managed-by": fieldManager,
		},
		now: time.Now,
	}
}

// DataKey returns the ConfigMap key holding the content, e.g. targets.json.
func (w *ConfigMapWriter) DataKey() string {
	return configMapDataPrefix + "." + w.format.Extension()
}

// Serialize applies the ConfigMap with v under DataKey.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	writeCtx, cancel := context.WithTimeout(ctx, configMapTimeout)
	defer cancel()

	content, err := Marshal(w.format, v)
	if err != nil {
		return err
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(w.labels).
		WithData(map[string]string{
			w.DataKey():  string(content),
			"timestamp": w.now().UTC().Format(time.RFC3339),
		})

	slog.Debug("applying configmap", "namespace", w.namespace, "name", w.name, "key", w.DataKey())

	_, err = w.clientset.CoreV1().ConfigMaps(w.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: fieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply configmap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

// ParseConfigMapURI parses cm://namespace/name.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	namespace, name, ok := strings.Cut(strings.TrimPrefix(uri, ConfigMapURIScheme), "/")
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(namespace)
	name = strings.TrimSpace(name)
	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	return namespace, name, nil
}

// IsConfigMapURI reports whether dest names a ConfigMap.
func IsConfigMapURI(dest string) bool {
	return strings.HasPrefix(strings.TrimSpace(dest), ConfigMapURIScheme)
}
