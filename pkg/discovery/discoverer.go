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

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/apigee-monitor/amctl/pkg/defaults"
	apperrors "github.com/apigee-monitor/amctl/pkg/errors"
	"github.com/apigee-monitor/amctl/pkg/metrics"
	"github.com/apigee-monitor/amctl/pkg/serializer"
)

// Discoverer regenerates the probe target file from the cluster's routes.
type Discoverer struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
	output    serializer.Serializer
	metrics   *metrics.Metrics

	namespace string
	service   string
	timeout   time.Duration
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithNamespace sets the namespace holding the routes and ingress service.
func WithNamespace(ns string) Option {
	return func(d *Discoverer) {
		d.namespace = ns
	}
}

// WithTimeout bounds each Kubernetes API call.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Discoverer) {
		d.timeout = timeout
	}
}

// WithMetrics records each run on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Discoverer) {
		d.metrics = m
	}
}

// NewDiscoverer returns a Discoverer reading the ingress service and routes
// and writing to output.
func NewDiscoverer(clientset kubernetes.Interface, dyn dynamic.Interface, service string, output serializer.Serializer, opts ...Option) *Discoverer {
	d := &Discoverer{
		clientset: clientset,
		dynamic:   dyn,
		output:    output,
		service:   service,
		namespace: defaults.DiscoveryNamespace,
		timeout:   defaults.DiscoveryK8sTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServiceIP returns the ClusterIP of the ingress service.
func (d *Discoverer) ServiceIP(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	svc, err := d.clientset.CoreV1().Services(d.namespace).Get(ctx, d.service, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return "", apperrors.Wrap(apperrors.ErrCodeDiscovery,
			fmt.Sprintf("service %s not found in namespace %s", d.service, d.namespace), err).
			WithRemediation("pass --service-name with the Apigee ingress service, e.g. apigee-ingressgateway-<env>-svc")
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeDiscovery,
			fmt.Sprintf("failed to read service %s/%s", d.namespace, d.service), err).
			WithRemediation("ensure the workload may get services in namespace %s", d.namespace)
	}

	ip := svc.Spec.ClusterIP
	if ip == "" || ip == "None" {
		return "", apperrors.New(apperrors.ErrCodeDiscovery,
			fmt.Sprintf("service %s/%s has no ClusterIP", d.namespace, d.service)).
			WithRemediation("use the ClusterIP ingress service, not a headless one")
	}
	return ip, nil
}

// Routes lists the ApigeeRoutes of the namespace.
func (d *Discoverer) Routes(ctx context.Context) (*RouteMap, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	list, err := d.dynamic.Resource(RouteGVR).Namespace(d.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeDiscovery,
			fmt.Sprintf("failed to list %s in namespace %s", RouteGVR.Resource, d.namespace), err).
			WithRemediation("ensure the Apigee CRDs are installed and the workload may list %s.%s",
				RouteGVR.Resource, RouteGVR.Group)
	}
	return ParseRoutes(list.Items), nil
}

// Discover computes the current target groups.
func (d *Discoverer) Discover(ctx context.Context) ([]TargetGroup, error) {
	ip, err := d.ServiceIP(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("found ingress service", "service", d.service, "ip", ip)

	routes, err := d.Routes(ctx)
	if err != nil {
		return nil, err
	}
	if routes.Len() == 0 {
		slog.Warn("no valid apigee routes found", "namespace", d.namespace)
	}
	return Generate(routes, ip), nil
}

// RunOnce discovers targets and writes them. Nothing is written on error so
// the previous file stays in place.
func (d *Discoverer) RunOnce(ctx context.Context) (int, error) {
	groups, err := d.Discover(ctx)
	if err == nil {
		if werr := d.output.Serialize(ctx, groups); werr != nil {
			err = apperrors.Wrap(apperrors.ErrCodeDiscovery, "failed to write targets", werr).
				WithRemediation("check the output location is writable")
		}
	}
	if d.metrics != nil {
		d.metrics.ObserveDiscovery(len(groups), err)
	}
	if err != nil {
		return 0, err
	}
	slog.Info("wrote targets", "count", len(groups))
	return len(groups), nil
}

// Run regenerates the targets every interval until ctx is done. A failed
// iteration is logged and retried at the next tick.
func (d *Discoverer) Run(ctx context.Context, interval time.Duration) {
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		if _, err := d.RunOnce(ctx); err != nil {
			slog.Error("target discovery failed", "error", err)
		}
	}, interval)
}
