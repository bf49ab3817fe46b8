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

package defaults

import "time"

// Settings file defaults applied when a key is absent.
const (
	// SettingsFile is the settings file read when --config is not given.
	SettingsFile = "config.ini"

	Region             = "us-central1"
	RepositoryName     = "apigee-monitor"
	ImageName          = "apigee-target-generator"
	ImageTag           = "latest"
	ReleaseName        = "apigee-monitor"
	ChartPath          = "./helm/apigee-monitor"
	Namespace          = "apigee-monitor"
	IngressServiceName = "apigee-ingressgateway"
	GSAName            = "apigee-monitor-gsa"
	BuildContext       = "./target-generator"
	CloudBuildFile     = "./cloudbuild.yaml"
)

// Descriptor file names validated before any remote call.
const (
	// BuildDescriptor must exist inside the build context directory.
	BuildDescriptor = "Dockerfile"

	// ChartDescriptor must exist inside the chart directory.
	ChartDescriptor = "Chart.yaml"
)

// External executables.
const (
	GcloudBinary = "gcloud"
	HelmBinary   = "helm"
)

// Artifact Registry repository settings.
const (
	RepositoryFormat      = "docker"
	RepositoryDescription = "Container images for the Apigee health monitor"
)

// Workload identity settings.
const (
	// MonitoringRole is granted to the GSA at project scope.
	MonitoringRole = "roles/monitoring.metricWriter"

	// WorkloadIdentityUserRole lets the KSA impersonate the GSA.
	WorkloadIdentityUserRole = "roles/iam.workloadIdentityUser"

	// KSANameSuffix is appended to the release name by the chart's fullname template.
	KSANameSuffix = "apigee-monitor"

	// GSAAnnotation is the KSA annotation naming the impersonated GSA.
	GSAAnnotation = "iam.gke.io/gcp-service-account"

	// GSADisplayName is used when the GSA is created.
	GSADisplayName = "Apigee health monitor"
)

// Release value override keys set on every apply.
const (
	ValueImageRepository    = "image.repository"
	ValueImageTag           = "image.tag"
	ValueIngressServiceName = "ingressServiceName"
)

// Discovery defaults.
const (
	// DiscoveryNamespace is the namespace holding ApigeeRoute resources.
	DiscoveryNamespace = "apigee"

	// DiscoveryOutputFile is the shared target file read by Prometheus file_sd.
	DiscoveryOutputFile = "/etc/prometheus/targets/apigee_targets.json"

	// DiscoveryJobLabel is the job label set on every target group.
	DiscoveryJobLabel = "apigee-health"

	// DiscoveryK8sTimeout bounds each Kubernetes API call made by discovery.
	DiscoveryK8sTimeout = 30 * time.Second
)
