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

// Package cli implements the amctl command-line interface.
//
// # Commands
//
// deploy - Provision the registry, build the image, apply the release:
//
//	amctl deploy [--config config.ini]
//
// link - Bind the Google service account to the release's Kubernetes
// service account through Workload Identity. Requires a prior deploy:
//
//	amctl link [--kubeconfig ~/.kube/config]
//
// discover - Write the Prometheus file_sd targets for the Apigee health probes:
//
//	amctl discover --service-name apigee-ingressgateway-test1-svc [--interval 5m]
//
// config - Print the effective settings:
//
//	amctl config [--format yaml|json|table] [--validate]
//
// # Global Flags
//
//	--config, -c      Settings file (default: config.ini)
//	--log-level       debug, info, warn, error (default: info)
//	--kubeconfig, -k  Kubeconfig path
//	--metrics-file    Write run metrics in Prometheus text format
//
// # Environment Variables
//
//	AMCTL_CONFIG        Settings file path
//	LOG_LEVEL           Logging verbosity
//	KUBECONFIG          Kubeconfig path
//	AMCTL_METRICS_FILE  Metrics output file
//
// # Exit Codes
//
//	0  Success
//	1  Any validation or step failure
//
// A failure prints "error: <message>" and, when available, "hint: <remediation>"
// on stderr. Structured JSON logs also go to stderr.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/apigee-monitor/amctl/pkg/cli.version=1.0.0'"
package cli
