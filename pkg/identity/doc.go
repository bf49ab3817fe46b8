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

// Package identity links the cloud service account (GSA) to the Kubernetes
// service account (KSA) created by the release, using Workload Identity.
//
// The link is established in order:
//
//  1. ensure the GSA exists
//  2. grant it roles/monitoring.metricWriter on the project
//  3. confirm the KSA <release>-apigee-monitor exists in the namespace
//  4. allow the KSA to impersonate the GSA (roles/iam.workloadIdentityUser)
//  5. annotate the KSA with iam.gke.io/gcp-service-account
//
// Each step is a no-op when its target state already holds. A missing KSA
// fails the link after step 2.
package identity
