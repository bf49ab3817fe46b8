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

// Package discovery generates the Prometheus file_sd target list for the
// Apigee health probes.
//
// Each ApigeeRoute (apigee.cloud.google.com/v1alpha2) in the Apigee namespace
// contributes its hostnames and HTTP base path prefixes. Every (hostname,
// prefix) pair becomes one target group probing
// https://<ingress ClusterIP>/healthz<prefix> with labels apigee_hostname,
// apigee_basepath and job=apigee-health. Prefixes under /__apigee__/ are
// internal and skipped. An empty route set produces [].
package discovery
