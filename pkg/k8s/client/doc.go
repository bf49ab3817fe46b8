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

// Package client builds Kubernetes clients from a kubeconfig.
//
// The kubeconfig is resolved from an explicit path, then KUBECONFIG, then
// ~/.kube/config. When none exists the in-cluster service account is used,
// which is how the discovery loop runs inside the cluster.
//
//	clients, err := client.BuildClients(kubeconfig)
//	if err != nil {
//	    return err
//	}
//	svc, err := clients.Typed.CoreV1().Services("apigee").Get(ctx, name, metav1.GetOptions{})
package client
