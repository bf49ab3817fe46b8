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

package client

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Clients bundles the typed and dynamic clients of one cluster.
type Clients struct {
	Typed   kubernetes.Interface
	Dynamic dynamic.Interface
	Config  *rest.Config
}

// ResolveKubeconfig returns the kubeconfig path to use, or "" for in-cluster:
//  1. the explicit path
//  2. the KUBECONFIG environment variable
//  3. ~/.kube/config, if it exists
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// BuildRestConfig returns the rest config for kubeconfig, falling back to the
// in-cluster service account when no kubeconfig resolves.
func BuildRestConfig(kubeconfig string) (*rest.Config, error) {
	path := ResolveKubeconfig(kubeconfig)

	// in-cluster directly avoids "Neither --kubeconfig nor --master was specified"
	if path == "" {
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
		return config, nil
	}

	config, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, fmt.Errorf("failed to build kube config from %s: %w", path, err)
	}
	return config, nil
}

// BuildKubeClient creates a typed Kubernetes client from kubeconfig.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	config, err := BuildRestConfig(kubeconfig)
	if err != nil {
		return nil, nil, err
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return client, config, nil
}

// BuildClients creates typed and dynamic clients sharing one rest config.
func BuildClients(kubeconfig string) (*Clients, error) {
	typed, config, err := BuildKubeClient(kubeconfig)
	if err != nil {
		return nil, err
	}

	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return &Clients{Typed: typed, Dynamic: dyn, Config: config}, nil
}
