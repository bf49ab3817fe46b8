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
	"fmt"

	"github.com/apigee-monitor/amctl/pkg/defaults"
)

// Labels is the label set attached to each probe target.
type Labels struct {
	// Hostname sets the HTTP Host header of the probe downstream.
	Hostname string `json:"apigee_hostname" yaml:"apigee_hostname"`
	BasePath string `json:"apigee_basepath" yaml:"apigee_basepath"`
	Job      string `json:"job" yaml:"job"`
}

// TargetGroup is one Prometheus file_sd entry.
type TargetGroup struct {
	Targets []string `json:"targets" yaml:"targets"`
	Labels  Labels   `json:"labels" yaml:"labels"`
}

// ProbeURL returns the health endpoint for prefix behind the ingress IP.
func ProbeURL(ip, prefix string) string {
	return fmt.Sprintf("https://%s/healthz%s", ip, prefix)
}

// Generate returns one target group per (hostname, prefix) in map order.
// The result is never nil so an empty map serializes as [].
func Generate(routes *RouteMap, ip string) []TargetGroup {
	groups := make([]TargetGroup, 0, routes.Len())
	for _, host := range routes.Hosts() {
		for _, prefix := range routes.Prefixes(host) {
			groups = append(groups, TargetGroup{
				Targets: []string{ProbeURL(ip, prefix)},
				Labels: Labels{
					Hostname: host,
					BasePath: prefix,
					Job:      defaults.DiscoveryJobLabel,
				},
			})
		}
	}
	return groups
}
