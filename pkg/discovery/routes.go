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
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// RouteGVR identifies the ApigeeRoute custom resource.
var RouteGVR = schema.GroupVersionResource{
	Group:    "apigee.cloud.google.com",
	Version:  "v1alpha2",
	Resource: "apigeeroutes",
}

// RouteListKind is the list kind of RouteGVR.
const RouteListKind = "ApigeeRouteList"

// internalPrefix marks routes served by the runtime itself.
const internalPrefix = "/__apigee__/"

// RouteMap maps hostnames to base path prefixes. Both hostnames and the
// prefixes of each hostname keep first-seen order without duplicates.
type RouteMap struct {
	hosts    []string
	prefixes map[string][]string
}

// NewRouteMap returns an empty RouteMap.
func NewRouteMap() *RouteMap {
	return &RouteMap{prefixes: map[string][]string{}}
}

// Add records prefix for host.
func (m *RouteMap) Add(host, prefix string) {
	existing, ok := m.prefixes[host]
	if !ok {
		m.hosts = append(m.hosts, host)
	}
	for _, p := range existing {
		if p == prefix {
			return
		}
	}
	m.prefixes[host] = append(existing, prefix)
}

// Hosts returns the hostnames in first-seen order.
func (m *RouteMap) Hosts() []string {
	return append([]string(nil), m.hosts...)
}

// Prefixes returns the prefixes of host in first-seen order.
func (m *RouteMap) Prefixes(host string) []string {
	return append([]string(nil), m.prefixes[host]...)
}

// Len returns the number of hostnames.
func (m *RouteMap) Len() int {
	return len(m.hosts)
}

// ParseRoutes builds the hostname map from ApigeeRoute objects. Routes
// without hostnames or HTTP rules are skipped, as are internal prefixes.
// Malformed fields are treated as absent.
func ParseRoutes(items []unstructured.Unstructured) *RouteMap {
	m := NewRouteMap()
	for i := range items {
		obj := items[i].Object
		hostnames, _, _ := unstructured.NestedStringSlice(obj, "spec", "hostnames")
		rules, _, _ := unstructured.NestedSlice(obj, "spec", "rules", "http")
		if len(hostnames) == 0 || len(rules) == 0 {
			continue
		}

		var prefixes []string
		for _, rule := range rules {
			if r, ok := rule.(map[string]any); ok {
				prefixes = append(prefixes, rulePrefixes(r)...)
			}
		}
		if len(prefixes) == 0 {
			continue
		}
		for _, host := range hostnames {
			for _, p := range prefixes {
				m.Add(host, p)
			}
		}
	}
	return m
}

func rulePrefixes(rule map[string]any) []string {
	matches, _, _ := unstructured.NestedSlice(rule, "matches")

	var out []string
	for _, match := range matches {
		mm, ok := match.(map[string]any)
		if !ok {
			continue
		}
		prefix, _, _ := unstructured.NestedString(mm, "uri", "prefixPattern")
		if prefix == "" {
			prefix, _, _ = unstructured.NestedString(mm, "uri", "prefix")
		}
		if prefix == "" || strings.HasPrefix(prefix, internalPrefix) {
			continue
		}
		out = append(out, prefix)
	}
	return out
}
