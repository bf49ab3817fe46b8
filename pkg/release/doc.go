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

// Package release applies the monitoring Helm release.
//
// The release is identified by (release_name, namespace) and applied with
// `helm upgrade --install --create-namespace`. Every apply sets three values:
// image.repository (untagged reference), image.tag, and ingressServiceName.
// All other values come from the chart defaults. There is no rollback of a
// partially applied release.
package release
