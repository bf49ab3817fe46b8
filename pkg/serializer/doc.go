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

// Package serializer encodes values as JSON, YAML or a flattened table and
// writes them to a stream, a file, or a ConfigMap.
//
// File destinations are replaced atomically (temporary file and rename) so a
// concurrent reader such as the Prometheus file_sd watcher never sees a
// truncated document. ConfigMap destinations use the cm://namespace/name form
// and are written with server-side apply.
//
//	w := serializer.NewFileWriter(serializer.FormatJSON, "/etc/prometheus/targets/apigee_targets.json")
//	if err := w.Serialize(ctx, groups); err != nil {
//		return err
//	}
package serializer
