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

// Package pipeline runs the deploy and link workflows.
//
// A pipeline is an ordered list of Steps. Runner executes them one at a time,
// records an Outcome per step, and stops at the first error. The failing
// step's StructuredError is returned unchanged in the Result so the caller
// can map it to the exit status and remediation hint.
//
//	res := pipeline.NewRunner(pipeline.NameDeploy).Run(ctx, pipeline.Deploy(cfg, deps, runID)...)
//	if err := res.Err(); err != nil {
//	    return err
//	}
package pipeline
