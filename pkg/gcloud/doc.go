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

// Package gcloud wraps the gcloud CLI commands used by amctl: Artifact
// Registry repositories, Cloud Build submissions and IAM service accounts
// and policy bindings.
//
// Describe calls map gcloud's NOT_FOUND responses to a false result so
// callers can implement read-then-create provisioning; every other failure
// is returned as a shell.CommandError.
package gcloud
