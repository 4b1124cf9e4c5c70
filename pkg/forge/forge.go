// Copyright 2019-2025 The Flyte Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package forge contains the logic building the pods backing task attempts,
// merging the task configuration into the base pod templates.
package forge

import (
	corev1 "k8s.io/api/core/v1"
)

var (
	// DefaultResources -> the resource requests assigned to primary containers which do not specify their own.
	DefaultResources corev1.ResourceList
)

// Init initializes the forging logic.
func Init(defaultResources corev1.ResourceList) {
	DefaultResources = defaultResources
}
