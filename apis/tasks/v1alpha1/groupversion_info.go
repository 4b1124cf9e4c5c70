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

// +kubebuilder:object:generate=true
// +groupName=tasks.flytekit.dev

// Package v1alpha1 contains the API types used to execute tasks as Kubernetes pods.
package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	// SchemeGroupVersion is group version used to register these objects.
	SchemeGroupVersion = schema.GroupVersion{Group: "tasks.flytekit.dev", Version: "v1alpha1"}

	// TaskKind is the kind name used to register the Task CRD.
	TaskKind = "Task"

	// TaskResource is the resource name used to register the Task CRD.
	TaskResource = "tasks"

	// TaskGroupResource is group resource used to register these objects.
	TaskGroupResource = schema.GroupResource{Group: SchemeGroupVersion.Group, Resource: TaskResource}

	// TaskGroupVersionResource is groupResourceVersion used to register these objects.
	TaskGroupVersionResource = SchemeGroupVersion.WithResource(TaskResource)

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme.
	SchemeBuilder = &scheme.Builder{GroupVersion: SchemeGroupVersion}

	// AddToScheme adds the types in this group-version to the given scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)

// Resource takes an unqualified resource and returns a Group qualified GroupResource.
func Resource(resource string) schema.GroupResource {
	return SchemeGroupVersion.WithResource(resource).GroupResource()
}
