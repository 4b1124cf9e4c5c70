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

// Package consts contains the labels, annotations and names shared across the task plugin components.
package consts

const (
	// TaskNameLabelKey -> the label key identifying the task a pod has been created for.
	TaskNameLabelKey = "tasks.flytekit.dev/task-name"
	// TaskAttemptLabelKey -> the label key holding the attempt number of the pod.
	TaskAttemptLabelKey = "tasks.flytekit.dev/attempt"
	// ExecutionIDLabelKey -> the label key holding the unique identifier of the task execution.
	ExecutionIDLabelKey = "tasks.flytekit.dev/execution-id"
	// InterruptibleLabelKey -> the label key marking pods which can be scheduled on preemptible nodes.
	InterruptibleLabelKey = "tasks.flytekit.dev/interruptible"

	// ManagedByLabelKey -> the label key identifying the component managing an object.
	ManagedByLabelKey = "app.kubernetes.io/managed-by"
	// ManagedByTaskControllerValue -> the value assigned to the managed-by label on task pods.
	ManagedByTaskControllerValue = "task-controller"

	// PrimaryContainerAnnotationKey -> the annotation key propagating the primary container name to the pod.
	PrimaryContainerAnnotationKey = "tasks.flytekit.dev/primary-container-name"

	// DefaultPodTemplateName -> the name of the namespaced PodTemplate used as base
	// when a task specifies neither an inline template nor a template reference.
	DefaultPodTemplateName = "default-pod-template"

	// TaskFinalizer -> the finalizer ensuring running pods are torn down before a task disappears.
	TaskFinalizer = "tasks.flytekit.dev/finalizer"

	// TaskControllerFieldManager -> the field manager associated with the task controller mutations.
	TaskControllerFieldManager = "task-controller"
)
