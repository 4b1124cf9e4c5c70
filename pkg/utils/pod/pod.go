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

// Package pod contains utility functions to inspect the status of the pods backing task attempts.
package pod

import (
	corev1 "k8s.io/api/core/v1"
)

// GetPodCondition returns the condition with the given type, or nil if not present.
func GetPodCondition(status *corev1.PodStatus, conditionType corev1.PodConditionType) *corev1.PodCondition {
	if status == nil {
		return nil
	}
	for i := range status.Conditions {
		if status.Conditions[i].Type == conditionType {
			return &status.Conditions[i]
		}
	}
	return nil
}

// GetContainerStatus returns the status of the container with the given name, or nil if not present.
func GetContainerStatus(status *corev1.PodStatus, name string) *corev1.ContainerStatus {
	if status == nil {
		return nil
	}
	for i := range status.ContainerStatuses {
		if status.ContainerStatuses[i].Name == name {
			return &status.ContainerStatuses[i]
		}
	}
	return nil
}

// IsScheduled returns whether the pod has been assigned to a node.
func IsScheduled(pod *corev1.Pod) bool {
	condition := GetPodCondition(&pod.Status, corev1.PodScheduled)
	return condition != nil && condition.Status == corev1.ConditionTrue
}
