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

package taskctrl

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
)

// ensureCondition sets the given condition on the task, refreshing the
// transition timestamp only when the status actually changes.
func ensureCondition(task *tasksv1alpha1.Task, conditionType tasksv1alpha1.TaskConditionType,
	status corev1.ConditionStatus, reason, message string) bool {
	for i := range task.Status.Conditions {
		condition := &task.Status.Conditions[i]
		if condition.Type != conditionType {
			continue
		}

		if condition.Status == status && condition.Reason == reason && condition.Message == message {
			return false
		}

		if condition.Status != status {
			condition.LastTransitionTime = metav1.Now()
		}
		condition.Status = status
		condition.Reason = reason
		condition.Message = message
		return true
	}

	task.Status.Conditions = append(task.Status.Conditions, tasksv1alpha1.TaskCondition{
		Type:               conditionType,
		Status:             status,
		Reason:             reason,
		Message:            message,
		LastTransitionTime: metav1.Now(),
	})
	return true
}
