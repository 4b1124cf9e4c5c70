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

package forge

import (
	"fmt"
	"strconv"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
)

// TaskPodName returns the name of the pod backing the given attempt of a task.
func TaskPodName(task *tasksv1alpha1.Task, attempt int32) string {
	return fmt.Sprintf("%s-attempt-%d", task.Name, attempt)
}

// TaskPodLabels returns the labels assigned to the pods created for the given task.
func TaskPodLabels(task *tasksv1alpha1.Task, attempt int32) labels.Set {
	return labels.Set{
		consts.TaskNameLabelKey:    task.Name,
		consts.TaskAttemptLabelKey: fmt.Sprintf("%d", attempt),
		consts.ManagedByLabelKey:   consts.ManagedByTaskControllerValue,
	}
}

// IsTaskPod returns whether the given object has been created by the task controller.
func IsTaskPod(obj metav1.Object) bool {
	return labels.Set(obj.GetLabels()).Has(consts.TaskNameLabelKey) &&
		obj.GetLabels()[consts.ManagedByLabelKey] == consts.ManagedByTaskControllerValue
}

// AttemptFromPod returns the attempt number recorded in the labels of a task pod.
func AttemptFromPod(pod metav1.Object) int32 {
	attempt, err := strconv.ParseInt(pod.GetLabels()[consts.TaskAttemptLabelKey], 10, 32)
	if err != nil {
		return 0
	}
	return int32(attempt)
}

// TaskPodMetaInSync returns whether the given pod already carries the labels
// and annotations forged for the task.
func TaskPodMetaInSync(task *tasksv1alpha1.Task, pod metav1.Object) bool {
	forged := labels.Merge(TaskPodLabels(task, AttemptFromPod(pod)), executionIDLabel(task))
	for key, value := range forged {
		if pod.GetLabels()[key] != value {
			return false
		}
	}
	return pod.GetAnnotations()[consts.PrimaryContainerAnnotationKey] == task.PrimaryContainerName()
}

func executionIDLabel(task *tasksv1alpha1.Task) labels.Set {
	if executionID, found := task.Labels[consts.ExecutionIDLabelKey]; found {
		return labels.Set{consts.ExecutionIDLabelKey: executionID}
	}
	return nil
}

// TaskPodMeta forges the object meta of the pod backing the given attempt of a task,
// merging the base template meta (if any) with the forged labels and annotations.
func TaskPodMeta(task *tasksv1alpha1.Task, template *metav1.ObjectMeta, attempt int32) metav1.ObjectMeta {
	meta := metav1.ObjectMeta{
		Name:      TaskPodName(task, attempt),
		Namespace: task.Namespace,
	}

	if template != nil {
		meta.Labels = labels.Merge(nil, labels.Set(template.Labels))
		meta.Annotations = labels.Merge(nil, labels.Set(template.Annotations))
	}

	meta.Labels = labels.Merge(meta.Labels, TaskPodLabels(task, attempt))

	if meta.Annotations == nil {
		meta.Annotations = map[string]string{}
	}
	meta.Annotations[consts.PrimaryContainerAnnotationKey] = task.PrimaryContainerName()
	if executionID, found := task.Labels[consts.ExecutionIDLabelKey]; found {
		meta.Labels[consts.ExecutionIDLabelKey] = executionID
	}

	return meta
}
