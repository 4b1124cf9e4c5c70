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
	corev1 "k8s.io/api/core/v1"
	corev1apply "k8s.io/client-go/applyconfigurations/core/v1"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
)

// TaskPod forges the pod backing the given attempt of a task, merging the
// primary container into the base pod template. A nil base is equivalent to an
// empty template.
func TaskPod(task *tasksv1alpha1.Task, base *corev1.PodTemplateSpec, attempt int32) *corev1.Pod {
	if base == nil {
		base = &corev1.PodTemplateSpec{}
	}

	return &corev1.Pod{
		ObjectMeta: TaskPodMeta(task, &base.ObjectMeta, attempt),
		Spec:       TaskPodSpec(task, base.Spec.DeepCopy()),
	}
}

// TaskPodSpec forges the spec of a task pod, given the base template spec.
// It expects the base to be a deepcopy, as it is mutated.
func TaskPodSpec(task *tasksv1alpha1.Task, base *corev1.PodSpec) corev1.PodSpec {
	primary := task.PrimaryContainerName()

	merged := false
	for i := range base.Containers {
		if base.Containers[i].Name == primary {
			base.Containers[i] = *PrimaryContainer(task, &base.Containers[i])
			merged = true
			break
		}
	}
	if !merged {
		base.Containers = append(base.Containers, *PrimaryContainer(task, &corev1.Container{Name: primary}))
	}

	// Pods backing task attempts are never restarted in place: failure handling
	// is performed at the task level through new attempts.
	base.RestartPolicy = corev1.RestartPolicyNever

	if task.Spec.ActiveDeadlineSeconds != nil {
		base.ActiveDeadlineSeconds = task.Spec.ActiveDeadlineSeconds
	}

	if task.Spec.Interruptible != nil && *task.Spec.Interruptible {
		base.Tolerations = append(base.Tolerations, InterruptibleToleration())
	}

	return *base
}

// PrimaryContainer forges the primary container of a task, merging the task
// configuration into the base container. Task-level values win field by field,
// while environment variables are appended with task precedence.
func PrimaryContainer(task *tasksv1alpha1.Task, base *corev1.Container) *corev1.Container {
	container := base.DeepCopy()
	spec := &task.Spec.Container

	if spec.Image != "" {
		container.Image = spec.Image
	}
	if len(spec.Command) > 0 {
		container.Command = spec.Command
	}
	if len(spec.Args) > 0 {
		container.Args = spec.Args
	}

	container.Env = MergeEnv(container.Env, spec.Env)

	if len(spec.Resources.Requests) > 0 || len(spec.Resources.Limits) > 0 {
		container.Resources = *spec.Resources.DeepCopy()
	} else if len(container.Resources.Requests) == 0 && len(DefaultResources) > 0 {
		container.Resources.Requests = DefaultResources.DeepCopy()
	}

	return container
}

// MergeEnv merges the task environment variables into the base ones: entries
// sharing the name of a task-level variable are overridden, the others are
// preserved in their original order.
func MergeEnv(base, overrides []corev1.EnvVar) []corev1.EnvVar {
	if len(overrides) == 0 {
		return base
	}

	overridden := make(map[string]*corev1.EnvVar, len(overrides))
	for i := range overrides {
		overridden[overrides[i].Name] = &overrides[i]
	}

	merged := make([]corev1.EnvVar, 0, len(base)+len(overrides))
	for i := range base {
		if override, found := overridden[base[i].Name]; found {
			merged = append(merged, *override.DeepCopy())
			delete(overridden, base[i].Name)
			continue
		}
		merged = append(merged, base[i])
	}

	for i := range overrides {
		if _, pending := overridden[overrides[i].Name]; pending {
			merged = append(merged, *overrides[i].DeepCopy())
		}
	}

	return merged
}

// InterruptibleToleration returns the toleration assigned to interruptible
// task pods, allowing them to be scheduled on preemptible nodes.
func InterruptibleToleration() corev1.Toleration {
	return corev1.Toleration{
		Key:      consts.InterruptibleLabelKey,
		Operator: corev1.TolerationOpExists,
		Effect:   corev1.TaintEffectNoSchedule,
	}
}

// TaskPodApply forges the apply patch propagating the task labels and
// annotations to the pod backing the current attempt.
func TaskPodApply(task *tasksv1alpha1.Task, pod *corev1.Pod) *corev1apply.PodApplyConfiguration {
	return corev1apply.Pod(pod.GetName(), pod.GetNamespace()).
		WithLabels(TaskPodLabels(task, AttemptFromPod(pod))).
		WithLabels(executionIDLabel(task)).
		WithAnnotations(map[string]string{consts.PrimaryContainerAnnotationKey: task.PrimaryContainerName()})
}
