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

// Package getters contains utility functions to retrieve the objects the task plugin deals with.
package getters

import (
	"context"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
	"github.com/mao3267/flytekit/pkg/utils/indexer"
)

// GetPodTemplate returns the PodTemplate with the given name, living in the given namespace.
func GetPodTemplate(ctx context.Context, cl client.Client, ns, name string) (*corev1.PodTemplate, error) {
	var template corev1.PodTemplate
	if err := cl.Get(ctx, types.NamespacedName{Namespace: ns, Name: name}, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// GetBasePodTemplate resolves the base pod template of the given task: the inline
// template wins over the referenced one, and when neither is specified the default
// namespace template is used (if present).
func GetBasePodTemplate(ctx context.Context, cl client.Client, task *tasksv1alpha1.Task) (*corev1.PodTemplateSpec, error) {
	if task.Spec.PodTemplate != nil {
		return task.Spec.PodTemplate.DeepCopy(), nil
	}

	if task.Spec.PodTemplateName != "" {
		template, err := GetPodTemplate(ctx, cl, task.Namespace, task.Spec.PodTemplateName)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to retrieve pod template %q", task.Spec.PodTemplateName)
		}
		return template.Template.DeepCopy(), nil
	}

	template, err := GetPodTemplate(ctx, cl, task.Namespace, consts.DefaultPodTemplateName)
	if err != nil {
		// The default template is a best effort lookup.
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return template.Template.DeepCopy(), nil
}

// ListTaskPods returns the pods created for the given task, across all its
// attempts, leveraging the task name field index.
func ListTaskPods(ctx context.Context, cl client.Client, task *tasksv1alpha1.Task) ([]corev1.Pod, error) {
	var pods corev1.PodList
	if err := cl.List(ctx, &pods, client.MatchingFields{indexer.FieldTaskNameFromPod: task.Name},
		client.InNamespace(task.Namespace)); err != nil {
		return nil, err
	}
	return pods.Items, nil
}

// GetTaskPod returns the pod backing the current attempt of the given task.
func GetTaskPod(ctx context.Context, cl client.Client, task *tasksv1alpha1.Task) (*corev1.Pod, error) {
	if task.Status.PodName == "" {
		return nil, apierrors.NewNotFound(corev1.Resource("pods"), task.Name)
	}

	var pod corev1.Pod
	if err := cl.Get(ctx, types.NamespacedName{Namespace: task.Namespace, Name: task.Status.PodName}, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}
