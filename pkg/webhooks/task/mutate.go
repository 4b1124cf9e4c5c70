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

// Package task contains the admission webhooks defaulting and validating Task objects.
package task

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
)

type mutator struct {
	decoder admission.Decoder
}

// NewMutator returns the webhook defaulting task objects.
func NewMutator(scheme *runtime.Scheme) *admission.Webhook {
	return &admission.Webhook{Handler: &mutator{decoder: admission.NewDecoder(scheme)}}
}

// Handle implements the task mutating webhook logic.
//
//nolint:gocritic // The signature of this method is imposed by controller runtime.
func (m *mutator) Handle(_ context.Context, req admission.Request) admission.Response {
	task, err := decodeTask(m.decoder, req.Object)
	if err != nil {
		klog.Errorf("Failed decoding Task object: %v", err)
		return admission.Errored(http.StatusBadRequest, err)
	}

	mutateTask(task)

	marshaled, err := json.Marshal(task)
	if err != nil {
		klog.Errorf("Failed encoding task in admission response: %v", err)
		return admission.Errored(http.StatusInternalServerError, err)
	}

	return admission.PatchResponseFromRaw(req.Object.Raw, marshaled)
}

// mutateTask applies the task defaults: the primary container name is
// materialized, and every task gets a unique execution identifier.
func mutateTask(task *tasksv1alpha1.Task) {
	if task.Spec.PrimaryContainerName == "" {
		task.Spec.PrimaryContainerName = task.Name
	}

	if task.Labels == nil {
		task.Labels = map[string]string{}
	}
	if _, found := task.Labels[consts.ExecutionIDLabelKey]; !found {
		task.Labels[consts.ExecutionIDLabelKey] = uuid.NewString()
	}
}

func decodeTask(decoder admission.Decoder, obj runtime.RawExtension) (*tasksv1alpha1.Task, error) {
	var task tasksv1alpha1.Task
	err := decoder.DecodeRaw(obj, &task)
	return &task, err
}
