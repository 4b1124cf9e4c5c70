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

package task

import (
	"context"
	"fmt"
	"net/http"

	admissionv1 "k8s.io/api/admission/v1"
	corev1 "k8s.io/api/core/v1"
	apiequality "k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
)

type validator struct {
	client  client.Client
	decoder admission.Decoder
}

// NewValidator returns the webhook validating task objects.
func NewValidator(cl client.Client, scheme *runtime.Scheme) *admission.Webhook {
	return &admission.Webhook{Handler: &validator{
		client:  cl,
		decoder: admission.NewDecoder(scheme),
	}}
}

// Handle implements the task validating webhook logic.
//
//nolint:gocritic // The signature of this method is imposed by controller runtime.
func (v *validator) Handle(ctx context.Context, req admission.Request) admission.Response {
	switch req.Operation {
	case admissionv1.Create:
		return v.handleCreate(ctx, &req)
	case admissionv1.Update:
		return v.handleUpdate(&req)
	default:
		return admission.Allowed("")
	}
}

func (v *validator) handleCreate(ctx context.Context, req *admission.Request) admission.Response {
	task, err := decodeTask(v.decoder, req.Object)
	if err != nil {
		klog.Errorf("Failed decoding Task object: %v", err)
		return admission.Errored(http.StatusBadRequest, err)
	}

	if resp := validateTaskSpec(&task.Spec); !resp.Allowed {
		return resp
	}

	// A dangling template reference is tolerated at admission time, since the
	// template may be created before the first attempt starts. The controller
	// requeues until it appears, so we only surface a warning here.
	if task.Spec.PodTemplateName != "" {
		var template corev1.PodTemplate
		nsName := client.ObjectKey{Namespace: task.Namespace, Name: task.Spec.PodTemplateName}
		if err := v.client.Get(ctx, nsName, &template); err != nil {
			if !apierrors.IsNotFound(err) {
				klog.Errorf("Failed retrieving PodTemplate %q: %v", klog.KRef(nsName.Namespace, nsName.Name), err)
				return admission.Errored(http.StatusInternalServerError, err)
			}
			return admission.Allowed("").WithWarnings(fmt.Sprintf(
				"PodTemplate %q does not exist: the task will not start until it is created", task.Spec.PodTemplateName))
		}
	}

	return admission.Allowed("")
}

func (v *validator) handleUpdate(req *admission.Request) admission.Response {
	task, err := decodeTask(v.decoder, req.Object)
	if err != nil {
		klog.Errorf("Failed decoding Task object: %v", err)
		return admission.Errored(http.StatusBadRequest, err)
	}

	oldTask, err := decodeTask(v.decoder, req.OldObject)
	if err != nil {
		klog.Errorf("Failed decoding old Task object: %v", err)
		return admission.Errored(http.StatusBadRequest, err)
	}

	if resp := validateTaskSpec(&task.Spec); !resp.Allowed {
		return resp
	}

	// Once the first attempt has started the spec is frozen, with the only
	// exception of the TTL, which can still be tuned to anticipate or delay
	// the garbage collection of the terminated task.
	if oldTask.Status.Attempts > 0 && !specEquivalent(&oldTask.Spec, &task.Spec) {
		return admission.Denied("the task spec cannot be modified once execution has started (only ttlSecondsAfterFinished is mutable)")
	}

	return admission.Allowed("")
}

// validateTaskSpec enforces the structural constraints not expressible
// through CRD validation markers.
func validateTaskSpec(spec *tasksv1alpha1.TaskSpec) admission.Response {
	if spec.PodTemplate != nil && spec.PodTemplateName != "" {
		return admission.Denied("podTemplate and podTemplateName are mutually exclusive")
	}

	return admission.Allowed("")
}

// specEquivalent returns whether the two specs are equal, ignoring the
// mutable fields.
func specEquivalent(oldSpec, newSpec *tasksv1alpha1.TaskSpec) bool {
	oldCopy := oldSpec.DeepCopy()
	newCopy := newSpec.DeepCopy()
	oldCopy.TTLSecondsAfterFinished = nil
	newCopy.TTLSecondsAfterFinished = nil
	return apiequality.Semantic.DeepEqual(oldCopy, newCopy)
}
