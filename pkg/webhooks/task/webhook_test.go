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
	"encoding/json"

	jsonpatch "gomodules.xyz/jsonpatch/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	admissionv1 "k8s.io/api/admission/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
)

func encodeTask(task *tasksv1alpha1.Task) runtime.RawExtension {
	raw, err := json.Marshal(task)
	Expect(err).ToNot(HaveOccurred())
	return runtime.RawExtension{Raw: raw}
}

func forgeRequest(op admissionv1.Operation, task, oldTask *tasksv1alpha1.Task) admission.Request {
	req := admission.Request{AdmissionRequest: admissionv1.AdmissionRequest{Operation: op}}
	if task != nil {
		req.Object = encodeTask(task)
	}
	if oldTask != nil {
		req.OldObject = encodeTask(oldTask)
	}
	return req
}

var _ = Describe("Task mutating webhook", func() {
	var (
		task     *tasksv1alpha1.Task
		response admission.Response
	)

	BeforeEach(func() {
		task = &tasksv1alpha1.Task{
			ObjectMeta: metav1.ObjectMeta{Name: "process-data", Namespace: "flyte"},
			Spec: tasksv1alpha1.TaskSpec{
				Container: tasksv1alpha1.TaskContainer{Image: "busybox:1.36"},
			},
		}
	})

	JustBeforeEach(func() {
		webhook := NewMutator(scheme)
		response = webhook.Handle(context.Background(), forgeRequest(admissionv1.Create, task, nil))
	})

	patchFor := func(path string) *jsonpatch.Operation {
		for i := range response.Patches {
			if response.Patches[i].Path == path {
				return &response.Patches[i]
			}
		}
		return nil
	}

	When("the primary container name is unset", func() {
		It("should default it to the task name", func() {
			Expect(response.Allowed).To(BeTrue())
			patch := patchFor("/spec/primaryContainerName")
			Expect(patch).ToNot(BeNil())
			Expect(patch.Value).To(Equal("process-data"))
		})
	})

	When("the primary container name is already set", func() {
		BeforeEach(func() { task.Spec.PrimaryContainerName = "main" })

		It("should preserve the existing value", func() {
			Expect(response.Allowed).To(BeTrue())
			Expect(patchFor("/spec/primaryContainerName")).To(BeNil())
		})
	})

	When("the execution ID label is absent", func() {
		It("should assign a fresh execution ID", func() {
			Expect(response.Allowed).To(BeTrue())
			Expect(patchFor("/metadata/labels")).ToNot(BeNil())
		})
	})

	When("the task is already fully defaulted", func() {
		BeforeEach(func() {
			task.Spec.PrimaryContainerName = "main"
			task.Labels = map[string]string{consts.ExecutionIDLabelKey: "exec-123"}
		})

		It("should preserve the existing value", func() {
			Expect(response.Allowed).To(BeTrue())
			Expect(response.Patches).To(BeEmpty())
		})
	})

	When("the object cannot be decoded", func() {
		It("should return a failure response", func() {
			webhook := NewMutator(scheme)
			req := admission.Request{AdmissionRequest: admissionv1.AdmissionRequest{
				Operation: admissionv1.Create,
				Object:    runtime.RawExtension{Raw: []byte("not-a-task")},
			}}
			Expect(webhook.Handle(context.Background(), req).Allowed).To(BeFalse())
		})
	})
})

var _ = Describe("Task validating webhook", func() {
	var (
		task    *tasksv1alpha1.Task
		oldTask *tasksv1alpha1.Task
		objects []runtime.Object

		op       admissionv1.Operation
		response admission.Response
	)

	BeforeEach(func() {
		op = admissionv1.Create
		objects = nil
		oldTask = nil
		task = &tasksv1alpha1.Task{
			ObjectMeta: metav1.ObjectMeta{Name: "process-data", Namespace: "flyte"},
			Spec: tasksv1alpha1.TaskSpec{
				Container: tasksv1alpha1.TaskContainer{Image: "busybox:1.36"},
			},
		}
	})

	JustBeforeEach(func() {
		cl := fake.NewClientBuilder().WithScheme(scheme).WithRuntimeObjects(objects...).Build()
		webhook := NewValidator(cl, scheme)
		response = webhook.Handle(context.Background(), forgeRequest(op, task, oldTask))
	})

	When("creating a plain task", func() {
		It("should allow the request", func() {
			Expect(response.Allowed).To(BeTrue())
			Expect(response.Warnings).To(BeEmpty())
		})
	})

	When("both the inline template and the template reference are set", func() {
		BeforeEach(func() {
			task.Spec.PodTemplate = &corev1.PodTemplateSpec{}
			task.Spec.PodTemplateName = "shared-template"
		})

		It("should deny the request", func() {
			Expect(response.Allowed).To(BeFalse())
			Expect(response.Result.Message).To(ContainSubstring("mutually exclusive"))
		})
	})

	When("the referenced pod template exists", func() {
		BeforeEach(func() {
			task.Spec.PodTemplateName = "shared-template"
			objects = []runtime.Object{&corev1.PodTemplate{
				ObjectMeta: metav1.ObjectMeta{Name: "shared-template", Namespace: "flyte"},
			}}
		})

		It("should allow the request without warnings", func() {
			Expect(response.Allowed).To(BeTrue())
			Expect(response.Warnings).To(BeEmpty())
		})
	})

	When("the referenced pod template does not exist", func() {
		BeforeEach(func() { task.Spec.PodTemplateName = "shared-template" })

		It("should allow the request with a warning", func() {
			Expect(response.Allowed).To(BeTrue())
			Expect(response.Warnings).To(ContainElement(ContainSubstring("does not exist")))
		})
	})

	When("updating a task before execution started", func() {
		BeforeEach(func() {
			op = admissionv1.Update
			oldTask = task.DeepCopy()
			task.Spec.Container.Image = "busybox:1.37"
		})

		It("should allow the request", func() {
			Expect(response.Allowed).To(BeTrue())
		})
	})

	When("updating the spec after execution started", func() {
		BeforeEach(func() {
			op = admissionv1.Update
			oldTask = task.DeepCopy()
			oldTask.Status.Attempts = 1
			task.Spec.Container.Image = "busybox:1.37"
		})

		It("should deny the request", func() {
			Expect(response.Allowed).To(BeFalse())
			Expect(response.Result.Message).To(ContainSubstring("cannot be modified"))
		})
	})

	When("updating only the TTL after execution started", func() {
		BeforeEach(func() {
			op = admissionv1.Update
			oldTask = task.DeepCopy()
			oldTask.Status.Attempts = 1
			task.Spec.TTLSecondsAfterFinished = ptr.To(int32(300))
		})

		It("should allow the request", func() {
			Expect(response.Allowed).To(BeTrue())
		})
	})
})
