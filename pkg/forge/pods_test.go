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

package forge_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
	"github.com/mao3267/flytekit/pkg/forge"
)

var _ = Describe("Pods forging", func() {
	var task *tasksv1alpha1.Task

	BeforeEach(func() {
		forge.Init(nil)

		task = &tasksv1alpha1.Task{
			ObjectMeta: metav1.ObjectMeta{Name: "train-model", Namespace: "workflows"},
			Spec: tasksv1alpha1.TaskSpec{
				Container: tasksv1alpha1.TaskContainer{
					Image:   "registry.example.com/trainer:v3",
					Command: []string{"python", "train.py"},
					Args:    []string{"--epochs", "10"},
					Env:     []corev1.EnvVar{{Name: "MODE", Value: "full"}},
				},
			},
		}
	})

	Describe("the TaskPod function", func() {
		When("no base template is provided", func() {
			It("should create a single-container pod with the task configuration", func() {
				pod := forge.TaskPod(task, nil, 0)

				Expect(pod.Name).To(Equal("train-model-attempt-0"))
				Expect(pod.Namespace).To(Equal("workflows"))
				Expect(pod.Spec.Containers).To(HaveLen(1))
				Expect(pod.Spec.Containers[0].Name).To(Equal("train-model"))
				Expect(pod.Spec.Containers[0].Image).To(Equal("registry.example.com/trainer:v3"))
				Expect(pod.Spec.Containers[0].Command).To(Equal([]string{"python", "train.py"}))
				Expect(pod.Spec.RestartPolicy).To(Equal(corev1.RestartPolicyNever))
			})

			It("should label the pod to link it back to the task", func() {
				pod := forge.TaskPod(task, nil, 2)

				Expect(pod.Labels).To(HaveKeyWithValue(consts.TaskNameLabelKey, "train-model"))
				Expect(pod.Labels).To(HaveKeyWithValue(consts.TaskAttemptLabelKey, "2"))
				Expect(pod.Labels).To(HaveKeyWithValue(consts.ManagedByLabelKey, consts.ManagedByTaskControllerValue))
				Expect(pod.Annotations).To(HaveKeyWithValue(consts.PrimaryContainerAnnotationKey, "train-model"))
				Expect(forge.AttemptFromPod(pod)).To(BeNumerically("==", 2))
			})
		})

		When("a multi-container base template is provided", func() {
			var base *corev1.PodTemplateSpec

			BeforeEach(func() {
				task.Spec.PrimaryContainerName = "primary"
				base = &corev1.PodTemplateSpec{
					ObjectMeta: metav1.ObjectMeta{
						Labels:      map[string]string{"team": "ml"},
						Annotations: map[string]string{"sidecar.example.com/inject": "true"},
					},
					Spec: corev1.PodSpec{
						ServiceAccountName: "trainer",
						Containers: []corev1.Container{
							{Name: "primary", Image: "placeholder", Env: []corev1.EnvVar{
								{Name: "MODE", Value: "quick"},
								{Name: "LOG_LEVEL", Value: "info"},
							}},
							{Name: "metrics-proxy", Image: "proxy:v1"},
						},
					},
				}
			})

			It("should merge the primary container, preserving the sidecars", func() {
				pod := forge.TaskPod(task, base, 0)

				Expect(pod.Spec.Containers).To(HaveLen(2))
				Expect(pod.Spec.Containers[0].Name).To(Equal("primary"))
				Expect(pod.Spec.Containers[0].Image).To(Equal("registry.example.com/trainer:v3"))
				Expect(pod.Spec.Containers[1].Name).To(Equal("metrics-proxy"))
				Expect(pod.Spec.Containers[1].Image).To(Equal("proxy:v1"))
				Expect(pod.Spec.ServiceAccountName).To(Equal("trainer"))
			})

			It("should merge the environment with task precedence", func() {
				pod := forge.TaskPod(task, base, 0)

				Expect(pod.Spec.Containers[0].Env).To(Equal([]corev1.EnvVar{
					{Name: "MODE", Value: "full"},
					{Name: "LOG_LEVEL", Value: "info"},
				}))
			})

			It("should merge the template meta with the forged one", func() {
				pod := forge.TaskPod(task, base, 0)

				Expect(pod.Labels).To(HaveKeyWithValue("team", "ml"))
				Expect(pod.Labels).To(HaveKeyWithValue(consts.TaskNameLabelKey, "train-model"))
				Expect(pod.Annotations).To(HaveKeyWithValue("sidecar.example.com/inject", "true"))
			})

			It("should not mutate the base template", func() {
				_ = forge.TaskPod(task, base, 0)

				Expect(base.Spec.Containers[0].Image).To(Equal("placeholder"))
				Expect(base.Spec.RestartPolicy).To(BeEmpty())
			})

			It("should be idempotent", func() {
				Expect(forge.TaskPod(task, base, 0)).To(Equal(forge.TaskPod(task, base, 0)))
			})
		})

		When("the template does not include the primary container", func() {
			It("should append it", func() {
				task.Spec.PrimaryContainerName = "primary"
				base := &corev1.PodTemplateSpec{Spec: corev1.PodSpec{
					Containers: []corev1.Container{{Name: "sidecar", Image: "sidecar:v1"}},
				}}

				pod := forge.TaskPod(task, base, 0)

				Expect(pod.Spec.Containers).To(HaveLen(2))
				Expect(pod.Spec.Containers[1].Name).To(Equal("primary"))
				Expect(pod.Spec.Containers[1].Image).To(Equal("registry.example.com/trainer:v3"))
			})
		})

		When("the task declares execution constraints", func() {
			It("should propagate the active deadline", func() {
				task.Spec.ActiveDeadlineSeconds = ptr.To(int64(600))

				pod := forge.TaskPod(task, nil, 0)
				Expect(pod.Spec.ActiveDeadlineSeconds).To(HaveValue(BeNumerically("==", 600)))
			})

			It("should tolerate preemptible nodes when interruptible", func() {
				task.Spec.Interruptible = ptr.To(true)

				pod := forge.TaskPod(task, nil, 0)
				Expect(pod.Spec.Tolerations).To(ContainElement(forge.InterruptibleToleration()))
			})
		})
	})

	Describe("the PrimaryContainer function", func() {
		type resourcesTestcase struct {
			taskResources    corev1.ResourceRequirements
			defaultResources corev1.ResourceList
			expected         corev1.ResourceRequirements
		}

		DescribeTable("resources assignment",
			func(c resourcesTestcase) {
				forge.Init(c.defaultResources)
				task.Spec.Container.Resources = c.taskResources

				container := forge.PrimaryContainer(task, &corev1.Container{Name: "primary"})
				Expect(container.Resources).To(Equal(c.expected))
			},

			Entry("task resources win over the defaults", resourcesTestcase{
				taskResources: corev1.ResourceRequirements{
					Requests: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("2")},
				},
				defaultResources: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("250m")},
				expected: corev1.ResourceRequirements{
					Requests: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("2")},
				},
			}),

			Entry("defaults apply when the task is silent", resourcesTestcase{
				defaultResources: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("250m")},
				expected: corev1.ResourceRequirements{
					Requests: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("250m")},
				},
			}),

			Entry("no defaults, no task resources", resourcesTestcase{
				expected: corev1.ResourceRequirements{},
			}),
		)
	})

	Describe("the MergeEnv function", func() {
		It("should return the base environment when there are no overrides", func() {
			base := []corev1.EnvVar{{Name: "A", Value: "1"}}
			Expect(forge.MergeEnv(base, nil)).To(Equal(base))
		})

		It("should append the override variables not present in the base", func() {
			merged := forge.MergeEnv(
				[]corev1.EnvVar{{Name: "A", Value: "1"}},
				[]corev1.EnvVar{{Name: "B", Value: "2"}},
			)
			Expect(merged).To(Equal([]corev1.EnvVar{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}))
		})

		It("should override the base variables in place", func() {
			merged := forge.MergeEnv(
				[]corev1.EnvVar{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}},
				[]corev1.EnvVar{{Name: "A", Value: "override"}},
			)
			Expect(merged).To(Equal([]corev1.EnvVar{{Name: "A", Value: "override"}, {Name: "B", Value: "2"}}))
		})
	})

	Describe("the TaskPodMetaInSync function", func() {
		var (
			task *tasksv1alpha1.Task
			pod  *corev1.Pod
		)

		BeforeEach(func() {
			task = &tasksv1alpha1.Task{ObjectMeta: metav1.ObjectMeta{Name: "process-data", Namespace: "flyte"}}
		})

		JustBeforeEach(func() { pod = forge.TaskPod(task, nil, 0) })

		It("should report a freshly forged pod as in sync", func() {
			Expect(forge.TaskPodMetaInSync(task, pod)).To(BeTrue())
		})

		It("should report a pod missing a forged label as out of sync", func() {
			delete(pod.Labels, consts.TaskNameLabelKey)
			Expect(forge.TaskPodMetaInSync(task, pod)).To(BeFalse())
		})

		It("should report a pod as out of sync when the task gained an execution ID", func() {
			task.Labels = map[string]string{consts.ExecutionIDLabelKey: "exec-123"}
			Expect(forge.TaskPodMetaInSync(task, pod)).To(BeFalse())

			pod.Labels[consts.ExecutionIDLabelKey] = "exec-123"
			Expect(forge.TaskPodMetaInSync(task, pod)).To(BeTrue())
		})
	})
})
