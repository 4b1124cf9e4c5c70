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
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
	"github.com/mao3267/flytekit/pkg/utils/indexer"
)

var _ = Describe("Task controller", func() {
	var (
		ctx        context.Context
		k8sClient  client.Client
		reconciler *Reconciler
		task       *tasksv1alpha1.Task
	)

	const (
		taskName  = "checksum"
		namespace = "workflows"
	)

	nsName := types.NamespacedName{Name: taskName, Namespace: namespace}
	req := ctrl.Request{NamespacedName: nsName}

	reconcile := func() (ctrl.Result, error) { return reconciler.Reconcile(ctx, req) }

	getTask := func() *tasksv1alpha1.Task {
		var retrieved tasksv1alpha1.Task
		Expect(k8sClient.Get(ctx, nsName, &retrieved)).To(Succeed())
		return &retrieved
	}

	getPod := func(name string) *corev1.Pod {
		var pod corev1.Pod
		Expect(k8sClient.Get(ctx, types.NamespacedName{Name: name, Namespace: namespace}, &pod)).To(Succeed())
		return &pod
	}

	setPodStatus := func(name string, status corev1.PodStatus) {
		pod := getPod(name)
		pod.Status = status
		Expect(k8sClient.Status().Update(ctx, pod)).To(Succeed())
	}

	primaryTerminated := func(exitCode int32) corev1.PodStatus {
		phase := corev1.PodSucceeded
		if exitCode != 0 {
			phase = corev1.PodFailed
		}
		return corev1.PodStatus{
			Phase: phase,
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:  taskName,
				State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: exitCode}},
			}},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()

		task = &tasksv1alpha1.Task{
			ObjectMeta: metav1.ObjectMeta{Name: taskName, Namespace: namespace},
			Spec: tasksv1alpha1.TaskSpec{
				Container: tasksv1alpha1.TaskContainer{Image: "busybox", Command: []string{"sha256sum", "/data"}},
			},
		}

		k8sClient = fake.NewClientBuilder().WithScheme(scheme).
			WithStatusSubresource(&tasksv1alpha1.Task{}).
			WithIndex(&corev1.Pod{}, indexer.FieldTaskNameFromPod, indexer.ExtractTaskName).
			Build()
		reconciler = &Reconciler{
			Client:   k8sClient,
			Scheme:   scheme,
			Recorder: record.NewFakeRecorder(16),
		}
	})

	// The task reaches the cluster only after every BeforeEach had a chance to
	// tweak its spec.
	JustBeforeEach(func() {
		Expect(k8sClient.Create(ctx, task)).To(Succeed())
	})

	When("a new task is reconciled", func() {
		JustBeforeEach(func() {
			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())
		})

		It("should protect the task with the finalizer", func() {
			Expect(getTask().Finalizers).To(ContainElement(consts.TaskFinalizer))
		})

		It("should create the first attempt pod", func() {
			pod := getPod(taskName + "-attempt-0")
			Expect(pod.Spec.Containers).To(HaveLen(1))
			Expect(pod.Spec.Containers[0].Image).To(Equal("busybox"))
			Expect(metav1.IsControlledBy(pod, getTask())).To(BeTrue())
		})

		It("should initialize the task status", func() {
			retrieved := getTask()
			Expect(retrieved.Status.Phase).To(Equal(tasksv1alpha1.TaskPhaseInitializing))
			Expect(retrieved.Status.PodName).To(Equal(taskName + "-attempt-0"))
			Expect(retrieved.Status.Attempts).To(BeNumerically("==", 1))
			Expect(retrieved.Status.StartTime).ToNot(BeNil())
		})
	})

	When("a referenced pod template is used", func() {
		BeforeEach(func() {
			task.Spec.PrimaryContainerName = "primary"
			task.Spec.PodTemplateName = "multi-container"

			template := &corev1.PodTemplate{
				ObjectMeta: metav1.ObjectMeta{Name: "multi-container", Namespace: namespace},
				Template: corev1.PodTemplateSpec{Spec: corev1.PodSpec{Containers: []corev1.Container{
					{Name: "primary", Image: "placeholder"},
					{Name: "logging-sidecar", Image: "fluentbit:v2"},
				}}},
			}
			Expect(k8sClient.Create(ctx, template)).To(Succeed())
		})

		It("should merge the template into the attempt pod", func() {
			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())

			pod := getPod(taskName + "-attempt-0")
			Expect(pod.Spec.Containers).To(HaveLen(2))
			Expect(pod.Spec.Containers[0].Image).To(Equal("busybox"))
			Expect(pod.Spec.Containers[1].Name).To(Equal("logging-sidecar"))
		})

		When("the referenced template does not exist", func() {
			BeforeEach(func() { task.Spec.PodTemplateName = "missing" })

			It("should surface the error without burning attempts", func() {
				result, err := reconcile()
				Expect(err).ToNot(HaveOccurred())
				Expect(result.RequeueAfter).To(BeNumerically(">", 0))

				retrieved := getTask()
				Expect(retrieved.Status.Phase).To(Equal(tasksv1alpha1.TaskPhasePending))
				Expect(retrieved.Status.Reason).To(Equal("PodTemplateNotFound"))
				Expect(retrieved.Status.Attempts).To(BeNumerically("==", 0))
			})
		})
	})

	When("the attempt pod is progressing", func() {
		JustBeforeEach(func() {
			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())
		})

		It("should report the running phase once the primary container starts", func() {
			setPodStatus(taskName+"-attempt-0", corev1.PodStatus{
				Phase: corev1.PodRunning,
				Conditions: []corev1.PodCondition{
					{Type: corev1.PodScheduled, Status: corev1.ConditionTrue},
				},
				ContainerStatuses: []corev1.ContainerStatus{{
					Name:  taskName,
					State: corev1.ContainerState{Running: &corev1.ContainerStateRunning{}},
				}},
			})

			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())

			retrieved := getTask()
			Expect(retrieved.Status.Phase).To(Equal(tasksv1alpha1.TaskPhaseRunning))
			Expect(retrieved.GetCondition(tasksv1alpha1.TaskConditionScheduled).Status).To(Equal(corev1.ConditionTrue))
			Expect(retrieved.GetCondition(tasksv1alpha1.TaskConditionReady).Status).To(Equal(corev1.ConditionTrue))
		})

		It("should complete the task when the primary container succeeds", func() {
			setPodStatus(taskName+"-attempt-0", primaryTerminated(0))

			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())

			retrieved := getTask()
			Expect(retrieved.Status.Phase).To(Equal(tasksv1alpha1.TaskPhaseSucceeded))
			Expect(retrieved.Status.CompletionTime).ToNot(BeNil())
			Expect(retrieved.GetCondition(tasksv1alpha1.TaskConditionCompleted).Status).To(Equal(corev1.ConditionTrue))
		})

		It("should not reconcile terminal tasks again", func() {
			setPodStatus(taskName+"-attempt-0", primaryTerminated(0))

			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())
			completion := getTask().Status.CompletionTime

			_, err = reconcile()
			Expect(err).ToNot(HaveOccurred())
			Expect(getTask().Status.CompletionTime).To(Equal(completion))
		})
	})

	When("the attempt pod fails", func() {
		JustBeforeEach(func() {
			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())
			setPodStatus(taskName+"-attempt-0", primaryTerminated(1))
		})

		When("the task has no retry budget", func() {
			It("should mark the task as failed", func() {
				_, err := reconcile()
				Expect(err).ToNot(HaveOccurred())

				retrieved := getTask()
				Expect(retrieved.Status.Phase).To(Equal(tasksv1alpha1.TaskPhaseFailed))
				Expect(retrieved.Status.CompletionTime).ToNot(BeNil())
			})
		})

		When("the task can still be retried", func() {
			BeforeEach(func() { task.Spec.Retries = 1 })

			It("should schedule a new attempt with backoff", func() {
				result, err := reconcile()
				Expect(err).ToNot(HaveOccurred())
				Expect(result.RequeueAfter).To(BeNumerically(">", 0))

				retrieved := getTask()
				Expect(retrieved.Status.Phase).To(Equal(tasksv1alpha1.TaskPhasePending))
				Expect(retrieved.Status.PodName).To(BeEmpty())
			})

			It("should create the second attempt pod on the next reconciliation", func() {
				_, err := reconcile()
				Expect(err).ToNot(HaveOccurred())
				_, err = reconcile()
				Expect(err).ToNot(HaveOccurred())

				pod := getPod(taskName + "-attempt-1")
				Expect(pod.Labels).To(HaveKeyWithValue(consts.TaskAttemptLabelKey, "1"))
				Expect(getTask().Status.Attempts).To(BeNumerically("==", 2))
			})

			It("should keep the failed pod around for debugging", func() {
				_, err := reconcile()
				Expect(err).ToNot(HaveOccurred())

				Expect(func() error {
					var pod corev1.Pod
					return k8sClient.Get(ctx, types.NamespacedName{Name: taskName + "-attempt-0", Namespace: namespace}, &pod)
				}()).To(Succeed())
			})
		})
	})

	When("the attempt pod disappears", func() {
		It("should account the event as a failed attempt", func() {
			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())

			Expect(k8sClient.Delete(ctx, getPod(taskName+"-attempt-0"))).To(Succeed())

			_, err = reconcile()
			Expect(err).ToNot(HaveOccurred())

			retrieved := getTask()
			Expect(retrieved.Status.Phase).To(Equal(tasksv1alpha1.TaskPhaseFailed))
			Expect(retrieved.Status.Reason).To(Equal("PodMissing"))
		})
	})

	When("a running task is deleted", func() {
		It("should tear down the pods and release the finalizer", func() {
			_, err := reconcile()
			Expect(err).ToNot(HaveOccurred())

			Expect(k8sClient.Delete(ctx, getTask())).To(Succeed())

			_, err = reconcile()
			Expect(err).ToNot(HaveOccurred())

			var retrieved tasksv1alpha1.Task
			Expect(apierrors.IsNotFound(k8sClient.Get(ctx, nsName, &retrieved))).To(BeTrue())

			var pods corev1.PodList
			Expect(k8sClient.List(ctx, &pods, client.InNamespace(namespace))).To(Succeed())
			Expect(pods.Items).To(BeEmpty())
		})
	})
})
