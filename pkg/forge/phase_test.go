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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/forge"
)

var _ = Describe("Attempt phase derivation", func() {
	var task *tasksv1alpha1.Task

	BeforeEach(func() {
		task = &tasksv1alpha1.Task{
			ObjectMeta: metav1.ObjectMeta{Name: "etl", Namespace: "workflows"},
			Spec:       tasksv1alpha1.TaskSpec{PrimaryContainerName: "primary"},
		}
	})

	pod := func(phase corev1.PodPhase, primaryState corev1.ContainerState, sidecarStates ...corev1.ContainerState) *corev1.Pod {
		statuses := []corev1.ContainerStatus{{Name: "primary", State: primaryState}}
		for i := range sidecarStates {
			statuses = append(statuses, corev1.ContainerStatus{Name: "sidecar", State: sidecarStates[i]})
		}
		return &corev1.Pod{Status: corev1.PodStatus{Phase: phase, ContainerStatuses: statuses}}
	}

	running := corev1.ContainerState{Running: &corev1.ContainerStateRunning{}}
	succeeded := corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 0}}
	failed := corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 137, Reason: "OOMKilled"}}
	waiting := func(reason string) corev1.ContainerState {
		return corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: reason}}
	}

	type phaseTestcase struct {
		pod      *corev1.Pod
		expected tasksv1alpha1.TaskPhase
		reason   OmegaMatcher
	}

	DescribeTable("the AttemptPhase function",
		func(c phaseTestcase) {
			outcome := forge.AttemptPhase(task, c.pod)
			Expect(outcome.Phase).To(Equal(c.expected))
			if c.reason != nil {
				Expect(outcome.Reason).To(c.reason)
			}
		},

		Entry("pod pending, primary waiting on image pull", phaseTestcase{
			pod:      pod(corev1.PodPending, waiting("ImagePullBackOff")),
			expected: tasksv1alpha1.TaskPhaseInitializing,
			reason:   Equal("ImagePullBackOff"),
		}),

		Entry("pod pending, primary waiting on an invalid image", phaseTestcase{
			pod:      pod(corev1.PodPending, waiting("InvalidImageName")),
			expected: tasksv1alpha1.TaskPhaseFailed,
			reason:   Equal(forge.PrimaryContainerUnschedulableReason),
		}),

		Entry("pod running, primary running", phaseTestcase{
			pod:      pod(corev1.PodRunning, running),
			expected: tasksv1alpha1.TaskPhaseRunning,
		}),

		Entry("pod succeeded", phaseTestcase{
			pod:      pod(corev1.PodSucceeded, succeeded),
			expected: tasksv1alpha1.TaskPhaseSucceeded,
		}),

		Entry("primary succeeded while a sidecar is still running", phaseTestcase{
			pod:      pod(corev1.PodRunning, succeeded, running),
			expected: tasksv1alpha1.TaskPhaseSucceeded,
		}),

		Entry("primary failed while a sidecar is still running", phaseTestcase{
			pod:      pod(corev1.PodRunning, failed, running),
			expected: tasksv1alpha1.TaskPhaseFailed,
			reason:   Equal(forge.PrimaryContainerFailedReason),
		}),

		Entry("pod failed by the active deadline", phaseTestcase{
			pod: &corev1.Pod{Status: corev1.PodStatus{
				Phase:  corev1.PodFailed,
				Reason: forge.DeadlineExceededReason,
			}},
			expected: tasksv1alpha1.TaskPhaseFailed,
			reason:   Equal(forge.DeadlineExceededReason),
		}),

		Entry("pod failed with no primary container status", phaseTestcase{
			pod:      &corev1.Pod{Status: corev1.PodStatus{Phase: corev1.PodFailed}},
			expected: tasksv1alpha1.TaskPhaseFailed,
		}),

		Entry("pod created, no statuses yet", phaseTestcase{
			pod:      &corev1.Pod{Status: corev1.PodStatus{Phase: corev1.PodPending}},
			expected: tasksv1alpha1.TaskPhaseInitializing,
		}),
	)
})
