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

	corev1 "k8s.io/api/core/v1"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	podutils "github.com/mao3267/flytekit/pkg/utils/pod"
)

const (
	// PodMissingReason -> the reason assigned to tasks whose attempt pod disappeared unexpectedly.
	PodMissingReason = "PodMissing"
	// DeadlineExceededReason -> the reason assigned to attempts killed by the active deadline.
	DeadlineExceededReason = "DeadlineExceeded"
	// PrimaryContainerFailedReason -> the reason assigned to attempts whose primary container terminated with a non-zero exit code.
	PrimaryContainerFailedReason = "PrimaryContainerFailed"
	// PrimaryContainerUnschedulableReason -> the reason assigned to attempts whose primary container can never start.
	PrimaryContainerUnschedulableReason = "PrimaryContainerUnstartable"
)

// AttemptOutcome represents the observed outcome of a single attempt pod,
// before the retry policy is applied.
type AttemptOutcome struct {
	Phase   tasksv1alpha1.TaskPhase
	Reason  string
	Message string
}

// permanentWaitingReasons are the container waiting reasons which can never recover,
// and hence fail the attempt without waiting for the active deadline.
var permanentWaitingReasons = map[string]struct{}{
	"InvalidImageName":           {},
	"ErrImageNeverPull":          {},
	"CreateContainerConfigError": {},
	"RunContainerError":          {},
}

// AttemptPhase derives the outcome of the current attempt from the status of its pod.
// A multi-container attempt succeeds as soon as the primary container terminates with
// a zero exit code, even while sidecar containers are still running.
func AttemptPhase(task *tasksv1alpha1.Task, pod *corev1.Pod) AttemptOutcome {
	primary := podutils.GetContainerStatus(&pod.Status, task.PrimaryContainerName())

	// The primary container verdict wins over the aggregated pod phase, to
	// support sidecar containers outliving the primary one.
	if primary != nil {
		if terminated := primary.State.Terminated; terminated != nil {
			if terminated.ExitCode == 0 {
				return AttemptOutcome{Phase: tasksv1alpha1.TaskPhaseSucceeded}
			}
			return AttemptOutcome{
				Phase:  tasksv1alpha1.TaskPhaseFailed,
				Reason: PrimaryContainerFailedReason,
				Message: fmt.Sprintf("primary container %q terminated with exit code %d (reason: %s)",
					primary.Name, terminated.ExitCode, terminated.Reason),
			}
		}

		if waiting := primary.State.Waiting; waiting != nil {
			if _, permanent := permanentWaitingReasons[waiting.Reason]; permanent {
				return AttemptOutcome{
					Phase:   tasksv1alpha1.TaskPhaseFailed,
					Reason:  PrimaryContainerUnschedulableReason,
					Message: fmt.Sprintf("primary container %q cannot start: %s: %s", primary.Name, waiting.Reason, waiting.Message),
				}
			}
			return AttemptOutcome{Phase: tasksv1alpha1.TaskPhaseInitializing, Reason: waiting.Reason}
		}

		if primary.State.Running != nil {
			return AttemptOutcome{Phase: tasksv1alpha1.TaskPhaseRunning}
		}
	}

	switch pod.Status.Phase {
	case corev1.PodSucceeded:
		return AttemptOutcome{Phase: tasksv1alpha1.TaskPhaseSucceeded}
	case corev1.PodFailed:
		reason := pod.Status.Reason
		if reason == "" {
			reason = PrimaryContainerFailedReason
		}
		return AttemptOutcome{
			Phase:   tasksv1alpha1.TaskPhaseFailed,
			Reason:  reason,
			Message: pod.Status.Message,
		}
	case corev1.PodRunning:
		return AttemptOutcome{Phase: tasksv1alpha1.TaskPhaseRunning}
	default:
		return AttemptOutcome{Phase: tasksv1alpha1.TaskPhaseInitializing}
	}
}
