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

package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// TaskPhase represents the observed execution phase of a Task.
type TaskPhase string

const (
	// TaskPhasePending -> the task has been accepted, but no pod has been created yet.
	TaskPhasePending TaskPhase = "Pending"
	// TaskPhaseInitializing -> the pod backing the task exists, but its containers are not running yet.
	TaskPhaseInitializing TaskPhase = "Initializing"
	// TaskPhaseRunning -> the primary container of the task is running.
	TaskPhaseRunning TaskPhase = "Running"
	// TaskPhaseSucceeded -> the primary container terminated with a zero exit code.
	TaskPhaseSucceeded TaskPhase = "Succeeded"
	// TaskPhaseFailed -> the task exhausted its retry budget, or hit a permanent failure.
	TaskPhaseFailed TaskPhase = "Failed"
	// TaskPhaseAborted -> the task has been deleted while still running.
	TaskPhaseAborted TaskPhase = "Aborted"
)

// Terminal returns whether the phase is a terminal one.
func (p TaskPhase) Terminal() bool {
	return p == TaskPhaseSucceeded || p == TaskPhaseFailed || p == TaskPhaseAborted
}

// TaskConditionType represents different conditions that a task could assume.
type TaskConditionType string

const (
	// TaskConditionScheduled -> the pod backing the task has been created and assigned to a node.
	TaskConditionScheduled TaskConditionType = "Scheduled"
	// TaskConditionReady -> the primary container of the task has started.
	TaskConditionReady TaskConditionType = "Ready"
	// TaskConditionCompleted -> the task reached a terminal phase.
	TaskConditionCompleted TaskConditionType = "Completed"
)

// TaskCondition contains details about the state of a task.
type TaskCondition struct {
	// Type of the task condition.
	Type TaskConditionType `json:"type"`
	// Status of the condition, one of True, False, Unknown.
	Status corev1.ConditionStatus `json:"status"`
	// LastTransitionTime -> timestamp for when the task last transitioned from one status to another.
	LastTransitionTime metav1.Time `json:"lastTransitionTime,omitempty"`
	// Reason -> machine-readable, UpperCamelCase text indicating the reason for the condition's last transition.
	Reason string `json:"reason,omitempty"`
	// Message -> human-readable message indicating details about the last status transition.
	Message string `json:"message,omitempty"`
}

// TaskContainer describes the primary container executing the task logic.
type TaskContainer struct {
	// Image is the container image executing the task.
	// +kubebuilder:validation:Required
	Image string `json:"image"`

	// Command is the entrypoint array. Not executed within a shell.
	Command []string `json:"command,omitempty"`

	// Args are the arguments to the entrypoint.
	Args []string `json:"args,omitempty"`

	// Env is the list of environment variables to set in the container.
	// Entries with the same name as ones declared by the base pod template take precedence.
	Env []corev1.EnvVar `json:"env,omitempty"`

	// Resources are the compute resources required by the container.
	Resources corev1.ResourceRequirements `json:"resources,omitempty"`
}

// TaskSpec defines the desired state of a Task. The pod actually executing the
// task is built merging the primary container into a base pod template, which
// can be provided inline (PodTemplate), by reference (PodTemplateName), or
// through the namespace default template.
type TaskSpec struct {
	// Container is the primary container of the task.
	// +kubebuilder:validation:Required
	Container TaskContainer `json:"container"`

	// PrimaryContainerName is the name of the container whose termination determines
	// the outcome of the task. It defaults to the task name.
	// +kubebuilder:validation:Optional
	PrimaryContainerName string `json:"primaryContainerName,omitempty"`

	// PodTemplate is an inline base pod template the primary container is merged into.
	// Mutually exclusive with PodTemplateName.
	// +kubebuilder:validation:Optional
	PodTemplate *corev1.PodTemplateSpec `json:"podTemplate,omitempty"`

	// PodTemplateName is the name of a PodTemplate resource, living in the same
	// namespace of the task, used as base pod template.
	// Mutually exclusive with PodTemplate.
	// +kubebuilder:validation:Optional
	PodTemplateName string `json:"podTemplateName,omitempty"`

	// Retries is the number of times a failed attempt is retried before
	// marking the task as failed.
	// +kubebuilder:validation:Minimum=0
	// +kubebuilder:default=0
	// +kubebuilder:validation:Optional
	Retries int32 `json:"retries"`

	// ActiveDeadlineSeconds is the duration the pod may be active before the
	// attempt is considered failed.
	// +kubebuilder:validation:Optional
	ActiveDeadlineSeconds *int64 `json:"activeDeadlineSeconds,omitempty"`

	// TTLSecondsAfterFinished limits the lifetime of a task that has reached a
	// terminal phase. When unset, the task is never garbage collected.
	// +kubebuilder:validation:Optional
	TTLSecondsAfterFinished *int32 `json:"ttlSecondsAfterFinished,omitempty"`

	// Interruptible marks the task as schedulable on preemptible nodes.
	// +kubebuilder:validation:Optional
	Interruptible *bool `json:"interruptible,omitempty"`
}

// TaskStatus defines the observed state of a Task.
type TaskStatus struct {
	// Phase is the current execution phase of the task.
	// +kubebuilder:validation:Enum="Pending";"Initializing";"Running";"Succeeded";"Failed";"Aborted"
	// +kubebuilder:default="Pending"
	Phase TaskPhase `json:"phase,omitempty"`

	// Conditions contains details about the current task state.
	Conditions []TaskCondition `json:"conditions,omitempty"`

	// PodName is the name of the pod backing the current attempt.
	PodName string `json:"podName,omitempty"`

	// Attempts is the number of pods created for this task so far.
	Attempts int32 `json:"attempts,omitempty"`

	// StartTime -> timestamp of the first attempt pod creation.
	StartTime *metav1.Time `json:"startTime,omitempty"`

	// CompletionTime -> timestamp of the transition to a terminal phase.
	CompletionTime *metav1.Time `json:"completionTime,omitempty"`

	// Reason -> machine-readable, UpperCamelCase text indicating the reason of the current phase.
	Reason string `json:"reason,omitempty"`

	// Message -> human-readable message with details about the current phase.
	Message string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:categories=flytekit,shortName=tk
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Pod",type=string,JSONPath=`.status.podName`,priority=1
// +kubebuilder:printcolumn:name="Attempts",type=integer,JSONPath=`.status.attempts`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Task is the unit of work executed as a (possibly multi-container) pod.
type Task struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   TaskSpec   `json:"spec,omitempty"`
	Status TaskStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// TaskList contains a list of Task resources.
type TaskList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Task `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Task{}, &TaskList{})
}

// PrimaryContainerName returns the name of the primary container of the task,
// defaulting to the task name when unset.
func (t *Task) PrimaryContainerName() string {
	if t.Spec.PrimaryContainerName != "" {
		return t.Spec.PrimaryContainerName
	}
	return t.Name
}

// RetriesExhausted returns whether no further attempts are allowed.
func (t *Task) RetriesExhausted() bool {
	return t.Status.Attempts > t.Spec.Retries
}

// GetCondition returns the condition with the given type, or nil if not present.
func (t *Task) GetCondition(conditionType TaskConditionType) *TaskCondition {
	for i := range t.Status.Conditions {
		if t.Status.Conditions[i].Type == conditionType {
			return &t.Status.Conditions[i]
		}
	}
	return nil
}
