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
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/tools/record"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/consts"
	"github.com/mao3267/flytekit/pkg/forge"
	"github.com/mao3267/flytekit/pkg/metrics"
	"github.com/mao3267/flytekit/pkg/utils/clients"
	"github.com/mao3267/flytekit/pkg/utils/events"
	"github.com/mao3267/flytekit/pkg/utils/getters"
	podutils "github.com/mao3267/flytekit/pkg/utils/pod"
)

const (
	// retryBackoffBase -> the requeue delay after the first failed attempt; it doubles at every subsequent failure.
	retryBackoffBase = 5 * time.Second
	// retryBackoffCap -> the maximum requeue delay between two attempts.
	retryBackoffCap = 5 * time.Minute
)

// Reconciler executes Task objects as pods.
type Reconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
}

// +kubebuilder:rbac:groups=tasks.flytekit.dev,resources=tasks,verbs=get;list;watch;update;patch;delete
// +kubebuilder:rbac:groups=tasks.flytekit.dev,resources=tasks/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=tasks.flytekit.dev,resources=tasks/finalizers,verbs=get;update;patch
// +kubebuilder:rbac:groups=core,resources=pods,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=core,resources=podtemplates,verbs=get;list;watch
// +kubebuilder:rbac:groups=core,resources=events,verbs=create;patch

// Reconcile drives a task towards completion, one attempt pod at a time.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	klog.V(4).Infof("reconcile task %q", req.NamespacedName)

	var task tasksv1alpha1.Task
	if err := r.Get(ctx, req.NamespacedName, &task); err != nil {
		err = client.IgnoreNotFound(err)
		if err == nil {
			klog.V(4).Infof("skip: task %q not found", req.NamespacedName)
		}
		return ctrl.Result{}, err
	}

	if !task.DeletionTimestamp.IsZero() {
		return ctrl.Result{}, r.handleDeletion(ctx, &task)
	}

	if controllerutil.AddFinalizer(&task, consts.TaskFinalizer) {
		if err := r.Update(ctx, &task); err != nil {
			klog.Errorf("failed to add finalizer to task %q: %v", klog.KObj(&task), err)
			return ctrl.Result{}, err
		}
	}

	// Terminal tasks are only garbage collected, never reconciled again.
	if task.Status.Phase.Terminal() {
		return ctrl.Result{}, nil
	}

	if task.Status.PodName == "" {
		return r.startAttempt(ctx, &task)
	}

	return r.trackAttempt(ctx, &task)
}

// startAttempt creates the pod backing the next attempt of the task.
func (r *Reconciler) startAttempt(ctx context.Context, task *tasksv1alpha1.Task) (ctrl.Result, error) {
	base, err := getters.GetBasePodTemplate(ctx, r.Client, task)
	if err != nil {
		klog.Errorf("failed to resolve the base pod template of task %q: %v", klog.KObj(task), err)
		if apierrors.IsNotFound(err) {
			// A missing referenced template is a user error: surface it without burning attempts.
			r.setTransientPhase(task, tasksv1alpha1.TaskPhasePending, "PodTemplateNotFound", err.Error())
			return ctrl.Result{RequeueAfter: retryBackoffBase}, r.Status().Update(ctx, task)
		}
		return ctrl.Result{}, err
	}

	attempt := task.Status.Attempts
	pod := forge.TaskPod(task, base, attempt)
	utilruntime.Must(ctrl.SetControllerReference(task, pod, r.Scheme))

	if err := r.Create(ctx, pod, client.FieldOwner(consts.TaskControllerFieldManager)); err != nil && !apierrors.IsAlreadyExists(err) {
		klog.Errorf("failed to create pod for task %q: %v", klog.KObj(task), err)
		return ctrl.Result{}, err
	}

	klog.Infof("created pod %q for task %q (attempt %d)", klog.KObj(pod), klog.KObj(task), attempt)
	metrics.ObserveAttempt(task)
	events.EventWithOptions(r.Recorder, task, fmt.Sprintf("Created pod %q (attempt %d)", pod.Name, attempt),
		&events.Option{EventType: events.Normal, Reason: events.AttemptStarted})

	task.Status.PodName = pod.Name
	task.Status.Attempts = attempt + 1
	if task.Status.StartTime == nil {
		now := metav1.Now()
		task.Status.StartTime = &now
	}
	r.setTransientPhase(task, tasksv1alpha1.TaskPhaseInitializing, "", "")
	ensureCondition(task, tasksv1alpha1.TaskConditionScheduled, corev1.ConditionFalse, "PodCreated", "")

	return ctrl.Result{}, r.Status().Update(ctx, task)
}

// trackAttempt derives the task status from the current attempt pod.
func (r *Reconciler) trackAttempt(ctx context.Context, task *tasksv1alpha1.Task) (ctrl.Result, error) {
	pod, err := getters.GetTaskPod(ctx, r.Client, task)
	if err != nil {
		if !apierrors.IsNotFound(err) {
			klog.Errorf("failed to retrieve pod of task %q: %v", klog.KObj(task), err)
			return ctrl.Result{}, err
		}

		klog.Warningf("pod %q of task %q disappeared", task.Status.PodName, klog.KObj(task))
		return r.completeAttempt(ctx, task, forge.AttemptOutcome{
			Phase:   tasksv1alpha1.TaskPhaseFailed,
			Reason:  forge.PodMissingReason,
			Message: fmt.Sprintf("pod %q no longer exists", task.Status.PodName),
		})
	}

	// Labels and annotations added to the task after pod creation (e.g. the
	// execution ID assigned by the webhook) are propagated to the running pod.
	if !forge.TaskPodMetaInSync(task, pod) {
		if err := r.Patch(ctx, pod, clients.Patch(forge.TaskPodApply(task, pod)),
			client.ForceOwnership, client.FieldOwner(consts.TaskControllerFieldManager)); err != nil {
			klog.Errorf("failed to sync metadata of pod %q for task %q: %v", klog.KObj(pod), klog.KObj(task), err)
			return ctrl.Result{}, err
		}
	}

	if podutils.IsScheduled(pod) {
		ensureCondition(task, tasksv1alpha1.TaskConditionScheduled, corev1.ConditionTrue, "PodScheduled", "")
	}

	outcome := forge.AttemptPhase(task, pod)
	switch outcome.Phase {
	case tasksv1alpha1.TaskPhaseSucceeded, tasksv1alpha1.TaskPhaseFailed:
		return r.completeAttempt(ctx, task, outcome)
	case tasksv1alpha1.TaskPhaseRunning:
		ensureCondition(task, tasksv1alpha1.TaskConditionReady, corev1.ConditionTrue, "PrimaryContainerRunning", "")
		r.setTransientPhase(task, tasksv1alpha1.TaskPhaseRunning, outcome.Reason, outcome.Message)
	default:
		r.setTransientPhase(task, tasksv1alpha1.TaskPhaseInitializing, outcome.Reason, outcome.Message)
	}

	return ctrl.Result{}, r.Status().Update(ctx, task)
}

// completeAttempt applies the retry policy to a terminated attempt: a successful
// attempt completes the task, a failed one either schedules the next attempt or
// marks the task as failed once the retry budget is exhausted.
func (r *Reconciler) completeAttempt(ctx context.Context, task *tasksv1alpha1.Task, outcome forge.AttemptOutcome) (ctrl.Result, error) {
	if outcome.Phase == tasksv1alpha1.TaskPhaseSucceeded {
		r.completeTask(task, outcome)
		return ctrl.Result{}, r.Status().Update(ctx, task)
	}

	if task.RetriesExhausted() {
		r.completeTask(task, outcome)
		return ctrl.Result{}, r.Status().Update(ctx, task)
	}

	klog.Infof("attempt %d of task %q failed (%s), scheduling a new attempt",
		task.Status.Attempts-1, klog.KObj(task), outcome.Reason)
	events.EventWithOptions(r.Recorder, task, fmt.Sprintf("Attempt %d failed: %s", task.Status.Attempts-1, outcome.Message),
		&events.Option{EventType: events.Warning, Reason: events.AttemptFailed})

	// The failed pod is kept around for debugging: the next attempt gets a fresh name.
	task.Status.PodName = ""
	r.setTransientPhase(task, tasksv1alpha1.TaskPhasePending, outcome.Reason, outcome.Message)
	if err := r.Status().Update(ctx, task); err != nil {
		return ctrl.Result{}, err
	}

	return ctrl.Result{RequeueAfter: retryBackoff(task.Status.Attempts)}, nil
}

// handleDeletion tears down the attempt pods before letting the task disappear.
func (r *Reconciler) handleDeletion(ctx context.Context, task *tasksv1alpha1.Task) error {
	if !controllerutil.ContainsFinalizer(task, consts.TaskFinalizer) {
		return nil
	}

	pods, err := getters.ListTaskPods(ctx, r.Client, task)
	if err != nil {
		klog.Errorf("failed to list pods of task %q: %v", klog.KObj(task), err)
		return err
	}
	for i := range pods {
		if err := r.Delete(ctx, &pods[i]); err != nil && !apierrors.IsNotFound(err) {
			klog.Errorf("failed to delete pod %q of task %q: %v", klog.KObj(&pods[i]), klog.KObj(task), err)
			return err
		}
	}

	if !task.Status.Phase.Terminal() {
		klog.Infof("task %q deleted while %s: aborting", klog.KObj(task), task.Status.Phase)
		events.EventWithOptions(r.Recorder, task, "Task deleted before completion",
			&events.Option{EventType: events.Warning, Reason: events.TaskAborted})
		metrics.ObserveTransition(task, tasksv1alpha1.TaskPhaseAborted)
		metrics.ObserveCompletion(task, tasksv1alpha1.TaskPhaseAborted)
	}

	controllerutil.RemoveFinalizer(task, consts.TaskFinalizer)
	return r.Update(ctx, task)
}

// completeTask records the terminal phase of the task.
func (r *Reconciler) completeTask(task *tasksv1alpha1.Task, outcome forge.AttemptOutcome) {
	task.Status.Phase = outcome.Phase
	task.Status.Reason = outcome.Reason
	task.Status.Message = outcome.Message
	if task.Status.CompletionTime == nil {
		now := metav1.Now()
		task.Status.CompletionTime = &now
	}
	ensureCondition(task, tasksv1alpha1.TaskConditionCompleted, corev1.ConditionTrue, string(outcome.Phase), outcome.Message)

	metrics.ObserveTransition(task, outcome.Phase)
	metrics.ObserveCompletion(task, outcome.Phase)

	if outcome.Phase == tasksv1alpha1.TaskPhaseSucceeded {
		klog.Infof("task %q succeeded after %d attempt(s)", klog.KObj(task), task.Status.Attempts)
		events.EventWithOptions(r.Recorder, task, "Primary container terminated successfully",
			&events.Option{EventType: events.Normal, Reason: events.TaskSucceeded})
		return
	}

	klog.Infof("task %q failed after %d attempt(s): %s", klog.KObj(task), task.Status.Attempts, outcome.Message)
	events.EventWithOptions(r.Recorder, task, outcome.Message,
		&events.Option{EventType: events.Warning, Reason: events.TaskFailed})
}

// setTransientPhase updates the phase of a non-terminal task, recording the transition metric.
func (r *Reconciler) setTransientPhase(task *tasksv1alpha1.Task, phase tasksv1alpha1.TaskPhase, reason, message string) {
	if task.Status.Phase != phase {
		metrics.ObserveTransition(task, phase)
	}
	task.Status.Phase = phase
	task.Status.Reason = reason
	task.Status.Message = message
}

// retryBackoff returns the delay before the given attempt, doubling at every failure.
func retryBackoff(attempt int32) time.Duration {
	backoff := retryBackoffBase << uint(attempt-1)
	if backoff > retryBackoffCap || backoff <= 0 {
		return retryBackoffCap
	}
	return backoff
}

// SetupWithManager registers the task controller with the manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager, workers int) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&tasksv1alpha1.Task{}).
		Owns(&corev1.Pod{}, builder.WithPredicates(predicate.NewPredicateFuncs(func(obj client.Object) bool {
			return forge.IsTaskPod(obj)
		}))).
		WithOptions(controller.Options{MaxConcurrentReconciles: workers}).
		Complete(r)
}
