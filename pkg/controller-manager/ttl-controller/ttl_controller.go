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

// Package ttlctrl contains the controller garbage collecting terminal tasks
// once their TTL expires.
package ttlctrl

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/utils/events"
)

// Reconciler garbage collects tasks which outlived their TTL.
type Reconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	// Clock allows to mock time in tests.
	Clock clock.Clock
}

// +kubebuilder:rbac:groups=tasks.flytekit.dev,resources=tasks,verbs=get;list;watch;delete

// Reconcile deletes terminal tasks whose TTL expired, and requeues the others
// at their exact expiration instant.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var task tasksv1alpha1.Task
	if err := r.Get(ctx, req.NamespacedName, &task); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	if task.Spec.TTLSecondsAfterFinished == nil || !task.Status.Phase.Terminal() || task.Status.CompletionTime == nil {
		return ctrl.Result{}, nil
	}

	expiration := task.Status.CompletionTime.Add(time.Duration(*task.Spec.TTLSecondsAfterFinished) * time.Second)
	if remaining := expiration.Sub(r.Clock.Now()); remaining > 0 {
		klog.V(4).Infof("task %q expires in %s", klog.KObj(&task), remaining)
		return ctrl.Result{RequeueAfter: remaining}, nil
	}

	klog.Infof("deleting expired task %q (completed at %s)", klog.KObj(&task), task.Status.CompletionTime)
	events.EventWithOptions(r.Recorder, &task, "Task outlived its TTL",
		&events.Option{EventType: events.Normal, Reason: events.TaskExpired})

	if err := r.Delete(ctx, &task); err != nil {
		klog.Errorf("failed to delete expired task %q: %v", klog.KObj(&task), err)
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	return ctrl.Result{}, nil
}

// SetupWithManager registers the TTL controller with the manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager, workers int) error {
	if r.Clock == nil {
		r.Clock = clock.RealClock{}
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&tasksv1alpha1.Task{}).
		WithOptions(controller.Options{MaxConcurrentReconciles: workers}).
		Complete(r)
}
