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

// Package wait implements the logic to wait for task related events.
package wait

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/taskctl/factory"
	"github.com/mao3267/flytekit/pkg/taskctl/output"
)

// Waiter is a struct that contains the necessary information to wait for task events.
type Waiter struct {
	// Printer is the object used to output messages in the appropriate format.
	Printer *output.Printer
	// CRClient is the controller runtime client.
	CRClient client.Client
}

// NewWaiterFromFactory creates a new Waiter object from the given factory.
func NewWaiterFromFactory(f *factory.Factory) *Waiter {
	return &Waiter{
		Printer:  f.Printer,
		CRClient: f.CRClient,
	}
}

// ForTaskCompletion waits until the given task reaches a terminal phase, or
// the context expires. A task ending up in a phase different from Succeeded
// yields an error.
func (w *Waiter) ForTaskCompletion(ctx context.Context, namespace, name string) error {
	s := w.Printer.StartSpinner(fmt.Sprintf("Waiting for task %q to complete", name))

	var task tasksv1alpha1.Task
	err := wait.PollUntilContextCancel(ctx, 1*time.Second, true, func(ctx context.Context) (done bool, err error) {
		if err := w.CRClient.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, &task); err != nil {
			return false, client.IgnoreNotFound(err)
		}
		return task.Status.Phase.Terminal(), nil
	})
	if err != nil {
		s.Fail(fmt.Sprintf("Failed waiting for task %q to complete: %s", name, output.PrettyErr(err)))
		return err
	}

	if task.Status.Phase != tasksv1alpha1.TaskPhaseSucceeded {
		msg := fmt.Sprintf("Task %q terminated with phase %s", name, task.Status.Phase)
		if cond := task.GetCondition(tasksv1alpha1.TaskConditionCompleted); cond != nil && cond.Message != "" {
			msg += ": " + cond.Message
		}
		s.Fail(msg)
		return fmt.Errorf("task %q terminated with phase %s", name, task.Status.Phase)
	}

	s.Success(fmt.Sprintf("Task %q completed successfully", name))
	return nil
}

// ForTasksCompletion waits for the completion of all the given tasks in parallel.
func (w *Waiter) ForTasksCompletion(ctx context.Context, namespace string, names ...string) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		group.Go(func() error { return w.ForTaskCompletion(gctx, namespace, name) })
	}
	return group.Wait()
}

// ForTaskDeletion waits until the given task is physically removed, or the context expires.
func (w *Waiter) ForTaskDeletion(ctx context.Context, namespace, name string) error {
	s := w.Printer.StartSpinner(fmt.Sprintf("Waiting for task %q to be removed", name))

	err := wait.PollUntilContextCancel(ctx, 1*time.Second, true, func(ctx context.Context) (done bool, err error) {
		var task tasksv1alpha1.Task
		if err := w.CRClient.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, &task); err != nil {
			return client.IgnoreNotFound(err) == nil, client.IgnoreNotFound(err)
		}
		return false, nil
	})
	if err != nil {
		s.Fail(fmt.Sprintf("Failed waiting for task %q to be removed: %s", name, output.PrettyErr(err)))
		return err
	}

	s.Success(fmt.Sprintf("Task %q removed", name))
	return nil
}
