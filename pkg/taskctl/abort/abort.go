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

// Package abort implements the logic to abort a running task.
package abort

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/client"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/taskctl/factory"
	"github.com/mao3267/flytekit/pkg/taskctl/output"
	"github.com/mao3267/flytekit/pkg/taskctl/wait"
)

// Options encapsulates the arguments of the taskctl abort command.
type Options struct {
	*factory.Factory

	Name string
	Wait bool
}

// Run implements the abort command. Aborting a task deletes it, and the
// finalizer attached by the task controller guarantees the teardown of the
// attempt pods before the object disappears.
func (o *Options) Run(ctx context.Context) error {
	var task tasksv1alpha1.Task
	if err := o.CRClient.Get(ctx, client.ObjectKey{Namespace: o.Namespace, Name: o.Name}, &task); err != nil {
		return err
	}

	if task.Status.Phase.Terminal() {
		o.Printer.Warning.Printfln("Task %q already terminated with phase %s", o.Name, task.Status.Phase)
	}

	s := o.Printer.StartSpinner(fmt.Sprintf("Aborting task %q", o.Name))
	if err := o.CRClient.Delete(ctx, &task); err != nil {
		s.Fail(fmt.Sprintf("Failed aborting task %q: %s", o.Name, output.PrettyErr(err)))
		return err
	}
	s.Success(fmt.Sprintf("Task %q aborted", o.Name))

	if !o.Wait {
		return nil
	}

	waiter := wait.NewWaiterFromFactory(o.Factory)
	return waiter.ForTaskDeletion(ctx, o.Namespace, o.Name)
}
