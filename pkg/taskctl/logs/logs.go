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

// Package logs implements the logic to retrieve the logs of a task.
package logs

import (
	"context"
	"fmt"
	"io"
	"os"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/taskctl/factory"
)

// Options encapsulates the arguments of the taskctl logs command.
type Options struct {
	*factory.Factory

	Name      string
	Container string
	Follow    bool
	Previous  bool
}

// Run implements the logs command, streaming the logs of the task container
// to the standard output.
func (o *Options) Run(ctx context.Context) error {
	var task tasksv1alpha1.Task
	if err := o.CRClient.Get(ctx, client.ObjectKey{Namespace: o.Namespace, Name: o.Name}, &task); err != nil {
		return err
	}

	if task.Status.PodName == "" {
		return fmt.Errorf("task %q has no running attempt (phase %s)", o.Name, task.Status.Phase)
	}

	container := o.Container
	if container == "" {
		container = task.PrimaryContainerName()
	}

	req := o.KubeClient.CoreV1().Pods(o.Namespace).GetLogs(task.Status.PodName, &corev1.PodLogOptions{
		Container: container,
		Follow:    o.Follow,
		Previous:  o.Previous,
	})

	stream, err := req.Stream(ctx)
	if err != nil {
		return fmt.Errorf("failed retrieving logs of pod %q: %w", task.Status.PodName, err)
	}
	defer stream.Close()

	_, err = io.Copy(os.Stdout, stream)
	return err
}
