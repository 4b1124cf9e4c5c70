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

// Package get implements the logic to retrieve and display tasks.
package get

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"k8s.io/apimachinery/pkg/util/duration"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/taskctl/factory"
)

// Options encapsulates the arguments of the taskctl get command.
type Options struct {
	*factory.Factory

	Name       string
	Phase      string
	OutputYAML bool
}

// Run implements the get command.
func (o *Options) Run(ctx context.Context) error {
	if o.Name != "" {
		return o.single(ctx)
	}
	return o.list(ctx)
}

func (o *Options) single(ctx context.Context) error {
	var task tasksv1alpha1.Task
	if err := o.CRClient.Get(ctx, client.ObjectKey{Namespace: o.Namespace, Name: o.Name}, &task); err != nil {
		return err
	}

	if o.OutputYAML {
		return printYAML(&task)
	}

	return render(&task)
}

func (o *Options) list(ctx context.Context) error {
	var tasks tasksv1alpha1.TaskList
	if err := o.CRClient.List(ctx, &tasks, client.InNamespace(o.Namespace)); err != nil {
		return err
	}

	// Phase is filtered client side, as field selectors on custom resources
	// are limited to the metadata fields.
	if o.Phase != "" {
		filtered := tasks.Items[:0]
		for i := range tasks.Items {
			if string(tasks.Items[i].Status.Phase) == o.Phase {
				filtered = append(filtered, tasks.Items[i])
			}
		}
		tasks.Items = filtered
	}

	if o.OutputYAML {
		return printYAML(&tasks)
	}

	if len(tasks.Items) == 0 {
		o.Printer.Info.Printfln("No tasks found in namespace %q", o.Namespace)
		return nil
	}

	data := pterm.TableData{{"NAME", "PHASE", "ATTEMPTS", "POD", "AGE"}}
	for i := range tasks.Items {
		task := &tasks.Items[i]
		data = append(data, []string{
			task.Name,
			string(task.Status.Phase),
			fmt.Sprintf("%d", task.Status.Attempts),
			task.Status.PodName,
			duration.HumanDuration(time.Since(task.CreationTimestamp.Time)),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func render(task *tasksv1alpha1.Task) error {
	phase := string(task.Status.Phase)
	if phase == "" {
		phase = string(tasksv1alpha1.TaskPhasePending)
	}

	items := []pterm.BulletListItem{
		{Level: 0, Text: pterm.Sprintf("Task: %s/%s", task.Namespace, task.Name)},
		{Level: 1, Text: pterm.Sprintf("Phase: %s", phase)},
		{Level: 1, Text: pterm.Sprintf("Attempts: %d/%d", task.Status.Attempts, task.Spec.Retries+1)},
	}

	if task.Status.PodName != "" {
		items = append(items, pterm.BulletListItem{Level: 1, Text: pterm.Sprintf("Pod: %s", task.Status.PodName)})
	}
	if task.Status.StartTime != nil {
		items = append(items, pterm.BulletListItem{
			Level: 1, Text: pterm.Sprintf("Started: %s ago", duration.HumanDuration(time.Since(task.Status.StartTime.Time)))})
	}
	if task.Status.CompletionTime != nil {
		items = append(items, pterm.BulletListItem{
			Level: 1, Text: pterm.Sprintf("Completed: %s ago", duration.HumanDuration(time.Since(task.Status.CompletionTime.Time)))})
	}

	for i := range task.Status.Conditions {
		cond := &task.Status.Conditions[i]
		text := pterm.Sprintf("%s: %s", cond.Type, cond.Status)
		if cond.Message != "" {
			text += pterm.Sprintf(" (%s)", cond.Message)
		}
		items = append(items, pterm.BulletListItem{Level: 1, Text: text})
	}

	return pterm.DefaultBulletList.WithItems(items).Render()
}

func printYAML(obj interface{}) error {
	raw, err := yaml.Marshal(obj)
	if err != nil {
		return err
	}

	fmt.Printf("%s", raw)
	return nil
}
