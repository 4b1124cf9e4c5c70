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

// Package submit implements the logic to submit a new task for execution.
package submit

import (
	"context"
	"fmt"
	"os"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/taskctl/factory"
	"github.com/mao3267/flytekit/pkg/taskctl/output"
	"github.com/mao3267/flytekit/pkg/taskctl/wait"
	argsutils "github.com/mao3267/flytekit/pkg/utils/args"
)

// Options encapsulates the arguments of the taskctl submit command.
type Options struct {
	*factory.Factory

	Name                 string
	Image                string
	Command              []string
	Args                 []string
	Env                  argsutils.StringMap
	Resources            argsutils.ResourceList
	PrimaryContainerName string

	PodTemplateName string
	TemplateFile    string
	TaskFile        string

	Retries                 int32
	ActiveDeadlineSeconds   int64
	TTLSecondsAfterFinished int32
	Interruptible           bool

	OutputYAML bool
	Wait       bool
	Timeout    time.Duration
}

// Run implements the submit command.
func (o *Options) Run(ctx context.Context) error {
	var task *tasksv1alpha1.Task
	var err error

	if o.TaskFile != "" {
		task, err = o.loadTask()
	} else {
		task, err = o.forgeTask()
	}
	if err != nil {
		return err
	}

	if o.OutputYAML {
		return o.printYAML(task)
	}

	s := o.Printer.StartSpinner(fmt.Sprintf("Submitting task %q", task.Name))
	if err := o.CRClient.Create(ctx, task); err != nil {
		s.Fail(fmt.Sprintf("Failed submitting task %q: %s", task.Name, output.PrettyErr(err)))
		return err
	}
	s.Success(fmt.Sprintf("Task %q submitted", task.Name))

	if !o.Wait {
		return nil
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	waiter := wait.NewWaiterFromFactory(o.Factory)
	return waiter.ForTasksCompletion(ctx, task.Namespace, task.Name)
}

// loadTask reads a complete task manifest from the given file.
func (o *Options) loadTask() (*tasksv1alpha1.Task, error) {
	raw, err := os.ReadFile(o.TaskFile)
	if err != nil {
		return nil, fmt.Errorf("failed reading task manifest: %w", err)
	}

	var task tasksv1alpha1.Task
	if err := yaml.UnmarshalStrict(raw, &task); err != nil {
		return nil, fmt.Errorf("failed parsing task manifest: %w", err)
	}

	if o.Name != "" {
		task.Name = o.Name
	}
	if task.Namespace == "" {
		task.Namespace = o.Namespace
	}
	return &task, nil
}

// forgeTask assembles the task object from the command line arguments.
func (o *Options) forgeTask() (*tasksv1alpha1.Task, error) {
	env := make([]corev1.EnvVar, 0, len(o.Env.StringMap))
	for name, value := range o.Env.StringMap {
		env = append(env, corev1.EnvVar{Name: name, Value: value})
	}

	task := &tasksv1alpha1.Task{
		TypeMeta: metav1.TypeMeta{
			Kind:       tasksv1alpha1.TaskKind,
			APIVersion: tasksv1alpha1.SchemeGroupVersion.String(),
		},
		ObjectMeta: metav1.ObjectMeta{Name: o.Name, Namespace: o.Namespace},
		Spec: tasksv1alpha1.TaskSpec{
			Container: tasksv1alpha1.TaskContainer{
				Image:     o.Image,
				Command:   o.Command,
				Args:      o.Args,
				Env:       env,
				Resources: corev1.ResourceRequirements{Requests: o.Resources.ResourceList},
			},
			PrimaryContainerName: o.PrimaryContainerName,
			PodTemplateName:      o.PodTemplateName,
			Retries:              o.Retries,
		},
	}

	if o.Interruptible {
		task.Spec.Interruptible = &o.Interruptible
	}

	if o.ActiveDeadlineSeconds > 0 {
		task.Spec.ActiveDeadlineSeconds = &o.ActiveDeadlineSeconds
	}
	if o.TTLSecondsAfterFinished > 0 {
		task.Spec.TTLSecondsAfterFinished = &o.TTLSecondsAfterFinished
	}

	if o.TemplateFile != "" {
		if o.PodTemplateName != "" {
			return nil, fmt.Errorf("--pod-template-name and --pod-template-file are mutually exclusive")
		}

		raw, err := os.ReadFile(o.TemplateFile)
		if err != nil {
			return nil, fmt.Errorf("failed reading pod template file: %w", err)
		}

		var template corev1.PodTemplateSpec
		if err := yaml.UnmarshalStrict(raw, &template); err != nil {
			return nil, fmt.Errorf("failed parsing pod template file: %w", err)
		}
		task.Spec.PodTemplate = &template
	}

	return task, nil
}

func (o *Options) printYAML(task *tasksv1alpha1.Task) error {
	raw, err := yaml.Marshal(task)
	if err != nil {
		return err
	}

	fmt.Printf("%s", raw)
	return nil
}
