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

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mao3267/flytekit/pkg/taskctl/factory"
	"github.com/mao3267/flytekit/pkg/taskctl/submit"
)

const submitLongHelp = `Submit a new task for execution.

The task runs as a pod executing the given container image, customized
through the flags or an optional pod template (inline or by reference).
The command can optionally wait for the task to complete.

Examples:
  $ taskctl submit process-data --image busybox --retries 2 -- sh -c "echo done"
  $ taskctl submit process-data --image busybox --pod-template-name gpu-template --wait
  $ taskctl submit -f task.yaml`

func newSubmitCommand(ctx context.Context, f *factory.Factory) *cobra.Command {
	options := submit.Options{Factory: f}
	cmd := &cobra.Command{
		Use:   "submit [name]",
		Short: "Submit a new task for execution",
		Long:  submitLongHelp,
		Args:  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 && options.TaskFile == "" {
				return fmt.Errorf("either a task name or a task manifest (--file) must be provided")
			}
			if len(args) > 0 {
				options.Name = args[0]
				options.Command = args[1:]
			}
			return options.Run(ctx)
		},
	}

	f.AddNamespaceFlag(cmd.Flags())
	cmd.Flags().StringVarP(&options.TaskFile, "file", "f", "", "The path of a file containing a complete task manifest")
	cmd.Flags().StringVar(&options.Image, "image", "", "The container image executed by the task")
	cmd.Flags().StringSliceVar(&options.Args, "args", nil, "The arguments passed to the task container")
	cmd.Flags().Var(&options.Env, "env", "The environment variables of the task container (e.g. KEY=value)")
	cmd.Flags().Var(&options.Resources, "resources",
		"The resource requests of the task container (e.g. cpu=250m,memory=128Mi)")
	cmd.Flags().StringVar(&options.PrimaryContainerName, "primary-container-name", "",
		"The name of the container determining the task outcome (defaults to the task name)")
	cmd.Flags().StringVar(&options.PodTemplateName, "pod-template-name", "",
		"The name of the PodTemplate resource used as base for the task pod")
	cmd.Flags().StringVar(&options.TemplateFile, "pod-template-file", "",
		"The path of a file containing the pod template used as base for the task pod")
	cmd.Flags().Int32Var(&options.Retries, "retries", 0, "The number of retries of failed attempts")
	cmd.Flags().Int64Var(&options.ActiveDeadlineSeconds, "active-deadline-seconds", 0,
		"The maximum duration of each attempt, in seconds (no limit if zero)")
	cmd.Flags().Int32Var(&options.TTLSecondsAfterFinished, "ttl-seconds-after-finished", 0,
		"The delay before a terminated task is garbage collected, in seconds (never if zero)")
	cmd.Flags().BoolVar(&options.Interruptible, "interruptible", false,
		"Whether the task tolerates preemptible nodes")
	cmd.Flags().BoolVarP(&options.OutputYAML, "output-yaml", "o", false,
		"Output the generated task in YAML format, instead of submitting it")
	cmd.Flags().BoolVar(&options.Wait, "wait", false, "Wait for the task to complete")
	cmd.Flags().DurationVar(&options.Timeout, "timeout", 0, "The maximum time to wait for completion (no limit if zero)")

	cmd.MarkFlagsMutuallyExclusive("pod-template-name", "pod-template-file")
	return cmd
}
