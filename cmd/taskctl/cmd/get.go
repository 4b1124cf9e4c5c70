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

	"github.com/spf13/cobra"

	"github.com/mao3267/flytekit/pkg/taskctl/factory"
	"github.com/mao3267/flytekit/pkg/taskctl/get"
)

const getLongHelp = `Retrieve the tasks in the given namespace.

When a task name is provided, the detailed status of that task is displayed,
including its conditions. Otherwise, all tasks are listed, optionally
filtered by phase.

Examples:
  $ taskctl get
  $ taskctl get process-data
  $ taskctl get --phase Running
  $ taskctl get process-data -o`

func newGetCommand(ctx context.Context, f *factory.Factory) *cobra.Command {
	options := get.Options{Factory: f}
	cmd := &cobra.Command{
		Use:   "get [name]",
		Short: "Retrieve the tasks in the given namespace",
		Long:  getLongHelp,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				options.Name = args[0]
			}
			return options.Run(ctx)
		},
	}

	f.AddNamespaceFlag(cmd.Flags())
	cmd.Flags().StringVar(&options.Phase, "phase", "", "Only display the tasks in the given phase")
	cmd.Flags().BoolVarP(&options.OutputYAML, "output-yaml", "o", false, "Output the tasks in YAML format")
	return cmd
}
