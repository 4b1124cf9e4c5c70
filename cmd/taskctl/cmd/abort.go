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

	"github.com/mao3267/flytekit/pkg/taskctl/abort"
	"github.com/mao3267/flytekit/pkg/taskctl/factory"
)

const abortLongHelp = `Abort the execution of the given task.

The task is deleted, and the pods backing its attempts are torn down before
the object disappears. The command can optionally wait for the removal to
complete.

Examples:
  $ taskctl abort process-data
  $ taskctl abort process-data --wait`

func newAbortCommand(ctx context.Context, f *factory.Factory) *cobra.Command {
	options := abort.Options{Factory: f}
	cmd := &cobra.Command{
		Use:   "abort name",
		Short: "Abort the execution of the given task",
		Long:  abortLongHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			options.Name = args[0]
			return options.Run(ctx)
		},
	}

	f.AddNamespaceFlag(cmd.Flags())
	cmd.Flags().BoolVar(&options.Wait, "wait", false, "Wait for the task to be physically removed")
	return cmd
}
