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
	"time"

	"github.com/spf13/cobra"

	"github.com/mao3267/flytekit/pkg/taskctl/factory"
	"github.com/mao3267/flytekit/pkg/taskctl/wait"
)

const waitLongHelp = `Wait for the given tasks to complete.

The command blocks until all the given tasks reach a terminal phase, or the
timeout expires. It fails if any of them terminates with a phase different
from Succeeded.

Examples:
  $ taskctl wait process-data
  $ taskctl wait process-data train-model --timeout 30m`

func newWaitCommand(ctx context.Context, f *factory.Factory) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait name...",
		Short: "Wait for the given tasks to complete",
		Long:  waitLongHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			waiter := wait.NewWaiterFromFactory(f)
			return waiter.ForTasksCompletion(ctx, f.Namespace, args...)
		},
	}

	f.AddNamespaceFlag(cmd.Flags())
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "The maximum time to wait for completion")
	return cmd
}
