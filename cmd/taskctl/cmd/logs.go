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
	"github.com/mao3267/flytekit/pkg/taskctl/logs"
)

const logsLongHelp = `Retrieve the logs of the given task.

The logs of the primary container of the current attempt are streamed by
default, with flags allowing to select a different container, follow the
stream, or target the previous attempt.

Examples:
  $ taskctl logs process-data
  $ taskctl logs process-data --container sidecar --follow`

func newLogsCommand(ctx context.Context, f *factory.Factory) *cobra.Command {
	options := logs.Options{Factory: f}
	cmd := &cobra.Command{
		Use:   "logs name",
		Short: "Retrieve the logs of the given task",
		Long:  logsLongHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			options.Name = args[0]
			return options.Run(ctx)
		},
	}

	f.AddNamespaceFlag(cmd.Flags())
	cmd.Flags().StringVarP(&options.Container, "container", "c", "", "The container whose logs are retrieved (defaults to the primary container)")
	cmd.Flags().BoolVarP(&options.Follow, "follow", "f", false, "Follow the log stream")
	cmd.Flags().BoolVarP(&options.Previous, "previous", "p", false, "Retrieve the logs of the previous container instance, if available")
	return cmd
}
