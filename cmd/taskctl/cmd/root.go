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

// Package cmd contains the taskctl command tree.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mao3267/flytekit/pkg/taskctl/factory"
)

const taskctlShortHelp = "taskctl manages the execution of tasks on Kubernetes"

const taskctlLongHelp = `taskctl submits tasks to a Kubernetes cluster and tracks their execution.

A task runs as a pod whose outcome is determined by its primary container,
with optional customizations provided through pod templates. taskctl allows
to submit new tasks, inspect and wait for running ones, stream their logs,
and abort them.`

// NewRootCommand initializes the tree of commands.
func NewRootCommand(ctx context.Context) *cobra.Command {
	f := factory.New()

	cmd := &cobra.Command{
		Use:          "taskctl",
		Short:        taskctlShortHelp,
		Long:         taskctlLongHelp,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return f.Initialize()
		},
	}

	f.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newSubmitCommand(ctx, f))
	cmd.AddCommand(newGetCommand(ctx, f))
	cmd.AddCommand(newWaitCommand(ctx, f))
	cmd.AddCommand(newAbortCommand(ctx, f))
	cmd.AddCommand(newLogsCommand(ctx, f))
	return cmd
}
