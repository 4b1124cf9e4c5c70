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

// Package indexer contains the field indexes shared by the task plugin controllers.
package indexer

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	ctrlruntime "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/mao3267/flytekit/pkg/consts"
)

// FieldTaskNameFromPod is the field name indexing pods by the task they have been created for.
const FieldTaskNameFromPod = "metadata.labels.task-name"

// ExtractTaskName returns the owning task name of a pod, as recorded in its labels.
func ExtractTaskName(rawObj client.Object) []string {
	switch obj := rawObj.(type) {
	case *corev1.Pod:
		if name, found := obj.Labels[consts.TaskNameLabelKey]; found {
			return []string{name}
		}
		return []string{}
	default:
		return []string{}
	}
}

// IndexField adds the given index to the manager field indexer.
func IndexField(ctx context.Context, mgr ctrlruntime.Manager, obj client.Object, field string, indexerFunc client.IndexerFunc) error {
	return mgr.GetFieldIndexer().IndexField(ctx, obj, field, indexerFunc)
}
