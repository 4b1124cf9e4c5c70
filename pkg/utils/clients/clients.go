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

// Package clients contains utilities to interact with the Kubernetes API through controller-runtime clients.
package clients

import (
	"encoding/json"

	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

type ssaPatch struct {
	patch any
}

// Patch wraps an apply configuration into a server-side apply patch.
func Patch(patch any) client.Patch {
	return ssaPatch{patch: patch}
}

func (p ssaPatch) Type() types.PatchType {
	return types.ApplyPatchType
}

func (p ssaPatch) Data(_ client.Object) ([]byte, error) {
	return json.Marshal(p.patch)
}
