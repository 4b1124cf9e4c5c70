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

package args

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ResourceList implements the flag.Value interface and allows to parse resource
// lists in the form: "cpu=250m,memory=128Mi". It is used to configure the default
// requests assigned to primary containers which do not specify their own.
type ResourceList struct {
	ResourceList corev1.ResourceList
}

// String returns the stringified resource list.
func (rl ResourceList) String() string {
	if rl.ResourceList == nil {
		return ""
	}

	strs := make([]string, 0, len(rl.ResourceList))
	for name, quantity := range rl.ResourceList {
		strs = append(strs, fmt.Sprintf("%s=%s", name, quantity.String()))
	}
	return strings.Join(strs, ",")
}

// Set parses the provided string into the resource list.
func (rl *ResourceList) Set(str string) error {
	if rl.ResourceList == nil {
		rl.ResourceList = corev1.ResourceList{}
	}
	if str == "" {
		return nil
	}
	chunks := strings.Split(str, ",")
	for i := range chunks {
		strs := strings.Split(chunks[i], "=")
		if len(strs) != 2 {
			return fmt.Errorf("invalid value %v", chunks[i])
		}
		quantity, err := resource.ParseQuantity(strs[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q for resource %q: %w", strs[1], strs[0], err)
		}
		rl.ResourceList[corev1.ResourceName(strs[0])] = quantity
	}
	return nil
}

// Type returns the resourceList type.
func (rl ResourceList) Type() string {
	return "resourceList"
}
