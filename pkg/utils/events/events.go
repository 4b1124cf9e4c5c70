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

// Package events contains helper functions to emit Kubernetes events for task objects.
package events

import (
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
)

// EventType represents the type of an event.
type EventType string

const (
	// Normal is the default event type to use.
	Normal EventType = "Normal"
	// Warning is the event type assigned to failures.
	Warning EventType = "Warning"
)

// Reason represents the machine-readable reason of an event.
type Reason string

const (
	// AttemptStarted -> a new attempt pod has been created for the task.
	AttemptStarted Reason = "AttemptStarted"
	// AttemptFailed -> the current attempt pod failed.
	AttemptFailed Reason = "AttemptFailed"
	// TaskSucceeded -> the primary container terminated with a zero exit code.
	TaskSucceeded Reason = "TaskSucceeded"
	// TaskFailed -> the task exhausted its retry budget, or hit a permanent failure.
	TaskFailed Reason = "TaskFailed"
	// TaskAborted -> the task has been deleted while still running.
	TaskAborted Reason = "TaskAborted"
	// TaskExpired -> the task outlived its TTL and is being garbage collected.
	TaskExpired Reason = "TaskExpired"
)

// Option represents an option for an event.
type Option struct {
	Reason    Reason
	EventType EventType
}

// EventWithOptions emits an event with the given options.
func EventWithOptions(er record.EventRecorder, obj runtime.Object, message string, options *Option) {
	er.Event(obj, string(options.EventType), string(options.Reason), message)
}
