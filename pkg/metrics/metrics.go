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

// Package metrics contains the prometheus collectors exposed by the task controller.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
)

var (
	// TaskTransitionsCounter is the counter of the task phase transitions.
	TaskTransitionsCounter *prometheus.CounterVec
	// TaskAttemptsCounter is the counter of the attempt pods created.
	TaskAttemptsCounter *prometheus.CounterVec
	// TaskDurationHistogram observes the duration of terminated tasks, from first attempt to completion.
	TaskDurationHistogram *prometheus.HistogramVec
)

func init() {
	TaskTransitionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flytekit_task_phase_transitions_total",
			Help: "The counter of the task phase transitions.",
		},
		[]string{"namespace", "phase"},
	)

	TaskAttemptsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flytekit_task_attempts_total",
			Help: "The counter of the attempt pods created for tasks.",
		},
		[]string{"namespace"},
	)

	TaskDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flytekit_task_duration_seconds",
			Help:    "The duration of terminated tasks, from first attempt to completion.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600, 14400},
		},
		[]string{"namespace", "phase"},
	)

	ctrlmetrics.Registry.MustRegister(TaskTransitionsCounter, TaskAttemptsCounter, TaskDurationHistogram)
}

// ObserveTransition records a task phase transition.
func ObserveTransition(task *tasksv1alpha1.Task, phase tasksv1alpha1.TaskPhase) {
	TaskTransitionsCounter.WithLabelValues(task.Namespace, string(phase)).Inc()
}

// ObserveAttempt records the creation of a new attempt pod.
func ObserveAttempt(task *tasksv1alpha1.Task) {
	TaskAttemptsCounter.WithLabelValues(task.Namespace).Inc()
}

// ObserveCompletion records the duration of a terminated task.
func ObserveCompletion(task *tasksv1alpha1.Task, phase tasksv1alpha1.TaskPhase) {
	if task.Status.StartTime == nil {
		return
	}
	duration := time.Since(task.Status.StartTime.Time)
	TaskDurationHistogram.WithLabelValues(task.Namespace, string(phase)).Observe(duration.Seconds())
}
