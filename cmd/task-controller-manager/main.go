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

// Package main implements the task controller manager, reconciling Task
// resources into Kubernetes pods.
package main

import (
	"flag"
	"os"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	"sigs.k8s.io/controller-runtime/pkg/webhook"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	taskctrl "github.com/mao3267/flytekit/pkg/controller-manager/task-controller"
	ttlctrl "github.com/mao3267/flytekit/pkg/controller-manager/ttl-controller"
	"github.com/mao3267/flytekit/pkg/forge"
	argsutils "github.com/mao3267/flytekit/pkg/utils/args"
	"github.com/mao3267/flytekit/pkg/utils/indexer"
	"github.com/mao3267/flytekit/pkg/utils/restcfg"
	taskwh "github.com/mao3267/flytekit/pkg/webhooks/task"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	_ = clientgoscheme.AddToScheme(scheme)
	_ = tasksv1alpha1.AddToScheme(scheme)
	// +kubebuilder:scaffold:scheme
}

func main() {
	defaultResources := argsutils.ResourceList{ResourceList: corev1.ResourceList{}}

	metricsAddr := flag.String("metrics-address", ":8080", "The address the metric endpoint binds to")
	probeAddr := flag.String("health-probe-address", ":8081", "The address the health probe endpoint binds to")
	webhookPort := flag.Uint("webhook-port", 9443, "The port the webhook server binds to")
	leaderElection := flag.Bool("enable-leader-election", false, "Enable leader election for the controller manager")

	taskWorkers := flag.Int("task-ctrl-workers", 10, "The number of workers used to reconcile Task resources")
	ttlWorkers := flag.Int("ttl-ctrl-workers", 1, "The number of workers used to garbage collect expired tasks")
	flag.Var(&defaultResources, "default-resources",
		"The resource requests assigned to primary containers which do not specify their own (e.g. cpu=250m,memory=128Mi)")

	restcfg.InitFlags(nil)
	klog.InitFlags(nil)
	flag.Parse()

	ctx := ctrl.SetupSignalHandler()

	config := restcfg.SetRateLimiter(ctrl.GetConfigOrDie())

	mgr, err := ctrl.NewManager(config, ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: *metricsAddr},
		HealthProbeBindAddress: *probeAddr,
		LeaderElection:         *leaderElection,
		LeaderElectionID:       "66cf253f.tasks.flytekit.dev",
		WebhookServer:          webhook.NewServer(webhook.Options{Port: int(*webhookPort)}),
	})
	if err != nil {
		klog.Error(err)
		os.Exit(1)
	}

	forge.Init(defaultResources.ResourceList)

	if err := indexer.IndexField(ctx, mgr, &corev1.Pod{},
		indexer.FieldTaskNameFromPod, indexer.ExtractTaskName); err != nil {
		klog.Fatal(err)
	}

	taskReconciler := &taskctrl.Reconciler{
		Client:   mgr.GetClient(),
		Scheme:   mgr.GetScheme(),
		Recorder: mgr.GetEventRecorderFor("task-controller"),
	}
	if err := taskReconciler.SetupWithManager(mgr, *taskWorkers); err != nil {
		klog.Fatal(err)
	}

	ttlReconciler := &ttlctrl.Reconciler{
		Client:   mgr.GetClient(),
		Scheme:   mgr.GetScheme(),
		Recorder: mgr.GetEventRecorderFor("ttl-controller"),
	}
	if err := ttlReconciler.SetupWithManager(mgr, *ttlWorkers); err != nil {
		klog.Fatal(err)
	}

	mgr.GetWebhookServer().Register("/mutate/tasks", taskwh.NewMutator(mgr.GetScheme()))
	mgr.GetWebhookServer().Register("/validate/tasks", taskwh.NewValidator(mgr.GetClient(), mgr.GetScheme()))

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		klog.Error(err, " unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		klog.Error(err, " unable to set up ready check")
		os.Exit(1)
	}

	klog.Info("starting manager as task controller manager")
	if err := mgr.Start(ctx); err != nil {
		klog.Error(err)
		os.Exit(1)
	}
}
