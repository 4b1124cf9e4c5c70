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

// Package factory provides the clients and configurations shared by the
// taskctl subcommands.
package factory

import (
	"strings"

	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tasksv1alpha1 "github.com/mao3267/flytekit/apis/tasks/v1alpha1"
	"github.com/mao3267/flytekit/pkg/taskctl/output"
	"github.com/mao3267/flytekit/pkg/utils/restcfg"
)

var verbose bool

// FlagNamespace -> the name of the namespace flag.
const FlagNamespace = "namespace"

// Factory provides a set of clients and configurations to authenticate and
// access a target Kubernetes cluster. Factory will ensure that its fields are
// populated and valid during command execution.
type Factory struct {
	// configFlags wraps the logic to retrieve a REST config based on the flags.
	configFlags *genericclioptions.ConfigFlags
	// Preserve the namespace flag, since it is added only to a subset of commands.
	namespaceFlag *pflag.Flag

	// Printer is the object used to output messages in the appropriate format.
	Printer *output.Printer

	// Namespace is the namespace that the user has requested with the "--namespace" / "-n" flag.
	Namespace string

	// RESTConfig is a Kubernetes REST config that contains the user's authentication and access configuration.
	RESTConfig *rest.Config

	// CRClient is the controller runtime client.
	CRClient client.Client

	// KubeClient is a Kubernetes clientset for interacting with the base Kubernetes APIs.
	KubeClient kubernetes.Interface
}

// New returns a new initialized Factory.
func New() *Factory {
	return &Factory{configFlags: genericclioptions.NewConfigFlags(true)}
}

// AddFlags registers the flags to interact with the Kubernetes access options.
func (f *Factory) AddFlags(flags *pflag.FlagSet) {
	// We use an accessory flagset to mutate the flags before adding them to the command.
	tmp := pflag.NewFlagSet("factory", pflag.PanicOnError)
	f.configFlags.AddFlags(tmp)

	tmp.VisitAll(func(flag *pflag.Flag) {
		if flag.Name == FlagNamespace {
			// Exclude the flag concerning the namespace, as manually added only to the relevant subcommands.
			flag.Usage = "The namespace scope for this request"
			f.namespaceFlag = flag
			return
		}

		flag.Usage = strings.TrimRight(flag.Usage, ".")
		// Hide most non-essential flags
		if flag.Name != "kubeconfig" && flag.Name != "context" && flag.Name != "user" && flag.Name != "cluster" {
			flag.Hidden = true
		}

		flags.AddFlag(flag)
	})

	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logs (default false)")
}

// AddNamespaceFlag registers the flag to select the target namespace.
func (f *Factory) AddNamespaceFlag(flags *pflag.FlagSet) {
	flags.AddFlag(f.namespaceFlag)
}

// Initialize populates the object based on the provided flags.
func (f *Factory) Initialize() (err error) {
	f.Printer = output.NewPrinter(verbose)

	if f.Namespace == "" {
		f.Namespace, _, err = f.configFlags.ToRawKubeConfigLoader().Namespace()
		if err != nil {
			return err
		}
	}

	f.RESTConfig, err = f.configFlags.ToRESTConfig()
	if err != nil {
		return err
	}
	restcfg.SetRateLimiter(f.RESTConfig)

	restMapper, err := f.configFlags.ToRESTMapper()
	if err != nil {
		return err
	}

	f.KubeClient, err = kubernetes.NewForConfig(f.RESTConfig)
	if err != nil {
		return err
	}

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return err
	}
	if err := tasksv1alpha1.AddToScheme(scheme); err != nil {
		return err
	}

	// Leverage the REST mapper retrieved from the config flags, to defer the loading of the
	// mappings until the first API request is made. This prevents errors in case of invalid
	// kubeconfigs, if no interaction is required.
	f.CRClient, err = client.New(f.RESTConfig, client.Options{Scheme: scheme, Mapper: restMapper})
	return err
}
