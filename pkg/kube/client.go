package kube

import (
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// GetClient gets a Kubernetes client connected to the cluster defined in the
// local kubeconfig.
func GetClient() (kubernetes.Interface, *rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	kubeConfig := clientcmd.
		NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{})

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, nil, errors.WithContext("get rest config", err)
	}

	// Readiness and deletion waits can sit in watch calls for a long time,
	// so don't let client-side timeouts cut them short.
	restConfig.Timeout = 0

	kubeClient, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, nil, errors.WithContext("new kube client", err)
	}

	return kubeClient, restConfig, nil
}
