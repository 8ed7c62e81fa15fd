package kube

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// CreatePod submits the pod spec and returns the created pod, including the
// name and UID assigned by the API server.
func CreatePod(ctx context.Context, kubeClient kubernetes.Interface, pod *corev1.Pod) (
	*corev1.Pod, error) {

	created, err := kubeClient.CoreV1().Pods(pod.Namespace).
		Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		return nil, errors.WithContext("create pod", err)
	}
	return created, nil
}
