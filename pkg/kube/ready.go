package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// ReadyState is the result of checking a pod status snapshot.
type ReadyState int

const (
	// NotReady means the pod may still become ready; keep waiting.
	NotReady ReadyState = iota

	// Ready means the pod is running and every reported container is ready.
	Ready

	// Terminated means the pod reached a terminal phase and will never
	// become ready.
	Terminated
)

// Readiness checks a pod status snapshot. A Running phase alone is not
// enough: containers may still be starting, so every reported container
// status must also be ready.
func Readiness(status corev1.PodStatus) ReadyState {
	switch status.Phase {
	case corev1.PodFailed, corev1.PodSucceeded:
		return Terminated
	case corev1.PodRunning:
	default:
		return NotReady
	}

	for _, containerStatus := range status.ContainerStatuses {
		if !containerStatus.Ready {
			return NotReady
		}
	}
	return Ready
}

// WaitForPodReady blocks until the pod's status satisfies Readiness. The
// caller bounds the wait through ctx; without a deadline the wait is
// indefinite, which is fine in clusters with slow scheduling.
func WaitForPodReady(ctx context.Context, kubeClient kubernetes.Interface,
	namespace, name string) error {

	podClient := kubeClient.CoreV1().Pods(namespace)
	watcher, err := podClient.Watch(ctx, metav1.ListOptions{
		FieldSelector: fmt.Sprintf("metadata.name=%s", name),
	})
	if err != nil {
		return errors.WithContext("watch pod", err)
	}
	defer watcher.Stop()
	watcherChan := watcher.ResultChan()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		pod, err := podClient.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return errors.WithContext("get pod", err)
		}

		switch Readiness(pod.Status) {
		case Ready:
			return nil
		case Terminated:
			return errors.NewFriendlyError(
				"Pod terminated before becoming ready (phase %s). "+
					"Check `kubectl describe pod %s` for the cause.",
				pod.Status.Phase, name)
		}

		select {
		case <-ctx.Done():
			return errors.WithContext("pod never became ready", ctx.Err())
		case <-watcherChan:
		case <-ticker.C:
		}
	}
}
