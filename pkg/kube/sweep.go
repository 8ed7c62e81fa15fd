package kube

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/volumekit/pvc-inspect/pkg/errors"
	"github.com/volumekit/pvc-inspect/pkg/metadata"
)

// StalePods returns the pods that the sweeper should delete: any pod older
// than maxAge, and any pod whose marker label is the pending-delete sentinel
// regardless of age.
func StalePods(pods []corev1.Pod, now time.Time, maxAge time.Duration) []corev1.Pod {
	var stale []corev1.Pod
	for _, pod := range pods {
		if pod.Labels[metadata.LabelKey] == metadata.LabelPendingDelete {
			stale = append(stale, pod)
			continue
		}
		created := pod.CreationTimestamp
		if !created.IsZero() && now.Sub(created.Time) > maxAge {
			stale = append(stale, pod)
		}
	}
	return stale
}

// Sweep deletes stale inspection pods. With namespace set to "", it sweeps
// the whole cluster. If wait is true, it blocks on each deletion before
// moving on to the next pod so a big sweep doesn't flood the API server.
// It returns the number of stale pods that were found.
func Sweep(ctx context.Context, kubeClient kubernetes.Interface,
	namespace string, maxAge time.Duration, wait bool) (int, error) {

	list, err := kubeClient.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: metadata.LabelKey,
	})
	if err != nil {
		return 0, errors.WithContext("list pods", err)
	}

	stale := StalePods(list.Items, time.Now(), maxAge)
	log.Infof("Found %d pods to delete", len(stale))

	for _, pod := range stale {
		log.WithFields(log.Fields{
			"pod":       pod.Name,
			"namespace": pod.Namespace,
		}).Info("Deleting pod")
		if err := DeletePod(ctx, kubeClient, pod.Namespace, pod.Name); err != nil {
			return len(stale), err
		}
		if wait {
			err := WaitForPodDeleted(ctx, kubeClient, pod.Namespace, pod.Name, pod.UID)
			if err != nil {
				return len(stale), err
			}
		}
	}
	return len(stale), nil
}
