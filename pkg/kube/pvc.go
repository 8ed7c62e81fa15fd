package kube

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// ListPVCs lists the persistent volume claims in the given namespace.
func ListPVCs(ctx context.Context, kubeClient kubernetes.Interface, namespace string) (
	[]corev1.PersistentVolumeClaim, error) {

	list, err := kubeClient.CoreV1().PersistentVolumeClaims(namespace).
		List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.WithContext("list pvcs", err)
	}
	return list.Items, nil
}

// HasPVC reports whether the list contains a claim with the given name.
func HasPVC(pvcs []corev1.PersistentVolumeClaim, name string) bool {
	for _, pvc := range pvcs {
		if pvc.Name == name {
			return true
		}
	}
	return false
}
