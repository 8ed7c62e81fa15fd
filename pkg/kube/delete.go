package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kerrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"github.com/volumekit/pvc-inspect/pkg/errors"
	"github.com/volumekit/pvc-inspect/pkg/metadata"
)

// MarkForDeletion flips the pod's marker label to the pending-delete
// sentinel. If the session lacks permission to delete pods, a privileged
// sweeper run will reap the pod based on this label, so a failed delete after
// a successful relabel is not fatal.
func MarkForDeletion(ctx context.Context, kubeClient kubernetes.Interface,
	namespace, name string) error {

	patch := map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Pod",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
			"labels": map[string]string{
				metadata.LabelKey: metadata.LabelPendingDelete,
			},
		},
	}
	patchBytes, err := json.Marshal(patch)
	if err != nil {
		return errors.WithContext("marshal patch", err)
	}

	force := true
	_, err = kubeClient.CoreV1().Pods(namespace).Patch(ctx, name,
		types.ApplyPatchType, patchBytes, metav1.PatchOptions{
			FieldManager: metadata.FieldManager,
			Force:        &force,
		})
	if err != nil {
		return errors.WithContext("patch labels", err)
	}
	return nil
}

// DeletePod deletes the pod. A pod that's already gone counts as success,
// since cleanup may run more than once or race with the sweeper.
func DeletePod(ctx context.Context, kubeClient kubernetes.Interface,
	namespace, name string) error {

	err := kubeClient.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !kerrors.IsNotFound(err) {
		return errors.WithContext("delete pod", err)
	}
	return nil
}

// WaitForPodDeleted blocks until the object with the given UID no longer
// exists. A pod with the same name but a different UID belongs to someone
// else and also counts as deleted.
func WaitForPodDeleted(ctx context.Context, kubeClient kubernetes.Interface,
	namespace, name string, uid types.UID) error {

	podClient := kubeClient.CoreV1().Pods(namespace)
	watcher, err := podClient.Watch(ctx, metav1.ListOptions{
		FieldSelector: fmt.Sprintf("metadata.name=%s", name),
	})
	if err != nil {
		return errors.WithContext("watch pod", err)
	}
	defer watcher.Stop()
	watcherChan := watcher.ResultChan()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		pod, err := podClient.Get(ctx, name, metav1.GetOptions{})
		switch {
		case kerrors.IsNotFound(err):
			return nil
		case err != nil:
			return errors.WithContext("get pod", err)
		case pod.UID != uid:
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.WithContext("wait for deletion", ctx.Err())
		case <-watcherChan:
		case <-ticker.C:
		}
	}
}
