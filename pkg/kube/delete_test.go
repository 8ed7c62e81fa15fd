package kube

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	fakeKube "k8s.io/client-go/kubernetes/fake"
	kubeTesting "k8s.io/client-go/testing"

	"github.com/volumekit/pvc-inspect/pkg/metadata"
)

func TestDeletePodIdempotent(t *testing.T) {
	ctx := context.Background()
	kubeClient := fakeKube.NewSimpleClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "pod", Namespace: "ns"},
	})

	assert.NoError(t, DeletePod(ctx, kubeClient, "ns", "pod"))

	// The pod is already gone; deleting again must not be an error.
	assert.NoError(t, DeletePod(ctx, kubeClient, "ns", "pod"))
}

func TestMarkForDeletion(t *testing.T) {
	ctx := context.Background()
	kubeClient := fakeKube.NewSimpleClientset()

	var patched kubeTesting.PatchAction
	kubeClient.PrependReactor("patch", "pods",
		func(action kubeTesting.Action) (bool, runtime.Object, error) {
			patched = action.(kubeTesting.PatchAction)
			return true, &corev1.Pod{}, nil
		})

	require.NoError(t, MarkForDeletion(ctx, kubeClient, "ns", "pod"))
	require.NotNil(t, patched)

	assert.Equal(t, types.ApplyPatchType, patched.GetPatchType())
	assert.Equal(t, "pod", patched.GetName())

	var obj map[string]interface{}
	require.NoError(t, json.Unmarshal(patched.GetPatch(), &obj))
	labels := obj["metadata"].(map[string]interface{})["labels"].(map[string]interface{})
	assert.Equal(t, metadata.LabelPendingDelete, labels[metadata.LabelKey])
}

func TestWaitForPodDeleted(t *testing.T) {
	ctx := context.Background()

	// Already gone.
	kubeClient := fakeKube.NewSimpleClientset()
	assert.NoError(t, WaitForPodDeleted(ctx, kubeClient, "ns", "pod", "uid-1"))

	// Same name, different UID: the pod we created is gone, someone else's
	// replacement doesn't matter.
	kubeClient = fakeKube.NewSimpleClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "pod", Namespace: "ns", UID: "uid-2"},
	})
	assert.NoError(t, WaitForPodDeleted(ctx, kubeClient, "ns", "pod", "uid-1"))
}
