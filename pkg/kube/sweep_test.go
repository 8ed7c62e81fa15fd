package kube

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8stypes "k8s.io/apimachinery/pkg/types"
	fakeKube "k8s.io/client-go/kubernetes/fake"

	"github.com/volumekit/pvc-inspect/pkg/metadata"
)

func markedPod(name, namespace, value string, age time.Duration, now time.Time) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Namespace:         namespace,
			UID:               k8stypes.UID(name),
			Labels:            map[string]string{metadata.LabelKey: value},
			CreationTimestamp: metav1.NewTime(now.Add(-age)),
		},
	}
}

func TestStalePodsByAge(t *testing.T) {
	now := time.Now()
	pods := []corev1.Pod{
		markedPod("young", "ns", metadata.LabelActive, 10*time.Minute, now),
		markedPod("old", "ns", metadata.LabelActive, 300*time.Minute, now),
		markedPod("older", "ns", metadata.LabelActive, 500*time.Minute, now),
	}

	stale := StalePods(pods, now, 240*time.Minute)
	require.Len(t, stale, 2)
	assert.Equal(t, "old", stale[0].Name)
	assert.Equal(t, "older", stale[1].Name)
}

func TestStalePodsPendingDelete(t *testing.T) {
	now := time.Now()
	pods := []corev1.Pod{
		markedPod("marked", "ns", metadata.LabelPendingDelete, 2*time.Minute, now),
		markedPod("young", "ns", metadata.LabelActive, 2*time.Minute, now),
	}

	stale := StalePods(pods, now, 240*time.Minute)
	require.Len(t, stale, 1)
	assert.Equal(t, "marked", stale[0].Name)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	young := markedPod("young", "ns-a", metadata.LabelActive, 10*time.Minute, now)
	old := markedPod("old", "ns-a", metadata.LabelActive, 300*time.Minute, now)
	marked := markedPod("marked", "ns-b", metadata.LabelPendingDelete, 2*time.Minute, now)
	unrelated := corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:              "unrelated",
			Namespace:         "ns-a",
			CreationTimestamp: metav1.NewTime(now.Add(-500 * time.Minute)),
		},
	}

	kubeClient := fakeKube.NewSimpleClientset(&young, &old, &marked, &unrelated)

	count, err := Sweep(ctx, kubeClient, metav1.NamespaceAll, 240*time.Minute, true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = kubeClient.CoreV1().Pods("ns-a").Get(ctx, "young", metav1.GetOptions{})
	assert.NoError(t, err, "young pod should be untouched")
	_, err = kubeClient.CoreV1().Pods("ns-a").Get(ctx, "unrelated", metav1.GetOptions{})
	assert.NoError(t, err, "unlabeled pod should be untouched")

	_, err = kubeClient.CoreV1().Pods("ns-a").Get(ctx, "old", metav1.GetOptions{})
	assert.Error(t, err, "old pod should be deleted")
	_, err = kubeClient.CoreV1().Pods("ns-b").Get(ctx, "marked", metav1.GetOptions{})
	assert.Error(t, err, "marked pod should be deleted regardless of age")
}
