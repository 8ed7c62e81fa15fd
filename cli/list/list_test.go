package list

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestPrint(t *testing.T) {
	created := metav1.NewTime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	pvcs := []corev1.PersistentVolumeClaim{
		{
			ObjectMeta: metav1.ObjectMeta{
				Name:              "data-1",
				CreationTimestamp: created,
			},
			Spec: corev1.PersistentVolumeClaimSpec{
				Resources: corev1.ResourceRequirements{
					Requests: corev1.ResourceList{
						corev1.ResourceStorage: resource.MustParse("10Gi"),
					},
				},
			},
		},
		{
			ObjectMeta: metav1.ObjectMeta{Name: "no-metadata"},
		},
	}

	var out bytes.Buffer
	Print(&out, pvcs)

	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "data-1")
	assert.Contains(t, out.String(), "2024-03-01 12:30:00")
	assert.Contains(t, out.String(), "10Gi")
	assert.Contains(t, out.String(), "no-metadata")
}
