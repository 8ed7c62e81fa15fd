package podspec

import (
	"embed"
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/volumekit/pvc-inspect/pkg/errors"
	"github.com/volumekit/pvc-inspect/pkg/metadata"
	"github.com/volumekit/pvc-inspect/pkg/names"
)

//go:embed templates/*.yaml
var templateFiles embed.FS

// Template is a base pod specification for inspection pods.
type Template struct {
	Name string

	// NeedsKey is true for templates that run an SSH server and expect the
	// session's public key in their environment.
	NeedsKey bool

	// Shell is the command the interactive session runs in the pod.
	Shell []string

	raw []byte
}

var templates = map[string]Template{
	"ssh": {
		Name:     "ssh",
		NeedsKey: true,
		Shell:    []string{"/bin/bash", "-c", "cd /data && /bin/bash"},
	},
	"plain": {
		Name:  "plain",
		Shell: []string{"/bin/sh", "-c", "cd /data && exec /bin/sh"},
	},
}

// Lookup returns the named template.
func Lookup(name string) (Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		var known []string
		for name := range templates {
			known = append(known, name)
		}
		sort.Strings(known)
		return Template{}, errors.NewFriendlyError(
			"Unknown template %q. Available templates: %v", name, known)
	}

	raw, err := templateFiles.ReadFile(fmt.Sprintf("templates/%s.yaml", tmpl.Name))
	if err != nil {
		return Template{}, errors.WithContext("read template", err)
	}
	tmpl.raw = raw
	return tmpl, nil
}

// Request describes the inspection pod to build. It doesn't change once the
// session has started.
type Request struct {
	Namespace string
	PVC       string

	// ReadWrite mounts the volume read/write rather than read only. It
	// requires explicit opt-in from the operator.
	ReadWrite bool
}

// Build merges the template with the request into a concrete pod spec: the
// target PVC is attached as a volume, every container gets a mount for it,
// and the marker label is applied so the sweeper can find the pod later.
// Build performs no cluster I/O.
func Build(tmpl Template, req Request, publicKey string) (*corev1.Pod, error) {
	var pod corev1.Pod
	if err := yaml.Unmarshal(tmpl.raw, &pod); err != nil {
		return nil, errors.WithContext("parse template", err)
	}

	pod.ObjectMeta = metav1.ObjectMeta{
		GenerateName: names.PodPrefix(req.PVC),
		Namespace:    req.Namespace,
		Labels:       map[string]string{metadata.LabelKey: metadata.LabelActive},
	}

	readOnly := !req.ReadWrite
	pod.Spec.Volumes = append(pod.Spec.Volumes, corev1.Volume{
		Name: metadata.VolumeName,
		VolumeSource: corev1.VolumeSource{
			PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
				ClaimName: req.PVC,
				ReadOnly:  readOnly,
			},
		},
	})

	for i := range pod.Spec.Containers {
		container := &pod.Spec.Containers[i]
		if tmpl.NeedsKey {
			container.Env = append(container.Env, corev1.EnvVar{
				Name:  metadata.PublicKeyEnv,
				Value: publicKey,
			})
		}
		container.VolumeMounts = append(container.VolumeMounts, corev1.VolumeMount{
			Name:      metadata.VolumeName,
			MountPath: metadata.MountPath,
			ReadOnly:  readOnly,
		})
	}

	return &pod, nil
}
