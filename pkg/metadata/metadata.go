package metadata

// LabelKey marks pods created by pvc-inspect. Every pod we create carries it,
// so the sweeper can find them even if the session that created them crashed.
const LabelKey = "pvc-inspect"

const (
	// LabelActive is the label value for pods backing a live session.
	LabelActive = "active"

	// LabelPendingDelete asks the sweeper to delete the pod. It is set by
	// sessions that might not have permission to delete pods themselves.
	LabelPendingDelete = "pending-delete"
)

// FieldManager is the server-side apply field manager used when patching
// pod labels.
const FieldManager = "pvc-inspect"

// MountPath is where the target PVC is mounted inside the inspection pod.
const MountPath = "/data"

// VolumeName is the name of the pod volume referencing the target PVC.
const VolumeName = "data"

// PublicKeyEnv is the environment variable carrying the session's public key
// into templates that run an SSH server.
const PublicKeyEnv = "PUBLIC_KEY"

// SSHPort is the port the SSH server templates listen on inside the pod.
const SSHPort = 2222
