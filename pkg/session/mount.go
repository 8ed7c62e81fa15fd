package session

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/volumekit/pvc-inspect/pkg/errors"
	"github.com/volumekit/pvc-inspect/pkg/metadata"
)

// StartMount spawns sshfs to expose the pod's data directory at the given
// local mountpoint, tunneled through the local forwarded port and
// authenticated with the session's private key.
func StartMount(mountpoint string, port int, identityFile string) (*Helper, error) {
	if err := os.MkdirAll(mountpoint, 0755); err != nil {
		return nil, errors.WithContext("create mountpoint", err)
	}

	cmd := exec.Command("sshfs",
		fmt.Sprintf("ssh@127.0.0.1:%s", metadata.MountPath),
		"-o", "auto_unmount",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "StrictHostKeyChecking=no",
		"-o", fmt.Sprintf("IdentityFile=%s", identityFile),
		"-f",
		"-p", fmt.Sprintf("%d", port),
		mountpoint)
	// sshfs chats on stderr about host keys; don't mix that into the shell.
	cmd.Stdout = nil
	cmd.Stderr = nil

	helper, err := launch("sshfs", cmd)
	if err != nil {
		return nil, err
	}
	helper.watch()
	return helper, nil
}
