package session

import (
	"bufio"
	"fmt"
	"net"
	"os/exec"
	"strconv"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// FreePort asks the kernel for an unused local TCP port. The port is released
// again before returning, so there's a small window in which another process
// could grab it; kubectl will fail loudly if that happens.
func FreePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, errors.WithContext("probe for free port", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	if err := listener.Close(); err != nil {
		return 0, errors.WithContext("release probe port", err)
	}
	return port, nil
}

// StartForward spawns `kubectl port-forward` from the local port to the pod
// port and blocks until forwarding is established. kubectl prints a
// "Forwarding from ..." line to stdout once its listener is up, so the first
// line of output is the readiness signal.
func StartForward(namespace, pod string, localPort, podPort int) (*Helper, error) {
	cmd := exec.Command("kubectl",
		"-n", namespace,
		"port-forward", pod,
		fmt.Sprintf("%d:%d", localPort, podPort))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.WithContext("pipe stdout", err)
	}

	helper, err := launch("kubectl", cmd)
	if err != nil {
		return nil, err
	}

	if _, err := bufio.NewReader(stdout).ReadString('\n'); err != nil {
		helper.watch()
		_ = helper.Stop()
		return nil, errors.WithContext("port-forward never came up", err)
	}

	helper.name = "port-forward " + strconv.Itoa(localPort)
	helper.watch()
	return helper, nil
}
