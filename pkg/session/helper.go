package session

import (
	stderrors "errors"
	"os"
	"os/exec"

	"github.com/volumekit/pvc-inspect/pkg/errors"
)

// Helper is a subordinate process supporting the session, like the
// port-forwarder or the sshfs mount. The session doesn't inspect its traffic,
// only whether it is still alive.
type Helper struct {
	name    string
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

func launch(name string, cmd *exec.Cmd) (*Helper, error) {
	if err := cmd.Start(); err != nil {
		var execErr *exec.Error
		if stderrors.As(err, &execErr) && stderrors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, errors.NewFriendlyError("`%s` not found in PATH.", name)
		}
		return nil, errors.WithContext("start "+name, err)
	}
	return &Helper{name: name, cmd: cmd, done: make(chan struct{})}, nil
}

// watch reaps the process when it exits. It must be called exactly once,
// after any direct reads from the process's pipes are finished.
func (h *Helper) watch() {
	go func() {
		h.waitErr = h.cmd.Wait()
		close(h.done)
	}()
}

// Done is closed once the process has exited, for any reason.
func (h *Helper) Done() <-chan struct{} {
	return h.done
}

// Err returns the process's exit error. Only valid after Done is closed.
func (h *Helper) Err() error {
	return h.waitErr
}

// Stop kills the process and waits for it to be reaped. Stopping an
// already-exited process is not an error.
func (h *Helper) Stop() error {
	select {
	case <-h.done:
		return nil
	default:
	}

	if err := h.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return errors.WithContext("kill "+h.name, err)
	}
	<-h.done
	return nil
}
