package session

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	k8stypes "k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/volumekit/pvc-inspect/pkg/errors"
	"github.com/volumekit/pvc-inspect/pkg/kube"
)

// Session is one live inspection session: the pod backing it and the local
// helper processes supporting it. It is created once the pod exists and owns
// its resources until Cleanup has run.
type Session struct {
	KubeClient kubernetes.Interface
	RestConfig *rest.Config

	Namespace string
	PodName   string
	PodUID    k8stypes.UID

	// Command is the shell command run inside the pod.
	Command []string

	// Forward and Mount are optional subordinate processes. Either exiting
	// unexpectedly ends the session.
	Forward *Helper
	Mount   *Helper

	// WaitForDeletion makes Cleanup block until the cluster confirms the
	// pod is gone.
	WaitForDeletion bool
}

// errEnded signals a goroutine that finished because the session is over, not
// because something went wrong. Returning it cancels the group's context,
// which is what ends the session for everyone else.
var errEnded = errors.New("session ended")

// Run relays the interactive shell until it exits, a helper process dies, or
// ctx is canceled. The shell and the helper watchers race: the first to
// finish cancels the others.
func (s *Session) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := Shell(ctx, s.KubeClient, s.RestConfig, s.Namespace, s.PodName, s.Command)
		if err != nil && ctx.Err() == nil {
			return errors.WithContext("stream", err)
		}
		return errEnded
	})

	s.superviseHelper(ctx, group, s.Forward)
	s.superviseHelper(ctx, group, s.Mount)

	if err := group.Wait(); err != errEnded {
		return err
	}
	return nil
}

func (s *Session) superviseHelper(ctx context.Context, group *errgroup.Group, helper *Helper) {
	if helper == nil {
		return
	}
	group.Go(func() error {
		select {
		case <-helper.Done():
			if ctx.Err() != nil {
				return errEnded
			}
			if err := helper.Err(); err != nil {
				return errors.WithContext(helper.name+" exited unexpectedly", err)
			}
			return errors.New("%s exited unexpectedly", helper.name)
		case <-ctx.Done():
			return errEnded
		}
	})
}

// Cleanup tears the session down. It always runs all steps in order, logging
// failures instead of stopping on them: local helpers first so they don't
// hang on a pod that's going away, then the pod itself. The pod is relabeled
// before deletion so that a privileged sweeper can reap it if this process
// isn't allowed to delete pods.
func (s *Session) Cleanup(ctx context.Context) {
	if s.Mount != nil {
		log.Info("Unmounting")
		if err := s.Mount.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop sshfs")
		}
	}

	if s.Forward != nil {
		log.Info("Stopping port forwarding")
		if err := s.Forward.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop port forwarding")
		}
	}

	log.Info("Deleting pod")
	if err := kube.MarkForDeletion(ctx, s.KubeClient, s.Namespace, s.PodName); err != nil {
		log.WithError(err).Warn("Failed to mark pod for deletion")
	}
	if err := kube.DeletePod(ctx, s.KubeClient, s.Namespace, s.PodName); err != nil {
		log.WithError(err).Warn("Failed to delete pod; a future sweep will reap it")
		return
	}

	if s.WaitForDeletion {
		log.Info("Waiting for deletion")
		err := kube.WaitForPodDeleted(ctx, s.KubeClient, s.Namespace, s.PodName, s.PodUID)
		if err != nil {
			log.WithError(err).Warn("Failed to confirm pod deletion")
			return
		}
		log.Info("Pod deleted")
	}
}
