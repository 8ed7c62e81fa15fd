package inspect

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/volumekit/pvc-inspect/cli/config"
	"github.com/volumekit/pvc-inspect/cli/list"
	"github.com/volumekit/pvc-inspect/cli/util"
	"github.com/volumekit/pvc-inspect/pkg/errors"
	"github.com/volumekit/pvc-inspect/pkg/keys"
	"github.com/volumekit/pvc-inspect/pkg/kube"
	"github.com/volumekit/pvc-inspect/pkg/metadata"
	"github.com/volumekit/pvc-inspect/pkg/podspec"
	"github.com/volumekit/pvc-inspect/pkg/session"
)

// New returns the root command. Without a PVC argument it lists the claims in
// the namespace; with one, it starts an inspection session against it.
func New() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("Failed to load config file, using defaults")
	}

	cmd := inspect{}
	cobraCmd := &cobra.Command{
		Use:   "pvc-inspect [PVC]",
		Short: "Inspect the contents of a persistent volume claim",
		Long: "Inspect the contents of a persistent volume claim.\n\n" +
			"Mounts the PVC on a disposable pod, shells into it, and " +
			"optionally mounts it locally via SSHFS. The pod is deleted " +
			"when the session ends.",
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if len(args) == 1 {
				cmd.pvc = args[0]
			}
			if err := cmd.run(); err != nil {
				errors.HandleFatalError(err)
			}
		},
	}
	cobraCmd.Flags().StringVarP(&cmd.namespace, "namespace", "n", cfg.Namespace,
		"Namespace of the PVC")
	cobraCmd.Flags().StringVarP(&cmd.mountpoint, "mountpoint", "m", "",
		"Also mount the volume locally at this path via SSHFS")
	cobraCmd.Flags().BoolVar(&cmd.readWrite, "rw", false,
		"Mount the volume in read/write mode rather than read only")
	cobraCmd.Flags().BoolVar(&cmd.nowait, "nowait", false,
		"Do not wait until the pod has been deleted")
	cobraCmd.Flags().StringVar(&cmd.template, "template", cfg.Template,
		"Pod template to use")
	cobraCmd.Flags().DurationVar(&cmd.readyTimeout, "ready-timeout", 10*time.Minute,
		"How long to wait for the pod to become ready\nZero means wait forever")
	return cobraCmd
}

type inspect struct {
	namespace    string
	pvc          string
	mountpoint   string
	readWrite    bool
	nowait       bool
	template     string
	readyTimeout time.Duration
}

func (cmd *inspect) run() error {
	kubeClient, restConfig, err := kube.GetClient()
	if err != nil {
		return errors.WithContext("get kube client", err)
	}
	log.Infof("Connecting to cluster %s", restConfig.Host)

	pvcs, err := kube.ListPVCs(context.Background(), kubeClient, cmd.namespace)
	if err != nil {
		return err
	}

	if cmd.pvc == "" {
		log.Infof("Volume claims in namespace %s:", cmd.namespace)
		list.Print(os.Stdout, pvcs)
		log.Warn("Provide the name of the volume claim to inspect.")
		return nil
	}

	// Validate before touching the cluster so a typo doesn't create a pod.
	if !kube.HasPVC(pvcs, cmd.pvc) {
		return errors.NewFriendlyError("PVC %s not found in namespace %s",
			cmd.pvc, cmd.namespace)
	}

	tmpl, err := podspec.Lookup(cmd.template)
	if err != nil {
		return err
	}
	if cmd.mountpoint != "" && !tmpl.NeedsKey {
		return errors.NewFriendlyError(
			"Template %q doesn't run an SSH server, so --mountpoint can't be used with it.",
			tmpl.Name)
	}

	if cmd.readWrite {
		log.Warn("Volume will be mounted in read/write mode")
	}

	var pair *keys.Pair
	if tmpl.NeedsKey {
		log.Info("Generating keys")
		pair, err = keys.Generate()
		if err != nil {
			return err
		}
		defer func() {
			if err := pair.Remove(); err != nil {
				log.WithError(err).Warn("Failed to remove key file")
			}
		}()
	}

	return cmd.runSession(kubeClient, restConfig, tmpl, pair)
}

func (cmd *inspect) runSession(kubeClient kubernetes.Interface, restConfig *rest.Config,
	tmpl podspec.Template, pair *keys.Pair) error {

	var publicKey string
	if pair != nil {
		publicKey = pair.PublicKey
	}

	pod, err := podspec.Build(tmpl, podspec.Request{
		Namespace: cmd.namespace,
		PVC:       cmd.pvc,
		ReadWrite: cmd.readWrite,
	}, publicKey)
	if err != nil {
		return err
	}

	log.Info("Creating pod")
	created, err := kube.CreatePod(context.Background(), kubeClient, pod)
	if err != nil {
		return err
	}

	// From here on a pod exists, so every exit path has to run cleanup,
	// including an interrupt. The first signal ends the session; a second
	// one gives up on waiting for the cluster to confirm deletion.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(exit)
	go func() {
		<-exit
		cancel()
		<-exit
		cancelCleanup()
	}()

	sess := &session.Session{
		KubeClient:      kubeClient,
		RestConfig:      restConfig,
		Namespace:       cmd.namespace,
		PodName:         created.Name,
		PodUID:          created.UID,
		Command:         tmpl.Shell,
		WaitForDeletion: !cmd.nowait,
	}

	if err := cmd.awaitReady(ctx, kubeClient, created.Name); err != nil {
		sess.Cleanup(cleanupCtx)
		if ctx.Err() != nil {
			log.Info("Interrupted")
			return nil
		}
		return err
	}

	if tmpl.NeedsKey {
		port, err := session.FreePort()
		if err != nil {
			sess.Cleanup(cleanupCtx)
			return err
		}

		log.Infof("Starting port forwarding on port %d", port)
		forward, err := session.StartForward(cmd.namespace, created.Name,
			port, metadata.SSHPort)
		if err != nil {
			sess.Cleanup(cleanupCtx)
			return err
		}
		sess.Forward = forward

		if cmd.mountpoint != "" {
			mountpoint, err := homedir.Expand(cmd.mountpoint)
			if err != nil {
				sess.Cleanup(cleanupCtx)
				return errors.WithContext("expand mountpoint", err)
			}

			log.Infof("Mounting on %s", mountpoint)
			mount, err := session.StartMount(mountpoint, port, pair.PrivateKeyPath)
			if err != nil {
				sess.Cleanup(cleanupCtx)
				return err
			}
			sess.Mount = mount
		}
	}

	log.Info("Connecting to pod. Type Control+D to exit the shell")
	runErr := sess.Run(ctx)

	sess.Cleanup(cleanupCtx)
	return runErr
}

func (cmd *inspect) awaitReady(ctx context.Context, kubeClient kubernetes.Interface,
	podName string) error {

	readyCtx := ctx
	if cmd.readyTimeout > 0 {
		var cancel context.CancelFunc
		readyCtx, cancel = context.WithTimeout(ctx, cmd.readyTimeout)
		defer cancel()
	}

	pp := util.NewProgressPrinter(os.Stdout, "Waiting for pod "+podName)
	go pp.Run()
	err := kube.WaitForPodReady(readyCtx, kubeClient, cmd.namespace, podName)
	pp.Stop()
	if err != nil {
		return errors.WithContext("wait for pod", err)
	}

	// Give the pod's ssh server a moment to start accepting connections.
	time.Sleep(time.Second)
	return nil
}
