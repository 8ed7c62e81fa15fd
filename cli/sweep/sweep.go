package sweep

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/volumekit/pvc-inspect/cli/config"
	"github.com/volumekit/pvc-inspect/pkg/errors"
	"github.com/volumekit/pvc-inspect/pkg/kube"
)

// New returns the sweep command. It reaps inspection pods left behind by
// crashed sessions and pods marked for deletion by sessions that weren't
// allowed to delete them.
func New() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("Failed to load config file, using defaults")
	}

	var namespace string
	var ageMinutes int
	var nowait bool
	cobraCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete stale inspection pods",
		Long: "Delete stale inspection pods.\n\n" +
			"A pod is stale if it is older than the age threshold, or if a " +
			"previous session marked it for deferred deletion.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(namespace, ageMinutes, !nowait); err != nil {
				errors.HandleFatalError(err)
			}
		},
	}
	cobraCmd.Flags().StringVarP(&namespace, "namespace", "n", metav1.NamespaceAll,
		"Only sweep the given namespace\nDefaults to sweeping the whole cluster")
	cobraCmd.Flags().IntVar(&ageMinutes, "age", cfg.SweepAge,
		"Age in minutes after which a pod is considered stale")
	cobraCmd.Flags().BoolVar(&nowait, "nowait", false,
		"Do not wait until each pod has been deleted")
	return cobraCmd
}

func run(namespace string, ageMinutes int, wait bool) error {
	kubeClient, _, err := kube.GetClient()
	if err != nil {
		return errors.WithContext("get kube client", err)
	}

	log.Infof("Cleaning up stale pods (older than %d minutes)", ageMinutes)
	_, err = kube.Sweep(context.Background(), kubeClient, namespace,
		time.Duration(ageMinutes)*time.Minute, wait)
	if err != nil {
		return errors.WithContext("sweep", err)
	}

	log.Info("Done")
	return nil
}
