package list

import (
	"fmt"
	"io"
	"text/tabwriter"

	corev1 "k8s.io/api/core/v1"
)

// Print writes a table of the given volume claims, one row per claim with
// its creation time and requested size.
func Print(w io.Writer, pvcs []corev1.PersistentVolumeClaim) {
	tw := tabwriter.NewWriter(w, 0, 0, 4, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "NAME\tCREATED\tSIZE")

	for _, pvc := range pvcs {
		var created, size string
		if !pvc.CreationTimestamp.IsZero() {
			created = pvc.CreationTimestamp.Format("2006-01-02 15:04:05")
		}
		if storage, ok := pvc.Spec.Resources.Requests[corev1.ResourceStorage]; ok {
			size = storage.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", pvc.Name, created, size)
	}
}
