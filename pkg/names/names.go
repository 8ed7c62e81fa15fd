package names

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/volumekit/pvc-inspect/pkg/hash"
)

const (
	namePrefix = "pvc-inspect-"
	hashLen    = 8

	// The API server appends a random suffix of this length to generateName.
	suffixLen = 5

	// maxPVCLen bounds the PVC-derived part of the pod name so that the full
	// generated name (prefix, hash, and the suffix appended by the API
	// server) fits in the 63 character limit for DNS-1123 labels. The two
	// extra characters are the hyphens around the hash.
	maxPVCLen = 63 - len(namePrefix) - hashLen - suffixLen - 2
)

// PodPrefix returns the generateName prefix for the inspection pod mounting
// the given PVC. The cluster appends a random suffix, so collisions between
// concurrent sessions are the API server's problem, not ours.
//
// PVC names are already DNS-1123 compliant, but we sanitize anyway since the
// name may have come from a config file rather than the cluster.
func PodPrefix(pvc string) string {
	sanitized := strings.ToLower(pvc)
	invalidChars := regexp.MustCompile(`[^-a-z0-9]`)
	sanitized = invalidChars.ReplaceAllString(sanitized, "")
	sanitized = strings.Trim(sanitized, "-")

	if len(sanitized) > maxPVCLen {
		// Append a hash so that PVCs that only differ after the
		// truncation point still get distinguishable pod names.
		h := hash.DnsCompliant(pvc)[:hashLen]
		sanitized = fmt.Sprintf("%s-%s", sanitized[:maxPVCLen], h)
	}

	if len(sanitized) == 0 {
		sanitized = "pvc"
	}

	return fmt.Sprintf("%s%s-", namePrefix, sanitized)
}
