package names_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volumekit/pvc-inspect/pkg/hash"
	"github.com/volumekit/pvc-inspect/pkg/names"
)

func TestPodPrefix(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expOutput string
	}{
		{
			name:      "already valid",
			input:     "data-1",
			expOutput: "pvc-inspect-data-1-",
		},
		{
			name:      "convert to lowercase",
			input:     "Data-1",
			expOutput: "pvc-inspect-data-1-",
		},
		{
			name:      "remove garbage characters",
			input:     "da{ta_1",
			expOutput: "pvc-inspect-data1-",
		},
		{
			name:      "remove leading and trailing hyphens",
			input:     "-data-1-",
			expOutput: "pvc-inspect-data-1-",
		},
		{
			name:      "purely invalid input",
			input:     "***",
			expOutput: "pvc-inspect-pvc-",
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.expOutput, names.PodPrefix(test.input), test.name)
	}
}

func TestPodPrefixTruncates(t *testing.T) {
	long := strings.Repeat("a", 60) + "-tail"
	prefix := names.PodPrefix(long)

	expHash := hash.DnsCompliant(long)[:8]
	exp := fmt.Sprintf("pvc-inspect-%s-%s-", strings.Repeat("a", 36), expHash)
	assert.Equal(t, exp, prefix)

	// The API server appends 5 more characters; the total has to fit in a
	// DNS-1123 label.
	assert.Less(t, len(prefix)+5, 64)
}

func TestPodPrefixFitsDNSLabel(t *testing.T) {
	inputs := []string{
		"data",
		strings.Repeat("a", 36),
		strings.Repeat("a", 37),
		strings.Repeat("pvc-", 40),
		"***",
	}

	for _, input := range inputs {
		prefix := names.PodPrefix(input)
		assert.LessOrEqual(t, len(prefix)+5, 63, input)
	}
}
