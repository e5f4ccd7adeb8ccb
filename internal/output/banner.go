package output

import (
	"fmt"
	"io"

	"github.com/volleyfire/volleyfire/internal/workload"
)

// PrintBanner announces the run before the first request is sent.
func PrintBanner(w io.Writer, spec *workload.Spec) {
	switch spec.Stop.Mode {
	case workload.StopAfterDuration:
		fmt.Fprintf(w, "volleyfire to %s with %d concurrent clients for %s\n",
			spec.URL, spec.Concurrency, spec.Stop.Duration)
	case workload.StopFirstOf:
		fmt.Fprintf(w, "volleyfire to %s with %d concurrent clients for %s or %d total iterations\n",
			spec.URL, spec.Concurrency, spec.Stop.Duration, spec.Stop.Iterations)
	default:
		fmt.Fprintf(w, "volleyfire to %s with %d concurrent clients and %d total iterations\n",
			spec.URL, spec.Concurrency, spec.Stop.Iterations)
	}
}
