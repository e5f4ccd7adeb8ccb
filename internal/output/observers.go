package output

import (
	"fmt"
	"io"

	"github.com/volleyfire/volleyfire/internal/metrics"
)

// Verbose returns an observer that prints one line per completed
// request. Observers run on the aggregator goroutine, so writes to w
// are already serialized.
func Verbose(w io.Writer) func(metrics.Outcome) {
	return func(out metrics.Outcome) {
		fmt.Fprintf(w, "[Client %d Iteration %d] %s %dms\n",
			out.Worker, out.Seq, out.Status(), out.Latency.Milliseconds())
	}
}

// FailureLogger returns an observer that reports failed requests as
// they happen, for watching error detail without full verbose output.
func FailureLogger(w io.Writer) func(metrics.Outcome) {
	return func(out metrics.Outcome) {
		if !out.Failed() {
			return
		}
		fmt.Fprintf(w, "[volleyfire] request failed: %v\n", out.Err)
	}
}
