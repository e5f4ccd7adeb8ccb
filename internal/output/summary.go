package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/volleyfire/volleyfire/internal/metrics"
)

// summaryRecord is one line of the run log: the report plus the
// context needed to compare runs later.
type summaryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Target    string    `json:"target"`
	metrics.Report
}

// AppendSummary appends one JSON line describing the finished run to
// path, creating the file if needed. An exclusive advisory lock keeps
// concurrent runs from interleaving partial lines.
func AppendSummary(path, target string, report metrics.Report) error {
	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock summary file: %w", err)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open summary file: %w", err)
	}
	defer f.Close()

	record := summaryRecord{
		Timestamp: time.Now().UTC(),
		Target:    target,
		Report:    report,
	}
	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
