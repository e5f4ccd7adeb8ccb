package metrics

import (
	"strconv"
	"time"
)

// Class identifies how a completed request is counted.
type Class int

const (
	// ClassSuccess covers responses with a 2xx or 3xx status.
	ClassSuccess Class = iota
	// ClassHTTPError covers responses that arrived with any other status.
	ClassHTTPError
	// ClassTransportError covers attempts that failed before a status
	// line was received.
	ClassTransportError
)

func (c Class) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassHTTPError:
		return "http_error"
	case ClassTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// TransportReason categorizes failures that happened below the HTTP
// layer.
type TransportReason string

const (
	ReasonTimeout    TransportReason = "timeout"
	ReasonDNS        TransportReason = "dns"
	ReasonConnection TransportReason = "connection"
	ReasonTLS        TransportReason = "tls"
	ReasonOther      TransportReason = "other"
)

// Outcome is the record of one completed request attempt. Exactly one
// Outcome is produced per dispatched request, whatever its fate.
type Outcome struct {
	// Seq is the dispatch sequence number, unique within a run.
	Seq uint64
	// Worker identifies the worker goroutine that ran the attempt.
	Worker int
	// Latency spans dispatch to response completion or failure.
	Latency time.Duration
	Class   Class
	// StatusCode is set for ClassSuccess and ClassHTTPError.
	StatusCode int
	// Reason is set for ClassTransportError.
	Reason TransportReason
	// Err is set for every failed outcome.
	Err error
}

// Failed reports whether the outcome counts toward the failure total.
func (o Outcome) Failed() bool { return o.Class != ClassSuccess }

// BreakdownKey returns the error-breakdown bucket for a failed outcome:
// "HTTP <code>" for error statuses, the transport reason otherwise.
// Successful outcomes have no bucket.
func (o Outcome) BreakdownKey() string {
	switch o.Class {
	case ClassHTTPError:
		return "HTTP " + strconv.Itoa(o.StatusCode)
	case ClassTransportError:
		if o.Reason == "" {
			return string(ReasonOther)
		}
		return string(o.Reason)
	default:
		return ""
	}
}

// Status renders the outcome the way verbose output and failure logs
// report it.
func (o Outcome) Status() string {
	if o.Class == ClassTransportError {
		return "failed (" + o.BreakdownKey() + ")"
	}
	return strconv.Itoa(o.StatusCode)
}
