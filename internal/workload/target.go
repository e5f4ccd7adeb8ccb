package workload

import (
	"fmt"
	"net/http"
	"strings"
)

// ParseTarget splits a target expression into method and URL. The
// method may be given as a prefix, as in "POST https://example.com";
// without one, or with an unrecognized prefix, the method is GET.
func ParseTarget(target string) (method, rawURL string) {
	fields := strings.Fields(target)
	switch len(fields) {
	case 0:
		return http.MethodGet, ""
	case 1:
		return http.MethodGet, fields[0]
	default:
		method = strings.ToUpper(fields[0])
		if _, ok := knownMethods[method]; !ok {
			method = http.MethodGet
		}
		return method, fields[1]
	}
}

// ParseHeaderLine parses a single "Name: value" argument. The value may
// itself contain colons.
func ParseHeaderLine(line string) (Header, error) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return Header{}, fmt.Errorf("header must be in \"Name: value\" form: %s", line)
	}
	h := Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
	if h.Name == "" {
		return Header{}, fmt.Errorf("header name cannot be empty: %s", line)
	}
	return h, nil
}
