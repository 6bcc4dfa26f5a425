package http

import (
	"errors"
	"strings"
)

// detail strips the sentinel prefix added by fmt.Errorf("%w: ...") so the
// client sees only the human readable part.
func detail(err, sentinel error) string {
	msg := err.Error()
	if errors.Is(err, sentinel) {
		if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != "" {
			return trimmed
		}
	}
	return msg
}
