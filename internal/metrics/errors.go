package metrics

import (
	"strings"

	"github.com/torosent/volley/internal/task"
)

var kindLabels = map[task.Kind]string{
	task.KindTimeout:   "Request timeout",
	task.KindDNS:       "DNS lookup failed",
	task.KindNetwork:   "Network error",
	task.KindRequest:   "Invalid request",
	task.KindResponse:  "Response read failed",
	task.KindCancelled: "Cancelled",
}

// FailureLabel returns a human-friendly label for a failure kind.
func FailureLabel(kind string) string {
	cleaned := strings.TrimSpace(kind)
	if cleaned == "" {
		return "Unknown error"
	}
	if label, ok := kindLabels[task.Kind(strings.ToLower(cleaned))]; ok {
		return label
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
