package utils

import (
	"log"
	"strings"
)

const maxLogMessage = 512

// LogEvent prints standardized log line with module/action/request_id.
// Keep payloads out of msg; multi-line or oversized messages are flattened and cut.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, flatten(message))
}

func flatten(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxLogMessage {
		s = s[:maxLogMessage] + "..."
	}
	return s
}
