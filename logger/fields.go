package logger

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// LogIDKey identifies one run of the process in every line it logs.
	LogIDKey = "log_id"
	// RequestIDKey carries the id chi assigns to an HTTP request.
	RequestIDKey = "request_id"
)

func newLogID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// RequestID returns a field for an HTTP request id.
func RequestID(id string) zap.Field {
	return zap.String(RequestIDKey, id)
}
