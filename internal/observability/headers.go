package observability

import (
	"net/http"

	"github.com/google/uuid"
)

// NewRequestID generates the per-request correlation id attached to
// outgoing REST calls.
func NewRequestID() string {
	return uuid.NewString()
}

// NewDeviceID generates the per-process device id reported to the backend.
func NewDeviceID() string {
	return uuid.NewString()
}

// DecorateRequest stamps the correlation headers the backend expects.
func DecorateRequest(req *http.Request, requestID, deviceID string) {
	if requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}
	if deviceID != "" {
		req.Header.Set("X-Device-Id", deviceID)
	}
}
