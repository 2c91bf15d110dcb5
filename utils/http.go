// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for calls to collaborator services
// (profile sync). Generous timeout for batch profile pulls.
var HTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}
