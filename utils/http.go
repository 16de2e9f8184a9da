// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound calls (news image imports).
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
