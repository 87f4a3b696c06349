// Package mirror is the HTTP client for the update download mirrors.
package mirror

import (
	"fmt"
	"net/http"
	"time"
)

// requestTimeout is the only hard upper bound on how long a fetch can run;
// there is no cancellation token in the background fetch path.
const requestTimeout = 30 * time.Second

// Get fetches url from an update mirror with a bounded timeout. Mirrors are
// unauthenticated static hosts; responses are interpreted by status code
// only.
func Get(url, userAgent string) (*http.Response, error) {
	client := &http.Client{Timeout: requestTimeout}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return client.Do(req)
}

// UserAgent builds the request User-Agent for the given program version.
func UserAgent(version string) string {
	return fmt.Sprintf("mcplink-update/%s", version)
}
