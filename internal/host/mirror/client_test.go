package mirror

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSetsUserAgent(t *testing.T) {
	t.Parallel()

	var gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	resp, err := Get(ts.URL, UserAgent("1.2.3"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotAgent != "mcplink-update/1.2.3" {
		t.Fatalf("User-Agent: got %q, want %q", gotAgent, "mcplink-update/1.2.3")
	}
}

func TestGetInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := Get("http://[::1]:namedport", "mcplink-update/test"); err == nil {
		t.Fatal("expected an error for an unparseable URL")
	}
}
