package qualitygate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deploy-man/deploy-man/internal/creds"
)

func newGateServer(t *testing.T, status string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/qualitygates/project_status" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("projectKey") != "hospital-app" {
			http.Error(w, "unknown project", http.StatusNotFound)
			return
		}
		if _, _, ok := r.BasicAuth(); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"projectStatus": {"status": %q}}`, status)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPSourceCheck(t *testing.T) {
	tests := []struct {
		serverStatus string
		want         Status
	}{
		{"OK", StatusPassed},
		{"ERROR", StatusFailed},
		{"WARN", StatusFailed},
		{"NONE", StatusUnknown},
		{"IN_PROGRESS", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.serverStatus, func(t *testing.T) {
			server := newGateServer(t, tt.serverStatus)
			source := NewHTTPSource(server.URL, "hospital-app", creds.Credential{Username: "token", Secret: "s"})

			got, err := source.Check(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestHTTPSourceCheckServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	source := NewHTTPSource(server.URL, "hospital-app", creds.Credential{})
	status, err := source.Check(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if status != StatusUnknown {
		t.Errorf("expected Unknown on server error, got %s", status)
	}
}

func TestHTTPSourceCheckUnreachable(t *testing.T) {
	source := NewHTTPSource("http://127.0.0.1:1", "hospital-app", creds.Credential{})
	if _, err := source.Check(context.Background()); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
