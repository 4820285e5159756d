package qualitygate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/deploy-man/deploy-man/internal/creds"
)

// HTTPSource polls an analysis server's quality gate API for a project's
// verdict. The response shape matches the common
// api/qualitygates/project_status endpoint:
//
//	{"projectStatus": {"status": "OK" | "ERROR" | "NONE"}}
type HTTPSource struct {
	serverURL  string
	projectKey string
	token      creds.Credential
	client     *http.Client
}

// NewHTTPSource creates a source for the given analysis server and project
func NewHTTPSource(serverURL, projectKey string, token creds.Credential) *HTTPSource {
	return &HTTPSource{
		serverURL:  serverURL,
		projectKey: projectKey,
		token:      token,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// projectStatusResponse is the subset of the gate API response we care about
type projectStatusResponse struct {
	ProjectStatus struct {
		Status string `json:"status"`
	} `json:"projectStatus"`
}

// Check queries the server once. An in-progress analysis reports
// StatusUnknown so the waiter keeps polling.
func (s *HTTPSource) Check(ctx context.Context) (Status, error) {
	endpoint := fmt.Sprintf("%s/api/qualitygates/project_status?projectKey=%s",
		s.serverURL, url.QueryEscape(s.projectKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to build gate request: %w", err)
	}
	req.SetBasicAuth(s.token.Username, s.token.Secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return StatusUnknown, fmt.Errorf("gate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusUnknown, fmt.Errorf("gate request returned %s", resp.Status)
	}

	var body projectStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return StatusUnknown, fmt.Errorf("failed to parse gate response: %w", err)
	}

	switch body.ProjectStatus.Status {
	case "OK":
		return StatusPassed, nil
	case "ERROR", "WARN":
		return StatusFailed, nil
	default:
		// NONE or IN_PROGRESS: no verdict yet
		return StatusUnknown, nil
	}
}
