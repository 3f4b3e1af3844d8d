package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/coachlog/internal/models"
	"github.com/meltforce/coachlog/internal/storage"
)

// HTTPClient implements DataSource by calling the CoachLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server. The bearer token identifies the caller;
// a non-nil athlete ID is sent as athlete_id so coaches can query their
// athletes.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func athleteParams(athleteID uuid.UUID) url.Values {
	v := url.Values{}
	if athleteID != uuid.Nil {
		v.Set("athlete_id", athleteID.String())
	}
	return v
}

func (c *HTTPClient) LatestProgram(ctx context.Context, athleteID uuid.UUID) (*models.Program, error) {
	var p models.Program
	if err := c.getJSON(ctx, "/api/v1/programs/latest", athleteParams(athleteID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListPrograms(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.Program, error) {
	params := athleteParams(athleteID)
	params.Set("limit", strconv.Itoa(limit))
	var programs []models.Program
	if err := c.getJSON(ctx, "/api/v1/programs", params, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (c *HTTPClient) Progress(ctx context.Context, athleteID uuid.UUID) ([]models.LiftProgress, error) {
	var lifts []models.LiftProgress
	if err := c.getJSON(ctx, "/api/v1/progress", athleteParams(athleteID), &lifts); err != nil {
		return nil, err
	}
	return lifts, nil
}

func (c *HTTPClient) WeeklyRecap(ctx context.Context, athleteID uuid.UUID) (*models.Recap, error) {
	var recap models.Recap
	if err := c.getJSON(ctx, "/api/v1/recap", athleteParams(athleteID), &recap); err != nil {
		return nil, err
	}
	return &recap, nil
}

func (c *HTTPClient) QueryImportLogs(ctx context.Context, athleteID uuid.UUID, limit int) ([]models.ImportLog, error) {
	params := athleteParams(athleteID)
	params.Set("limit", strconv.Itoa(limit))
	var logs []models.ImportLog
	if err := c.getJSON(ctx, "/api/v1/imports", params, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Dashboard always describes the token's own profile.
func (c *HTTPClient) Dashboard(ctx context.Context, _ uuid.UUID) (*models.Dashboard, error) {
	var d models.Dashboard
	if err := c.getJSON(ctx, "/api/v1/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Ping checks the server is reachable and the token is accepted.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/api/v1/me", nil)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("httpclient: %s does not look like a CoachLog server", c.baseURL)
	}
	return err
}
