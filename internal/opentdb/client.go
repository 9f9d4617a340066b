package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultBaseURL  = "https://opentdb.com/api.php"
	DefaultTokenURL = "https://opentdb.com/api_token.php"
)

// ErrNoToken is reported when the API refuses to hand out a session token.
var ErrNoToken = errors.New("no session token")

// Config holds the endpoints and timeouts of the API client.
type Config struct {
	BaseURL  string
	TokenURL string
	Timeout  time.Duration
}

// Client fetches questions from Open Trivia DB. It owns a session token that
// is requested lazily and shared by all calls; the token is only mutated
// while mu is held.
type Client struct {
	cfg      Config
	http     *http.Client
	validate *validator.Validate

	mu    sync.Mutex
	token string
}

// NewClient creates a new API client. A nil httpClient gets a client with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:      cfg,
		http:     httpClient,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// FetchQuestions requests amount multiple-choice questions. Any failure is
// logged and yields an empty slice; callers treat empty and error alike.
func (c *Client) FetchQuestions(ctx context.Context, amount int) []Question {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureToken(ctx); err != nil {
		slog.Warn("Failed to get a session token from the trivia API", "error", err)
		return nil
	}

	q := url.Values{}
	q.Set("amount", strconv.Itoa(amount))
	q.Set("type", "multiple")
	q.Set("token", c.token)

	var resp questionsResponse
	if err := c.getJSON(ctx, c.cfg.BaseURL+"?"+q.Encode(), &resp); err != nil {
		slog.Warn("Trivia API request failed", "amount", amount, "error", err)
		return nil
	}

	if resp.ResponseCode != CodeSuccess {
		c.handleResponseCode(ctx, resp.ResponseCode)
		return nil
	}

	questions := make([]Question, 0, len(resp.Results))
	for _, r := range resp.Results {
		r.decode()
		if err := c.validate.Struct(r); err != nil {
			slog.Warn("Dropping malformed question from the trivia API", "question", r.Question, "error", err)
			continue
		}
		questions = append(questions, r)
	}
	slog.Debug("Fetched questions from the trivia API", "requested", amount, "received", len(questions))
	return questions
}

// Token returns the cached session token, empty if none.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// handleResponseCode logs an unsuccessful code and refreshes the token when the
// API says it is missing or exhausted. The failed request is not retried.
func (c *Client) handleResponseCode(ctx context.Context, code ResponseCode) {
	slog.Warn("Unsuccessful trivia API request", "code", int(code), "reason", code.String())

	if !code.resetsToken() {
		return
	}
	c.token = ""
	if err := c.ensureToken(ctx); err != nil {
		slog.Warn("Failed to refresh the session token", "error", err)
	}
}

// ensureToken requests a session token if none is cached. Must hold mu.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" {
		return nil
	}

	var resp tokenResponse
	if err := c.getJSON(ctx, c.cfg.TokenURL+"?command=request", &resp); err != nil {
		return err
	}
	if resp.ResponseCode != CodeSuccess || resp.Token == "" {
		return fmt.Errorf("%w: %s", ErrNoToken, resp.ResponseCode)
	}

	c.token = resp.Token
	slog.Debug("Obtained a new trivia API session token")
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", req.URL.Path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", res.StatusCode, req.URL.Path)
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
