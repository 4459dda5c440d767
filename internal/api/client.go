// Package api is the HTTP client for the learning backend: topics, lessons,
// exercises and the seed action.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
)

const defaultTimeout = 30 * time.Second

// Client talks to the learning API rooted at baseURL.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API at baseURL, e.g. http://localhost:8000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Topics lists all topics.
func (c *Client) Topics(ctx context.Context) ([]curriculum.Topic, error) {
	var topics []curriculum.Topic
	if err := c.getList(ctx, "list topics", "/api/topics", topicsSchema, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// Lessons lists the lessons of a topic.
func (c *Client) Lessons(ctx context.Context, topicID string) ([]curriculum.Lesson, error) {
	path := fmt.Sprintf("/api/topics/%s/lessons", url.PathEscape(topicID))

	var lessons []curriculum.Lesson
	if err := c.getList(ctx, "list lessons", path, lessonsSchema, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// Exercises lists the exercises of a lesson.
func (c *Client) Exercises(ctx context.Context, lessonID string) ([]curriculum.Exercise, error) {
	path := fmt.Sprintf("/api/lessons/%s/exercises", url.PathEscape(lessonID))

	var exercises []curriculum.Exercise
	if err := c.getList(ctx, "list exercises", path, exercisesSchema, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Seed asks the backend to populate sample content. The response body is
// ignored.
func (c *Client) Seed(ctx context.Context) error {
	_, err := c.do(ctx, "seed content", http.MethodPost, "/api/seed")
	return err
}

func (c *Client) getList(ctx context.Context, op, path string, schema *gojsonschema.Schema, out any) error {
	body, err := c.do(ctx, op, http.MethodGet, path)
	if err != nil {
		return err
	}

	if !json.Valid(body) {
		return &Error{Op: op, Kind: ErrDecode, Err: fmt.Errorf("body is not JSON: %q", excerpt(body))}
	}
	if err := validate(schema, body); err != nil {
		return &Error{Op: op, Kind: ErrMalformed, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Kind: ErrDecode, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrTransport, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrTransport, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("api request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Kind: ErrStatus, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	return body, nil
}
