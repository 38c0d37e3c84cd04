package api

import (
	"bytes"
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

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

const (
	maxResponseBytes  = 8 << 20
	idempotencyHeader = "Idempotency-Key"
)

// Client talks to the templates REST API. It never retries: a failed call is
// reported to the caller, who decides whether to submit again.
type Client struct {
	baseURL   *url.URL
	base      *http.Client
	http      *http.Client
	tokens    oauth2.TokenSource
	timeout   time.Duration
	logger    *zap.Logger
	userAgent string
	newKey    func() string
}

var _ Store = (*Client)(nil)

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("api: base URL is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL %q must use http or https", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	c := &Client{
		baseURL:   parsed,
		base:      http.DefaultClient,
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
		userAgent: "go-pubtemplate",
		newKey:    newIdempotencyKey,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	client := *c.base
	if c.tokens != nil {
		transport := client.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		client.Transport = &oauth2.Transport{Source: c.tokens, Base: transport}
	}
	c.http = &client
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type createResponse struct {
	ID int64 `json:"id"`
}

// CreateTemplate posts doc to its owning task and returns the new id. Every
// call carries a fresh Idempotency-Key.
func (c *Client) CreateTemplate(ctx context.Context, doc model.Template) (int64, error) {
	if doc.TaskID <= 0 {
		return 0, errors.New("api: create template: taskId is required")
	}
	doc.ID = 0

	var resp createResponse
	headers := http.Header{}
	headers.Set(idempotencyHeader, c.newKey())
	if err := c.do(ctx, http.MethodPost, taskTemplatesPath(doc.TaskID), doc, &resp, headers); err != nil {
		return 0, err
	}
	if resp.ID <= 0 {
		return 0, errors.New("api: create template: response carried no id")
	}
	return resp.ID, nil
}

// UpdateTemplate replaces the template with the given id.
func (c *Client) UpdateTemplate(ctx context.Context, id int64, doc model.Template) error {
	if id <= 0 {
		return errors.New("api: update template: id is required")
	}
	doc.ID = id
	return c.do(ctx, http.MethodPut, templatePath(id), doc, nil, nil)
}

// DeleteTemplate removes the template with the given id.
func (c *Client) DeleteTemplate(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("api: delete template: id is required")
	}
	return c.do(ctx, http.MethodDelete, templatePath(id), nil, nil, nil)
}

// GetTemplate fetches a single template.
func (c *Client) GetTemplate(ctx context.Context, id int64) (model.Template, error) {
	if id <= 0 {
		return model.Template{}, errors.New("api: get template: id is required")
	}
	var tpl model.Template
	if err := c.do(ctx, http.MethodGet, templatePath(id), nil, &tpl, nil); err != nil {
		return model.Template{}, err
	}
	return tpl, nil
}

// ListTemplates returns the templates owned by a task. Both a bare array and
// an object with a "templates" member are accepted.
func (c *Client) ListTemplates(ctx context.Context, ownerID int64) ([]model.Template, error) {
	if ownerID <= 0 {
		return nil, errors.New("api: list templates: owner id is required")
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, taskTemplatesPath(ownerID), nil, &raw, nil); err != nil {
		return nil, err
	}
	return decodeTemplateList(raw)
}

func decodeTemplateList(raw json.RawMessage) ([]model.Template, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.Template{}, nil
	}

	var list []model.Template
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("api: decode template list: %w", err)
		}
	} else {
		var envelope struct {
			Templates []model.Template `json:"templates"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("api: decode template list: %w", err)
		}
		list = envelope.Templates
	}
	if list == nil {
		list = []model.Template{}
	}
	return list, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, headers http.Header) error {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + path
	req, err := http.NewRequestWithContext(reqCtx, method, endpoint.String(), payload)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api: request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.logger.Debug("api: request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))
	if err != nil {
		return fmt.Errorf("api: read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(method, path, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func taskTemplatesPath(taskID int64) string {
	return "/tasks/" + strconv.FormatInt(taskID, 10) + "/templates"
}

func templatePath(id int64) string {
	return "/templates/" + strconv.FormatInt(id, 10)
}
