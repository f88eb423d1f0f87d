package remote

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

	"github.com/decred/slog"
	"github.com/google/uuid"

	"titleshop/internal/engine"
)

const maxBodyBytes = 1 << 20

type Endpoints struct {
	Auth  string
	Game  string
	Chat  string
	Admin string
}

// Client implements engine.Remote over JSON request/response calls.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	log       slog.Logger
}

var _ engine.Remote = (*Client)(nil)

func New(endpoints Endpoints, httpClient *http.Client, log slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = slog.Disabled
	}
	return &Client{http: httpClient, endpoints: endpoints, log: log}
}

func endpoint(base, path string, query url.Values) (string, error) {
	u := base
	if path != "" {
		joined, err := url.JoinPath(base, path)
		if err != nil {
			return "", err
		}
		u = joined
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

func idQuery(key string, id int64) url.Values {
	return url.Values{key: []string{strconv.FormatInt(id, 10)}}
}

func (c *Client) get(ctx context.Context, op, base, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, base, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, op, base, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, base, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, op, method, base, path string, query url.Values, body, out any) error {
	target, err := endpoint(base, path, query)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("build url: %w", err)}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.Tracef("%s %s -> %d (%s)", method, target, resp.StatusCode, reqID)

	if msg, ok := errorField(raw); ok {
		return &RejectionError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorField extracts a non-empty "error" string from an object body.
func errorField(raw []byte) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil || probe.Error == "" {
		return "", false
	}
	return probe.Error, true
}
