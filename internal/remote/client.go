// Package remote talks to the schedule and realtime services. Client is a
// syncer.Store backed by the node API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"channel-scheduler/internal/tree"
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("remote: %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("remote: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Msg)
}

type Client struct {
	baseURL string
	hc      *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do sends body as JSON and decodes the answer into out when out is non-nil.
// The request id of ctx, if any, is forwarded so both services log the same
// id.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set(middleware.RequestIDHeader, reqID)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Msg: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Create(ctx context.Context, n tree.Node) (string, error) {
	n = n.Fields()
	n.ID = ""
	var created tree.Node
	if err := c.do(ctx, http.MethodPost, "/nodes", n, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("remote: create %s %q: no id in response", n.Type, n.Name)
	}
	return created.ID, nil
}

func (c *Client) Update(ctx context.Context, id string, p tree.Patch) error {
	return c.do(ctx, http.MethodPatch, "/nodes/"+id, p, nil)
}

func (c *Client) BatchDelete(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "/nodes/batch-delete", map[string]any{"ids": ids}, nil)
}

func (c *Client) FetchAll(ctx context.Context) ([]tree.Node, error) {
	var nodes []tree.Node
	if err := c.do(ctx, http.MethodGet, "/nodes", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}
