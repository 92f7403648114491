package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/sse"
)

// Interface compliance check.
var _ docchat.Transport = (*Client)(nil)

// Client implements [docchat.Transport] for the chat backend.
type Client struct {
	baseURL    string
	tokens     docchat.TokenSource
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client. Its Timeout must be zero or
// longer than any expected answer, since it also bounds streaming reads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new [Client] authenticating with tokens.
func New(tokens docchat.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		tokens:     tokens,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends a streaming chat request and dispatches the decoded events
// to h. A non-2xx response or an empty body is reported as a single
// transport EventError and nothing else is dispatched.
func (c *Client) Stream(ctx context.Context, req docchat.ChatRequest, h docchat.Handlers) error {
	httpReq, err := c.newRequest(ctx, streamPath, req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &docchat.TransportError{Err: fmt.Errorf("http: %w", err)}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) || resp.Body == http.NoBody {
		h.Dispatch(docchat.EventError{
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
			Kind:    docchat.ErrorTransport,
			Status:  resp.StatusCode,
		})
		return nil
	}

	if err := sse.Consume(ctx, resp.Body, h); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &docchat.TransportError{Err: fmt.Errorf("http: %w", err)}
	}
	return nil
}

// Complete sends the non-streaming fallback request.
func (c *Client) Complete(ctx context.Context, req docchat.ChatRequest) (docchat.Reply, error) {
	httpReq, err := c.newRequest(ctx, completePath, req)
	if err != nil {
		return docchat.Reply{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return docchat.Reply{}, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return docchat.Reply{}, parseHTTPError(resp)
	}

	var body apiReply
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return docchat.Reply{}, fmt.Errorf("http: decode reply: %w", err)
	}
	return convertReply(body), nil
}

func (c *Client) newRequest(ctx context.Context, path string, req docchat.ChatRequest) (*http.Request, error) {
	body, err := json.Marshal(apiRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
		TenantID:  req.TenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", req.TenantID)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("http: token: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

func convertReply(body apiReply) docchat.Reply {
	reply := docchat.Reply{
		Message:   body.Message,
		SessionID: body.SessionID,
	}
	for _, s := range body.Sources {
		reply.Sources = append(reply.Sources, docchat.Source{
			DocumentID: s.DocumentID,
			Title:      s.Title,
			URL:        s.URL,
			Snippet:    s.Snippet,
			Score:      s.Score,
		})
	}
	for _, t := range body.Tools {
		args := t.Args
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		reply.ToolCalls = append(reply.ToolCalls, docchat.ToolCall{Name: t.Name, Args: args})
	}
	return reply
}

func success(status int) bool { return status >= 200 && status <= 299 }

// parseHTTPError builds a TransportError from a non-2xx response. The
// server's detail is kept in the wrapped error for logs; Error() only shows
// the status.
func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &docchat.TransportError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Detail == "" {
		return &docchat.TransportError{Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	return &docchat.TransportError{Status: resp.StatusCode, Err: errors.New(apiErr.Detail)}
}
