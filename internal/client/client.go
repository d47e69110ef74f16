package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/imrishuroy/dispatch-board/internal/dispatch"
	"github.com/imrishuroy/dispatch-board/internal/validation"
)

const dispatchPath = "/api/dispatch"

// ErrUnexpectedStatus marks a response outside the documented status codes.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError carries the status and a prefix of the body of a failed call.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrUnexpectedStatus }

// Client talks to the dispatch API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL whose requests give up after timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(timeout),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// FetchSnapshot reads the active set. A 204 answer yields (nil, nil): there is
// nothing to show, which is not an error.
func (c *Client) FetchSnapshot(ctx context.Context) ([]dispatch.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dispatchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	case http.StatusOK:
		records := []dispatch.Record{}
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		return records, nil
	default:
		return nil, statusError(resp)
	}
}

// Submit posts a new dispatch and returns the stored record.
func (c *Client) Submit(ctx context.Context, in validation.CreateDispatchRequest) (dispatch.Record, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return dispatch.Record{}, fmt.Errorf("marshal submission: %w", err)
	}
	return c.SubmitRaw(ctx, body)
}

// SubmitRaw posts an already-encoded submission body.
func (c *Client) SubmitRaw(ctx context.Context, body []byte) (dispatch.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+dispatchPath, bytes.NewReader(body))
	if err != nil {
		return dispatch.Record{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dispatch.Record{}, fmt.Errorf("post dispatch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dispatch.Record{}, statusError(resp)
	}
	var rec dispatch.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return dispatch.Record{}, fmt.Errorf("decode dispatch: %w", err)
	}
	return rec, nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}
