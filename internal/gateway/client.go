package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oncoref/oncoref/internal/log"
)

// RemoteError is the single error kind surfaced by the gateway. Message is
// the raw server body when non-empty, otherwise a status-derived fallback,
// or the transport error text when no response was received at all.
type RemoteError struct {
	Status  int // 0 when the request never reached the service
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client talks to the decision-support service.
//
// No retries and no client-side timeout: every call settles exactly once and
// every failure is surfaced synchronously to the caller. Cancellation, if any,
// comes from the caller's context.
type Client struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// New creates a Client rooted at baseURL (trailing slash tolerated).
func New(baseURL string, logger log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger,
	}
}

// Assess runs a one-shot structured assessment for the given patient.
func (c *Client) Assess(ctx context.Context, patientID string, topK int) (*AssessResult, error) {
	var res AssessResult
	err := c.do(ctx, http.MethodPost, "/assess", assessRequest{PatientID: patientID, TopK: topK}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SendMessage sends one chat message on the given session and returns the
// grounded answer.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string, topK int) (*ChatReply, error) {
	var res ChatReply
	err := c.do(ctx, http.MethodPost, "/chat", chatRequest{SessionID: sessionID, Message: message, TopK: topK}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// History fetches the full turn sequence for a session. An unknown session is
// not an error: it yields an empty sequence, degrading to a fresh session view.
func (c *Client) History(ctx context.Context, sessionID string) ([]Turn, error) {
	var res historyResponse
	err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(sessionID)+"/history", nil, &res)
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusNotFound {
			return []Turn{}, nil
		}
		return nil, err
	}
	if res.History == nil {
		return []Turn{}, nil
	}
	return res.History, nil
}

// Clear empties a session's turn content on the service. Idempotent: clearing
// an unknown or already-empty session is a non-error outcome.
func (c *Client) Clear(ctx context.Context, sessionID string) (bool, error) {
	var res clearResponse
	err := c.do(ctx, http.MethodDelete, "/chat/"+url.PathEscape(sessionID), nil, &res)
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusNotFound {
			return true, nil
		}
		return false, err
	}
	return res.Cleared, nil
}

// do issues one request and decodes the JSON response into out.
// Every failure path funnels into *RemoteError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Message: fmt.Sprintf("encoding request: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RemoteError{Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return &RemoteError{Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(text))
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		c.logger.Debug("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return &RemoteError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}
