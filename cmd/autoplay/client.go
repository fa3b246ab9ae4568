package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/service"
)

// Client drives one manual session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is bound to
func (c *Client) SessionID() string {
	return c.sessionID
}

// CreateSession creates a manual session and binds the client to it
func (c *Client) CreateSession(ctx context.Context, difficulty string) (*service.SessionInfo, error) {
	req := map[string]interface{}{"manual": true}
	if difficulty != "" {
		req["difficulty"] = difficulty
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return &session, nil
}

// Start begins a new run in the bound session
func (c *Client) Start(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/start"), nil, &state); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	return &state, nil
}

// SetDirection queues a turn for the next step
func (c *Client) SetDirection(ctx context.Context, d engine.Direction) (*service.DirectionResult, error) {
	var result service.DirectionResult
	body := map[string]string{"direction": d.String()}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/direction"), body, &result); err != nil {
		return nil, fmt.Errorf("set direction: %w", err)
	}
	return &result, nil
}

// Step advances the bound session by one tick
func (c *Client) Step(ctx context.Context) (*service.StepResult, error) {
	var result service.StepResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/step"), nil, &result); err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}
	return &result, nil
}

// DeleteSession removes the bound session
func (c *Client) DeleteSession(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, c.sessionPath(""), nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if result == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
