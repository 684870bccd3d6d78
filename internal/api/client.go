package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nshafer/penlive/internal/pens"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned when the backend rejects the credentials or the token.
var ErrUnauthorized = errors.New("unauthorized")

// maxErrorBody bounds how much of a failed response is quoted in the error
const maxErrorBody = 512

// TokenResponse is the body of a successful POST /auth/login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Client talks to the dashboard REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient returns a client for baseURL. A nil logger logs nothing.
func NewClient(baseURL string, timeout time.Duration, insecureSkipVerify bool, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// Login exchanges a username and password for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.do(req, &token); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if token.AccessToken == "" {
		return nil, errors.New("login failed: response carried no access token")
	}
	return &token, nil
}

// GetPens fetches the dashboard snapshot.
func (c *Client) GetPens(ctx context.Context, token string) (*pens.PensData, error) {
	req, err := c.newAuthorizedRequest(ctx, token, "/pens")
	if err != nil {
		return nil, err
	}

	var data pens.PensData
	if err := c.do(req, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch pens: %w", err)
	}
	return &data, nil
}

// GetPenDetail fetches the detail of one pen. The room_ prefix is stripped from penID.
func (c *Client) GetPenDetail(ctx context.Context, token, penID string) (*pens.DetailData, error) {
	req, err := c.newAuthorizedRequest(ctx, token, "/pens/"+url.PathEscape(pens.PenID(penID))+"/detail")
	if err != nil {
		return nil, err
	}

	var detail pens.DetailData
	if err := c.do(req, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch pen %s: %w", penID, err)
	}
	return &detail, nil
}

func (c *Client) newAuthorizedRequest(ctx context.Context, token, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status_code", resp.StatusCode),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
