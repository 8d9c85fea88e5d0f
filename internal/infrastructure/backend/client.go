package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client talks to the admin backend's auth endpoints.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

var _ ports.AuthGateway = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		validate: validator.New(),
		log:      log.With().Str("component", "backend").Logger(),
		now:      time.Now,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token" validate:"required"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user" validate:"required"`
	ExpiresIn   int64        `json:"expires_in" validate:"gte=0"`
}

// errorBody is the backend's failure envelope. Detail is a string for
// business errors and a list for request validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Login posts the credentials to /api/login.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*ports.LoginResponse, error) {
	body, err := json.Marshal(loginRequest{Username: creds.Username, Password: creds.Password})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		bErr := c.backendError(resp, "Login failed")
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
			bErr.Err = domain.ErrInvalidCredentials
		}
		return nil, bErr
	}

	var out loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode login response: %w: %v", domain.ErrInvalidUser, err)
	}
	if err := c.validate.Struct(out); err != nil {
		return nil, fmt.Errorf("login response: %w: %v", domain.ErrInvalidUser, err)
	}

	ttl := c.tokenTTL(out.AccessToken, time.Duration(out.ExpiresIn)*time.Second)
	if ttl < 0 {
		return nil, fmt.Errorf("login response: %w", domain.ErrTokenInvalidOrExpired)
	}

	return &ports.LoginResponse{Token: out.AccessToken, User: out.User, TTL: ttl}, nil
}

// WhoAmI calls /api/me with token. Every non-2xx answer means the token is
// no longer usable.
func (c *Client) WhoAmI(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build whoami request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		bErr := c.backendError(resp, "Could not validate credentials")
		bErr.Err = domain.ErrTokenInvalidOrExpired
		return nil, bErr
	}

	var user domain.User
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode whoami response: %w: %v", domain.ErrInvalidUser, err)
	}
	if err := c.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("whoami response: %w: %v", domain.ErrInvalidUser, err)
	}
	return &user, nil
}

// Ping checks the backend's /health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("backend health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("backend unreachable")
		return nil, fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, domain.ErrNetworkFailure, err)
	}
	return resp, nil
}

func (c *Client) backendError(resp *http.Response, fallback string) *domain.BackendError {
	bErr := &domain.BackendError{Status: resp.StatusCode, Detail: fallback}

	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return bErr
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil && detail != "" {
		bErr.Detail = detail
	}
	return bErr
}

// tokenTTL prefers the shorter of expires_in and the JWT's own exp claim.
// Opaque tokens simply fall back to expires_in. A negative result means the
// token is already expired.
func (c *Client) tokenTTL(token string, expiresIn time.Duration) time.Duration {
	ttl := expiresIn

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ttl
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ttl
	}
	remaining := exp.Sub(c.now())
	if remaining <= 0 {
		return -1
	}
	if ttl <= 0 || remaining < ttl {
		return remaining
	}
	return ttl
}
