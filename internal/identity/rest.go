package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ridelinkapp/ridelink/internal/common"
)

// RESTClient implements Client against a hosted identity service exposing a
// Firebase-Auth-style JSON API (accounts:signInWithPassword, accounts:lookup,
// accounts:delete). Retry and timeout policy lives here, at the network
// boundary, not in the core.
type RESTClient struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu      sync.Mutex
	current *Subject
}

// NewRESTClient returns a client for the identity API at baseURL.
func NewRESTClient(baseURL, apiKey string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 12 * time.Second},
	}
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// post sends a JSON request to the named endpoint and decodes the response
// into out. Provider rejections and transport failures are mapped to the
// package's sentinel errors.
func (c *RESTClient) post(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/accounts:%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: provider returned %d", common.ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("provider returned %d", resp.StatusCode)
		}
		return mapProviderError(apiErr.Error.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

func mapProviderError(message string) error {
	switch {
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(message, "USER_DISABLED"):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("provider error: %s", message)
	}
}

type signInResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

func (c *RESTClient) SignIn(ctx context.Context, email, password string) (*Subject, error) {
	var resp signInResponse
	err := c.post(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	subject := &Subject{
		UID:           resp.LocalID,
		Email:         resp.Email,
		EmailVerified: emailVerifiedClaim(resp.IDToken),
		IDToken:       resp.IDToken,
	}

	c.mu.Lock()
	c.current = subject
	c.mu.Unlock()

	return subject, nil
}

// emailVerifiedClaim extracts the email_verified claim from the provider's
// ID token. The token arrived from the provider over TLS, so its signature
// is not re-verified client-side.
func emailVerifiedClaim(idToken string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return false
	}
	verified, _ := claims["email_verified"].(bool)
	return verified
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
	} `json:"users"`
}

func (c *RESTClient) Reload(ctx context.Context, subject *Subject) error {
	var resp lookupResponse
	err := c.post(ctx, "lookup", map[string]any{"idToken": subject.IDToken}, &resp)
	if err != nil {
		return err
	}
	if len(resp.Users) == 0 {
		return ErrInvalidCredentials
	}
	subject.EmailVerified = resp.Users[0].EmailVerified
	return nil
}

func (c *RESTClient) IsEmailVerified(subject *Subject) bool {
	if subject == nil {
		return false
	}
	return subject.EmailVerified
}

// SignOut drops the provider session. Token-based providers have no
// server-side logout; discarding the token ends the session.
func (c *RESTClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	return nil
}

func (c *RESTClient) CurrentSession() *Subject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *RESTClient) DeleteSelf(ctx context.Context, subject *Subject) error {
	current := c.CurrentSession()
	if current == nil || current.UID != subject.UID {
		return ErrInvalidCredentials
	}

	if err := c.post(ctx, "delete", map[string]any{"idToken": subject.IDToken}, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	return nil
}
