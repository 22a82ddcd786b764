package httpx

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// AUTHENTICATION STRATEGIES
// =============================================================================

// AuthConfig represents authentication configuration. Apply may
// perform network calls (token refresh) and therefore takes a context.
type AuthConfig interface {
	Apply(ctx context.Context, req *http.Request) error
}

// NoAuth represents no authentication.
type NoAuth struct{}

func (a NoAuth) Apply(ctx context.Context, req *http.Request) error { return nil }

// QueryAPIKey appends an API key as a query parameter (TMDB, YouTube
// style).
type QueryAPIKey struct {
	Key   string
	Param string // query param name (default: "key")
}

// Apply adds the API key to the request query string.
func (a QueryAPIKey) Apply(ctx context.Context, req *http.Request) error {
	if a.Key == "" {
		return nil
	}
	param := a.Param
	if param == "" {
		param = "key"
	}
	q := req.URL.Query()
	q.Set(param, a.Key)
	req.URL.RawQuery = q.Encode()
	return nil
}

// BearerToken uses a static Bearer token.
type BearerToken struct {
	Token string
}

// Apply adds the Bearer token header to the request.
func (a BearerToken) Apply(ctx context.Context, req *http.Request) error {
	if a.Token == "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	return nil
}

// =============================================================================
// OAUTH2 CLIENT CREDENTIALS
// =============================================================================

// refreshMargin is how long before expiry a token is refreshed.
// Refresh is always proactive; a 401 is never the trigger.
const refreshMargin = 60 * time.Second

// OAuthClientCredentials holds a client-credentials token and refreshes
// it proactively within refreshMargin of expiry.
type OAuthClientCredentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string

	// Transport for the token request (tests inject a stub).
	Transport http.RoundTripper

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewOAuthClientCredentials creates the auth strategy for an
// OAuth2 client-credentials source.
func NewOAuthClientCredentials(clientID, clientSecret, tokenURL string) *OAuthClientCredentials {
	return &OAuthClientCredentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		now:          time.Now,
	}
}

// Apply ensures a fresh token and sets the Authorization header.
func (a *OAuthClientCredentials) Apply(ctx context.Context, req *http.Request) error {
	token, err := a.ensureToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (a *OAuthClientCredentials) ensureToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.now == nil {
		a.now = time.Now
	}
	if a.token != "" && a.now().Before(a.expiresAt.Add(-refreshMargin)) {
		return a.token, nil
	}
	return a.refreshLocked(ctx)
}

func (a *OAuthClientCredentials) refreshLocked(ctx context.Context) (string, error) {
	if a.ClientID == "" || a.ClientSecret == "" {
		return "", fmt.Errorf("oauth: client credentials not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("oauth: create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(a.ClientID + ":" + a.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 15 * time.Second, Transport: a.Transport}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("oauth: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Rejected credentials are a structural failure, not retryable.
		return "", &StatusError{StatusCode: resp.StatusCode, Message: "token endpoint rejected credentials"}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := decodeJSONBody(resp, &payload); err != nil {
		return "", fmt.Errorf("oauth: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("oauth: token endpoint returned empty access_token")
	}

	a.token = payload.AccessToken
	a.expiresAt = a.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return a.token, nil
}
