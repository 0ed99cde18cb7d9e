package kroger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caloriecart/backend/internal/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// tokenExpirySlack renews tokens slightly before the server expires them.
const tokenExpirySlack = 30 * time.Second

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AccessToken returns a usable token, acquiring one with client credentials when needed.
func (c *Client) AccessToken(ctx context.Context) (*domain.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.token.Expired(c.now()) {
		return c.token, nil
	}

	if tok := c.cachedToken(ctx); tok != nil {
		c.token = tok
		return tok, nil
	}

	tok, err := c.requestToken(ctx, url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {c.scope},
	})
	if err != nil {
		return nil, err
	}
	c.storeToken(ctx, tok)
	log.WithField("expires_at", tok.ExpiresAt).Info("access token obtained")
	return tok, nil
}

// SetToken installs a token obtained elsewhere, such as the authorization code flow.
func (c *Client) SetToken(ctx context.Context, tok *domain.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeToken(ctx, tok)
}

// AuthorizationURL is the page the user visits to grant access.
func (c *Client) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("scope", c.scope)
	params.Set("response_type", "code")
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	if state != "" {
		params.Set("state", state)
	}
	return c.baseURL + "/connect/oauth2/authorize?" + params.Encode()
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", domain.ErrAuthFailure)
	}

	tok, err := c.requestToken(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	})
	if err != nil {
		return nil, err
	}

	c.SetToken(ctx, tok)
	log.WithField("expires_at", tok.ExpiresAt).Info("access token obtained from authorization code")
	return tok, nil
}

// AuthorizeWithUser runs the authorization code flow: it listens on the redirect
// URI, hands the authorization URL to open, waits for the callback and exchanges the code.
func (c *Client) AuthorizeWithUser(ctx context.Context, open func(authURL string) error) (*domain.Token, error) {
	redirect, err := url.Parse(c.redirectURI)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: invalid redirect URI %q", domain.ErrInvalidRequest, c.redirectURI)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}

	state := uuid.NewString()
	callback := NewCallbackHandler(redirect.Path, state)
	server := &http.Server{Handler: callback, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("callback listener stopped")
		}
	}()
	defer server.Close()

	authURL := c.AuthorizationURL(state)
	log.WithField("url", authURL).Info("waiting for authorization, visit the URL if no browser opens")
	if open != nil {
		if err := open(authURL); err != nil {
			log.WithError(err).Warn("could not open browser")
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case code := <-callback.Codes():
		return c.ExchangeCode(ctx, code)
	}
}

// CallbackHandler receives the OAuth redirect. It answers 200 when a code
// arrives with the expected state and 400 otherwise.
type CallbackHandler struct {
	path  string
	state string
	codes chan string
}

// NewCallbackHandler serves path and only accepts callbacks carrying state.
// An empty state disables the check.
func NewCallbackHandler(path, state string) *CallbackHandler {
	if path == "" {
		path = "/"
	}
	return &CallbackHandler{path: path, state: state, codes: make(chan string, 1)}
}

// Codes delivers the first accepted authorization code.
func (h *CallbackHandler) Codes() <-chan string {
	return h.codes
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != h.path {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	if code == "" || (h.state != "" && query.Get("state") != h.state) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>"))

	select {
	case h.codes <- code:
	default:
	}
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*domain.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connect/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveCatalogRequest("token", "error")
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveCatalogRequest("token", fmt.Sprintf("%d", resp.StatusCode))

	body, _ := readLimitedBody(resp.Body, 1<<20)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrAuthFailure, resp.StatusCode, truncate(body, maxErrorBodyBytes))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: response has no access_token", domain.ErrAuthFailure)
	}

	return &domain.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		ExpiresAt:   c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySlack),
	}, nil
}

func (c *Client) tokenCacheKey() string {
	return fmt.Sprintf("kroger:token:%s:%s", c.clientID, c.scope)
}

// cachedToken reads a token shared through the cache; tokens are stored as JSON strings.
func (c *Client) cachedToken(ctx context.Context) *domain.Token {
	if c.tokenCache == nil {
		return nil
	}
	value, err := c.tokenCache.Get(ctx, c.tokenCacheKey())
	if err != nil {
		return nil
	}
	raw, ok := value.(string)
	if !ok {
		return nil
	}
	var tok domain.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil || tok.Expired(c.now()) {
		return nil
	}
	return &tok
}

// storeToken must be called with c.mu held.
func (c *Client) storeToken(ctx context.Context, tok *domain.Token) {
	c.token = tok
	if c.tokenCache == nil || tok == nil {
		return
	}
	ttl := tok.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return
	}
	if err := c.tokenCache.Set(ctx, c.tokenCacheKey(), string(raw), ttl); err != nil {
		log.WithError(err).Warn("failed to cache access token")
	}
}

func (c *Client) clearToken(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	if c.tokenCache != nil {
		_ = c.tokenCache.Delete(ctx, c.tokenCacheKey())
	}
}
