package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gotrue "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"

	"budget/internal/cache"
)

const (
	identityCacheSize = 1024
	identityCacheTTL  = 30 * time.Second
)

// ProviderError is a non-2xx answer from the auth provider. Message is safe
// to show to clients.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider returned %d: %s", e.Status, e.Message)
}

// Session is the provider's answer to a password login.
type Session struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	RefreshToken string          `json:"refresh_token"`
	User         json.RawMessage `json:"user,omitempty"`
}

// Credentials is the body accepted by signup and login.
type Credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// GoTrueClient wraps the provider's auth API (/auth/v1). Public calls go out
// with the anon key, token verification with the service key.
type GoTrueClient struct {
	anon       gotrue.Client
	service    gotrue.Client
	identities *cache.LRUCache[Identity]

	sweepMu    sync.Mutex
	lastSweep  time.Time
	sweepEvery time.Duration
}

var _ Verifier = (*GoTrueClient)(nil)

func NewGoTrueClient(baseURL, anonKey, serviceKey string) *GoTrueClient {
	authURL := strings.TrimRight(baseURL, "/") + "/auth/v1"
	return &GoTrueClient{
		anon:       gotrue.New("", anonKey).WithCustomAuthURL(authURL),
		service:    gotrue.New("", serviceKey).WithCustomAuthURL(authURL),
		identities: cache.NewLRUCache[Identity](identityCacheSize, identityCacheTTL),
		lastSweep:  time.Now(),
		sweepEvery: identityCacheTTL,
	}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Verify resolves the token with GET /user. Successful lookups are cached
// briefly by token hash.
func (c *GoTrueClient) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}
	key := tokenKey(token)
	if id, ok := c.identities.Get(key); ok {
		return id, nil
	}

	var user *types.UserResponse
	err := call(ctx, func() (err error) {
		user, err = c.service.WithToken(token).GetUser()
		return err
	})
	var perr *ProviderError
	if errors.As(err, &perr) && (perr.Status == http.StatusUnauthorized || perr.Status == http.StatusForbidden) {
		return Identity{}, fmt.Errorf("%w: %s", ErrInvalidToken, perr.Message)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("verify token: %w", err)
	}
	if user == nil || user.ID == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: provider returned no user id", ErrInvalidToken)
	}

	id := Identity{UserID: user.ID.String(), Email: user.Email, Role: user.Role}
	c.sweepExpired()
	c.identities.Set(key, id)
	return id, nil
}

// SignUp registers a new account. The provider's response is returned as is.
func (c *GoTrueClient) SignUp(ctx context.Context, creds Credentials) (json.RawMessage, error) {
	var resp *types.SignupResponse
	err := call(ctx, func() (err error) {
		resp, err = c.anon.Signup(types.SignupRequest{
			Email:    creds.Email,
			Password: creds.Password,
			Data:     creds.Data,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode signup response: %w", err)
	}
	return out, nil
}

// Login exchanges email and password for a session.
func (c *GoTrueClient) Login(ctx context.Context, creds Credentials) (Session, error) {
	var resp *types.TokenResponse
	err := call(ctx, func() (err error) {
		resp, err = c.anon.SignInWithEmailPassword(creds.Email, creds.Password)
		return err
	})
	if err != nil {
		return Session{}, err
	}

	s := Session{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		RefreshToken: resp.RefreshToken,
	}
	if user, err := json.Marshal(resp.User); err == nil {
		s.User = user
	}
	return s, nil
}

// Logout revokes the session behind token.
func (c *GoTrueClient) Logout(ctx context.Context, token string) error {
	c.identities.Delete(tokenKey(token))
	return call(ctx, func() error {
		return c.anon.WithToken(token).Logout()
	})
}

// sweepExpired drops expired identities at most once per sweepEvery so
// revoked tokens do not sit in memory until evicted by size.
func (c *GoTrueClient) sweepExpired() {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()
	if time.Since(c.lastSweep) < c.sweepEvery {
		return
	}
	c.lastSweep = time.Now()
	c.identities.CleanExpired()
}

// call runs a provider request, giving up when ctx ends first. The request
// itself is bounded by the client's own timeout.
func call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return providerError(err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

var statusPattern = regexp.MustCompile(`(?s)response status code (\d+)(?::\s*(.*))?`)

// providerError turns the client's "response status code N: body" errors
// into a ProviderError. Transport failures are wrapped unchanged.
func providerError(err error) error {
	if err == nil {
		return nil
	}
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return fmt.Errorf("call auth provider: %w", err)
	}
	status, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return fmt.Errorf("call auth provider: %w", err)
	}
	return &ProviderError{Status: status, Message: providerMessage([]byte(m[2]), status)}
}

// providerMessage picks the human readable message out of the provider's
// error envelope, which varies between endpoints.
func providerMessage(data []byte, status int) string {
	var envelope struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		for _, m := range []string{envelope.ErrorDescription, envelope.Msg, envelope.Message, envelope.Error} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}
