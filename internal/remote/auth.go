package remote

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Session struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        model.User `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "sign up", "/auth/v1/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "sign in", "/auth/v1/token", email, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation(op, "invalid_credentials", "email and password are required")
	}

	var session Session
	if err := c.do(ctx, op, http.MethodPost, path, nil, credentials{Email: email, Password: password}, &session, false); err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)

	c.mu.Lock()
	user := session.User
	c.user = &user
	c.mu.Unlock()
	return &session, nil
}

func (c *Client) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.user = nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// UserID returns the subject of the current access token. The signature is
// not checked here; the server verifies it on every request.
func (c *Client) UserID() (string, error) {
	token := c.accessToken()
	if token == "" {
		return "", apperrors.ErrNotAuthenticated
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		notAuth := apperrors.NotAuthenticated("resolve user")
		notAuth.Err = err
		return "", notAuth
	}
	if claims.Subject == "" {
		return "", apperrors.NotAuthenticated("resolve user")
	}
	return claims.Subject, nil
}

func (c *Client) User() (model.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return model.User{}, false
	}
	return *c.user, true
}

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.do(ctx, "get user", http.MethodGet, "/auth/v1/user", nil, nil, &user, true); err != nil {
		return model.User{}, err
	}

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()
	return user, nil
}
