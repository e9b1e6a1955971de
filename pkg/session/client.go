package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Navigator is the navigation pipeline the client hands control to after
// login/logout.
type Navigator interface {
	NavigateTo(path string)
}

// Notifier surfaces transient, non-blocking notifications to the user.
type Notifier interface {
	Notify(message string)
}

// Client talks to the remote authentication endpoints and keeps the local
// Store in sync with the outcome.
type Client struct {
	http    *http.Client
	baseURL string
	store   *Store
	nav     Navigator
	notify  Notifier
	log     zerolog.Logger
}

func NewClient(baseURL string, store *Store, nav Navigator, notify Notifier, log zerolog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		store:   store,
		nav:     nav,
		notify:  notify,
		log:     log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		User        *Identity `json:"user"`
		AccessToken string    `json:"accessToken"`
	} `json:"data"`
}

// Login authenticates against the remote endpoint. On success the store is
// set and the client navigates home; on any failure a transient notification
// is surfaced and local state is left unchanged.
func (c *Client) Login(ctx context.Context, email, pass string) error {
	body, err := json.Marshal(loginRequest{Email: email, Password: pass})
	if err != nil {
		return fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("login request failed")
		c.notify.Notify("Unable to reach the server. Please try again.")
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var out loginResponse
	if decErr := json.NewDecoder(resp.Body).Decode(&out); decErr != nil {
		c.notify.Notify("Login failed. Please try again.")
		return fmt.Errorf("decode login response: %w", decErr)
	}

	if resp.StatusCode != http.StatusOK || !out.Success || out.Data.User == nil {
		msg := out.Message
		if msg == "" {
			msg = "Login failed. Please check your credentials."
		}
		c.notify.Notify(msg)
		return fmt.Errorf("login rejected: %s", msg)
	}

	c.store.SetUser(out.Data.User)
	c.nav.NavigateTo("/")
	return nil
}

// Logout is fail-safe: the remote call may error, but local sign-out always
// completes. The store is cleared and the client lands on /login.
func (c *Client) Logout(ctx context.Context) {
	defer func() {
		c.store.SetUser(nil)
		c.nav.NavigateTo("/login")
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err != nil {
		c.log.Warn().Err(err).Msg("build logout request")
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("logout request failed")
		c.notify.Notify("Signed out locally; the server could not be reached.")
		return
	}
	resp.Body.Close()
}
