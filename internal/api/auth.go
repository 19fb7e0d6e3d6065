package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// AuthResponse is the shape shared by the login, register and refresh
// endpoints. Some server builds answer with "token"/"refresh" instead of
// "access_token"/"refresh_token"; decoding accepts both.
type AuthResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	EmailSent    bool   `json:"email_sent"`
	Message      string `json:"message"`
	Error        string `json:"error"`

	// Legacy field names.
	AltToken   string `json:"token"`
	AltRefresh string `json:"refresh"`
}

// Tokens returns the access and refresh tokens, whichever field names the
// server used.
func (r *AuthResponse) Tokens() (access, refresh string) {
	access = r.AccessToken
	if access == "" {
		access = r.AltToken
	}
	refresh = r.RefreshToken
	if refresh == "" {
		refresh = r.AltRefresh
	}
	return access, refresh
}

// Login authenticates with username/password and returns the token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	payload := map[string]string{"username": username, "password": password}
	raw, err := c.do(ctx, "login", http.MethodPost, "/auth/login", payload, false)
	if err != nil {
		return decodeAuthFailure(raw, err)
	}
	return decodeAuth("login", raw)
}

// Register creates a new account. The response may carry an email_sent flag
// when the server requires address verification.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	payload := map[string]string{"username": username, "email": email, "password": password}
	raw, err := c.do(ctx, "register", http.MethodPost, "/auth/register", payload, false)
	if err != nil {
		return decodeAuthFailure(raw, err)
	}
	return decodeAuth("register", raw)
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	raw, err := c.do(ctx, "refresh", http.MethodPost, "/auth/refresh", payload, false)
	if err != nil {
		return decodeAuthFailure(raw, err)
	}
	return decodeAuth("refresh", raw)
}

// RequestPasswordReset asks the server to email a reset token. The returned
// string is the server's message, when it sent one.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	payload := map[string]string{"email": email}
	raw, err := c.do(ctx, "request-password-reset", http.MethodPost, "/auth/request-password-reset", payload, false)
	if err != nil {
		return serverMessage(raw), err
	}
	return serverMessage(raw), nil
}

// ResetPassword completes a password reset using an emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	payload := map[string]string{"token": token, "new_password": newPassword}
	raw, err := c.do(ctx, "reset-password", http.MethodPost, "/auth/reset-password", payload, false)
	if err != nil {
		return serverMessage(raw), err
	}
	return serverMessage(raw), nil
}

func decodeAuth(op string, raw []byte) (*AuthResponse, error) {
	var resp AuthResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Last resort: scavenge the token fields out of the body before
		// reporting a parse failure.
		if access := extractField(raw, "access_token"); access != "" {
			slog.Warn("auth response parse failed, recovered tokens by scanning", "op", op)
			return &AuthResponse{
				AccessToken:  access,
				RefreshToken: extractField(raw, "refresh_token"),
			}, nil
		}
		return nil, &Error{Kind: KindParse, Op: op, Err: fmt.Errorf("decoding auth response: %w", err)}
	}
	return &resp, nil
}

// decodeAuthFailure keeps the server's message/error text available to the
// UI even when the request itself failed.
func decodeAuthFailure(raw []byte, err error) (*AuthResponse, error) {
	var resp AuthResponse
	if len(raw) > 0 {
		if jsonErr := json.Unmarshal(raw, &resp); jsonErr != nil {
			resp.Error = strings.TrimSpace(string(raw))
		}
	}
	return &resp, err
}

func serverMessage(raw []byte) string {
	var resp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ""
	}
	if resp.Message != "" {
		return resp.Message
	}
	return resp.Error
}

// extractField pulls a quoted JSON string value for key out of raw without a
// full parse. Only used once decoding has already failed.
func extractField(raw []byte, key string) string {
	s := string(raw)
	marker := `"` + key + `"`
	i := strings.Index(s, marker)
	if i < 0 {
		return ""
	}
	rest := s[i+len(marker):]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return ""
	}
	rest = strings.TrimSpace(rest[colon+1:])
	if len(rest) == 0 || rest[0] != '"' {
		return ""
	}
	rest = rest[1:]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
