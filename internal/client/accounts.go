package client

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token and stores it in the session.
// login may be an email or a user name.
func (c *Client) Login(ctx context.Context, login, password string) (*Token, error) {
	var tok Token
	body := map[string]string{"email": login, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/Accounts/login", body, &tok); err != nil {
		return nil, err
	}
	c.session.Set(tok.Token, tok.UserName, tok.Role)
	return &tok, nil
}

// Logout forgets the session token. The server keeps no session state.
func (c *Client) Logout() {
	c.session.Clear()
}

func (c *Client) Register(ctx context.Context, req Register) (*Account, error) {
	var acc Account
	if err := c.call(ctx, http.MethodPost, "/api/Accounts/register", req, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// ForgotPassword asks the server to mail a reset token. It succeeds whether
// or not the address is registered.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/api/Accounts/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPassword) error {
	return c.call(ctx, http.MethodPost, "/api/Accounts/reset-password", req, nil)
}
