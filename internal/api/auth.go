// ABOUTME: Auth operations against the sweet shop service.
// ABOUTME: Register creates an account; Login exchanges credentials for a token.

package api

import (
	"context"
	"fmt"
	"net/http"
)

// Register creates a new account. New accounts are customers; admin accounts
// are provisioned out of band.
func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, credentials{
		Username: username,
		Password: password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token. The client does not install
// the token itself; hand it to the session store to make it the active
// credential.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("login response missing access token")
	}
	return resp.AccessToken, nil
}
