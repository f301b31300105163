package authhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// refresh exchanges the client credentials for a new token and stores it on
// the session. On failure the session's token is cleared.
//
// A coalesced exchange is shared by every waiting caller, so it runs detached
// from the cancellation of whichever caller started it. The HTTP client
// timeout still bounds it. A caller whose ctx ends stops waiting.
func (c *Client) refresh(ctx context.Context) error {
	if !c.coalesce {
		return c.exchange(ctx)
	}
	ch := c.group.DoChan("token", func() (any, error) {
		return nil, c.exchange(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight credential refresh")
		}
		return res.Err
	}
}

func (c *Client) exchange(ctx context.Context) error {
	c.session.beginRefresh()

	token, err := c.requestToken(ctx)
	c.observer.ObserveRefresh(err)
	if err != nil {
		c.session.fail()
		return err
	}

	c.session.store(token)
	c.logger.Info("credentials refreshed")
	return nil
}

func (c *Client) requestToken(ctx context.Context) (string, error) {
	payload, err := json.Marshal(tokenRequest{
		GrantType:    "client_credentials",
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", drainError(resp, http.MethodPost, c.tokenURL)
	}
	defer resp.Body.Close()

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", ErrMissingAccessToken
	}
	return out.AccessToken, nil
}
