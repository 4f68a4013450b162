package elnk

import (
	"context"
	"net/http"
	"net/url"
)

// GetDomains lists the custom domains on the account
func (c *Client) GetDomains(ctx context.Context) ([]Domain, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/domains", "/domains", nil, nil)
	if err != nil {
		return nil, err
	}

	var domains []Domain
	if err := decodeData(body, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// GetDomain retrieves a single domain
func (c *Client) GetDomain(ctx context.Context, domainID ID) (*Domain, error) {
	if domainID == "" {
		return nil, invalidArgument("domain ID is required")
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/domains/:id", "/domains/"+url.PathEscape(domainID.String()), nil, nil)
	if err != nil {
		return nil, err
	}

	var domain Domain
	if err := decodeData(body, &domain); err != nil {
		return nil, err
	}
	return &domain, nil
}

// GetUser retrieves the account that owns the API key
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/user", "/user", nil, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeData(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TestConnection verifies the API key by fetching the current user
func (c *Client) TestConnection(ctx context.Context) (*User, error) {
	user, err := c.GetUser(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("email", user.Email).Msg("Successfully connected to elnk")
	return user, nil
}
