package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/basher83/zammad-mcp/internal/models"
	"github.com/basher83/zammad-mcp/internal/output"
)

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id int) (*models.User, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("users/%d?expand=true", id))
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return nil, output.ErrNotFound("user", strconv.Itoa(id))
		}
		return nil, err
	}
	var u models.User
	if err := models.Decode(resp.Data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser fetches the account the credentials belong to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := c.Get(ctx, "users/me?expand=true")
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := models.Decode(resp.Data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SearchUsers runs a free-text user search. No overall total is
// available.
func (c *Client) SearchUsers(ctx context.Context, query string, page, perPage int) ([]models.User, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("expand", "true")

	resp, err := c.Get(ctx, "users/search?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeList[models.User](resp.Data, "user")
}

// GetOrganization fetches one organization by id.
func (c *Client) GetOrganization(ctx context.Context, id int) (*models.Organization, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("organizations/%d?expand=true", id))
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return nil, output.ErrNotFound("organization", strconv.Itoa(id))
		}
		return nil, err
	}
	var o models.Organization
	if err := models.Decode(resp.Data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// SearchOrganizations runs a free-text organization search.
func (c *Client) SearchOrganizations(ctx context.Context, query string, page, perPage int) ([]models.Organization, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("expand", "true")

	resp, err := c.Get(ctx, "organizations/search?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeList[models.Organization](resp.Data, "organization")
}
