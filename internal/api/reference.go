package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/basher83/zammad-mcp/internal/models"
	"github.com/basher83/zammad-mcp/internal/output"
)

// ListGroups fetches all groups.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	resp, err := c.Get(ctx, "groups")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Group](resp.Data, "group")
}

// ListTicketStates fetches all ticket state definitions.
func (c *Client) ListTicketStates(ctx context.Context) ([]models.State, error) {
	resp, err := c.Get(ctx, "ticket_states")
	if err != nil {
		return nil, err
	}
	return decodeList[models.State](resp.Data, "ticket state")
}

// ListTicketPriorities fetches all ticket priority definitions.
func (c *Client) ListTicketPriorities(ctx context.Context) ([]models.Priority, error) {
	resp, err := c.Get(ctx, "ticket_priorities")
	if err != nil {
		return nil, err
	}
	return decodeList[models.Priority](resp.Data, "ticket priority")
}

// ListTags returns a ticket's tags.
func (c *Client) ListTags(ctx context.Context, ticketID int) ([]string, error) {
	q := url.Values{}
	q.Set("object", "Ticket")
	q.Set("o_id", fmt.Sprintf("%d", ticketID))
	resp, err := c.Get(ctx, "tags?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Tags []string `json:"tags"`
	}
	if err := resp.UnmarshalData(&parsed); err != nil {
		return nil, output.ErrAPI(0, "unexpected tag list payload: "+err.Error())
	}
	return parsed.Tags, nil
}

// AddTag attaches a tag to a ticket. Adding an existing tag succeeds.
func (c *Client) AddTag(ctx context.Context, ticketID int, tag string) error {
	return c.tagOp(ctx, "tags/add", ticketID, tag)
}

// RemoveTag detaches a tag from a ticket. Removing a missing tag
// succeeds.
func (c *Client) RemoveTag(ctx context.Context, ticketID int, tag string) error {
	return c.tagOp(ctx, "tags/remove", ticketID, tag)
}

func (c *Client) tagOp(ctx context.Context, path string, ticketID int, tag string) error {
	body := map[string]any{
		"object": "Ticket",
		"o_id":   ticketID,
		"item":   tag,
	}
	_, err := c.Post(ctx, path, body)
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return output.ErrTicketIDGuidance(ticketID)
		}
	}
	return err
}

// decodeList strictly decodes a JSON array of entities.
func decodeList[T any, PT interface {
	*T
	Validate() error
}](data []byte, kind string) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, output.ErrAPI(0, "unexpected "+kind+" list payload: "+err.Error())
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := models.Decode(r, PT(&v)); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
