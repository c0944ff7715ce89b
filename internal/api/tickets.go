package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/basher83/zammad-mcp/internal/models"
	"github.com/basher83/zammad-mcp/internal/output"
)

// TicketSearch carries the ticket search filters. Non-empty filters
// are combined into one Zammad query expression with AND.
type TicketSearch struct {
	Query    string
	State    string
	Priority string
	Group    string
	Owner    string
	Customer string
	Page     int
	PerPage  int
}

func (s TicketSearch) expression() string {
	var parts []string
	if s.Query != "" {
		parts = append(parts, s.Query)
	}
	if s.State != "" {
		parts = append(parts, "state.name:"+quoteTerm(s.State))
	}
	if s.Priority != "" {
		parts = append(parts, "priority.name:"+quoteTerm(s.Priority))
	}
	if s.Group != "" {
		parts = append(parts, "group.name:"+quoteTerm(s.Group))
	}
	if s.Owner != "" {
		parts = append(parts, "owner.login:"+quoteTerm(s.Owner))
	}
	if s.Customer != "" {
		parts = append(parts, "customer.email:"+quoteTerm(s.Customer))
	}
	return strings.Join(parts, " AND ")
}

func quoteTerm(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

// SearchTickets runs a ticket search with expanded reference fields.
// Zammad does not report an overall total for searches.
func (c *Client) SearchTickets(ctx context.Context, search TicketSearch) ([]models.Ticket, error) {
	q := url.Values{}
	q.Set("query", search.expression())
	q.Set("page", strconv.Itoa(search.Page))
	q.Set("per_page", strconv.Itoa(search.PerPage))
	q.Set("expand", "true")

	resp, err := c.Get(ctx, "tickets/search?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeTicketList(resp.Data)
}

// ListTickets fetches one plain page of tickets, used by the stats
// scan and the queue resource.
func (c *Client) ListTickets(ctx context.Context, page, perPage int) ([]models.Ticket, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("expand", "true")

	resp, err := c.Get(ctx, "tickets?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeTicketList(resp.Data)
}

func decodeTicketList(data []byte) ([]models.Ticket, error) {
	return decodeList[models.Ticket](data, "ticket")
}

// GetTicket fetches one ticket by internal id. A 404 carries the
// id-versus-number guidance since that mixup is the most common cause.
func (c *Client) GetTicket(ctx context.Context, id int) (*models.Ticket, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("tickets/%d?expand=true", id))
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return nil, output.ErrTicketIDGuidance(id)
		}
		return nil, err
	}
	var t models.Ticket
	if err := models.Decode(resp.Data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TicketDraft is the creation payload. Group, customer, state and
// priority take names (or a customer email); Zammad resolves them.
type TicketDraft struct {
	Title    string       `json:"title"`
	Group    string       `json:"group"`
	Customer string       `json:"customer"`
	State    string       `json:"state,omitempty"`
	Priority string       `json:"priority,omitempty"`
	Article  ArticleDraft `json:"article"`
}

// ArticleDraft is the payload for a new article.
type ArticleDraft struct {
	Body        string                    `json:"body"`
	Type        string                    `json:"type"`
	Internal    bool                      `json:"internal"`
	Sender      string                    `json:"sender,omitempty"`
	ContentType string                    `json:"content_type,omitempty"`
	Attachments []models.AttachmentUpload `json:"attachments,omitempty"`
}

// CreateTicket creates a ticket together with its first article.
func (c *Client) CreateTicket(ctx context.Context, draft TicketDraft) (*models.Ticket, error) {
	resp, err := c.Post(ctx, "tickets?expand=true", draft)
	if err != nil {
		return nil, err
	}
	var t models.Ticket
	if err := models.Decode(resp.Data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// TicketPatch holds the mutable fields of an update. Empty fields are
// omitted from the request.
type TicketPatch struct {
	Title    string `json:"title,omitempty"`
	State    string `json:"state,omitempty"`
	Priority string `json:"priority,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Group    string `json:"group,omitempty"`
}

// UpdateTicket patches a ticket and returns the updated record.
func (c *Client) UpdateTicket(ctx context.Context, id int, patch TicketPatch) (*models.Ticket, error) {
	resp, err := c.Put(ctx, fmt.Sprintf("tickets/%d?expand=true", id), patch)
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return nil, output.ErrTicketIDGuidance(id)
		}
		return nil, err
	}
	var t models.Ticket
	if err := models.Decode(resp.Data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListArticles fetches all articles of a ticket, oldest first.
func (c *Client) ListArticles(ctx context.Context, ticketID int) ([]models.Article, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("ticket_articles/by_ticket/%d?expand=true", ticketID))
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return nil, output.ErrTicketIDGuidance(ticketID)
		}
		return nil, err
	}
	return decodeList[models.Article](resp.Data, "article")
}

// AddArticle appends an article to an existing ticket.
func (c *Client) AddArticle(ctx context.Context, ticketID int, draft ArticleDraft) (*models.Article, error) {
	body := map[string]any{
		"ticket_id":    ticketID,
		"body":         draft.Body,
		"type":         draft.Type,
		"internal":     draft.Internal,
		"content_type": draft.ContentType,
	}
	if draft.Sender != "" {
		body["sender"] = draft.Sender
	}
	if len(draft.Attachments) > 0 {
		body["attachments"] = draft.Attachments
	}
	resp, err := c.Post(ctx, "ticket_articles", body)
	if err != nil {
		if oe := output.AsError(err); oe.Code == output.CodeNotFound {
			return nil, output.ErrTicketIDGuidance(ticketID)
		}
		return nil, err
	}
	var a models.Article
	if err := models.Decode(resp.Data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
