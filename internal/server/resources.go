package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basher83/zammad-mcp/internal/api"
	"github.com/basher83/zammad-mcp/internal/models"
	"github.com/basher83/zammad-mcp/internal/output"
	"github.com/basher83/zammad-mcp/internal/presenter"
)

// resourceArticleLimit caps how many articles the ticket resource
// inlines.
const resourceArticleLimit = 20

func (s *Server) registerResources() {
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "zammad://ticket/{id}",
		Name:        "ticket",
		Description: "One ticket with its most recent articles, rendered as markdown",
		MIMEType:    "text/markdown",
	}, s.readTicketResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "zammad://user/{id}",
		Name:        "user",
		Description: "One user profile rendered as markdown",
		MIMEType:    "text/markdown",
	}, s.readUserResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "zammad://organization/{id}",
		Name:        "organization",
		Description: "One organization profile rendered as markdown",
		MIMEType:    "text/markdown",
	}, s.readOrganizationResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "zammad://queue/{group}",
		Name:        "queue",
		Description: "A group's ticket queue grouped by state, rendered as markdown",
		MIMEType:    "text/markdown",
	}, s.readQueueResource)
}

func markdownResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}
}

// resourceTail returns the last path segment of a zammad:// URI.
func resourceTail(uri, prefix string) (string, error) {
	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", output.ErrValidationf("uri", "unsupported resource URI %q", uri)
	}
	return rest, nil
}

func resourceID(uri, prefix string) (int, error) {
	tail, err := resourceTail(uri, prefix)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(tail)
	if err != nil || id <= 0 {
		return 0, output.ErrValidationf("uri", "resource id in %q must be a positive integer", uri)
	}
	return id, nil
}

func (s *Server) readTicketResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, err := resourceID(uri, "zammad://ticket/")
	if err != nil {
		return nil, err
	}
	ticket, err := s.client.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	articles, err := s.client.ListArticles(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(articles) > resourceArticleLimit {
		articles = articles[len(articles)-resourceArticleLimit:]
	}
	ticket.Articles = articles
	text := presenter.Ticket(ticket)
	return markdownResource(uri, s.truncator.Truncate(text)), nil
}

func (s *Server) readUserResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, err := resourceID(uri, "zammad://user/")
	if err != nil {
		return nil, err
	}
	user, err := s.client.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return markdownResource(uri, s.truncator.Truncate(presenter.User(user))), nil
}

func (s *Server) readOrganizationResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, err := resourceID(uri, "zammad://organization/")
	if err != nil {
		return nil, err
	}
	org, err := s.client.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	return markdownResource(uri, s.truncator.Truncate(presenter.Organization(org))), nil
}

func (s *Server) readQueueResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	group, err := resourceTail(uri, "zammad://queue/")
	if err != nil {
		return nil, err
	}
	tickets, err := s.client.SearchTickets(ctx, api.TicketSearch{
		Group:   group,
		Page:    1,
		PerPage: models.MaxPerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("load queue for group %q: %w", group, err)
	}
	return markdownResource(uri, s.truncator.Truncate(presenter.Queue(group, tickets))), nil
}
