// Package server exposes the Zammad API over the Model Context
// Protocol: tools for ticket, user and organization operations,
// resources for direct record access, and prompts for common support
// workflows.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basher83/zammad-mcp/internal/api"
	"github.com/basher83/zammad-mcp/internal/config"
	"github.com/basher83/zammad-mcp/internal/models"
	"github.com/basher83/zammad-mcp/internal/truncate"
	"github.com/basher83/zammad-mcp/internal/version"
)

const serverName = "Zammad MCP Server"

const instructions = `This server connects to a Zammad helpdesk instance.

Key facts:
- Tickets have two identifiers: the internal database 'id' and the
  customer-facing 'number'. Tools take the internal id. Find it with
  zammad_search_tickets before calling zammad_get_ticket.
- List responses are paginated; check 'has_more' and 'next_page'.
- Large responses are truncated; '_meta.truncated' tells you when.
  Narrow the query or page through results instead of raising limits.
- zammad_get_ticket_stats scans every ticket and can be slow on large
  instances; prefer filtered searches when you only need a subset.`

// zammadAPI is the client surface the handlers use. The concrete
// implementation is api.Client; tests substitute a stub.
type zammadAPI interface {
	SearchTickets(ctx context.Context, search api.TicketSearch) ([]models.Ticket, error)
	ListTickets(ctx context.Context, page, perPage int) ([]models.Ticket, error)
	GetTicket(ctx context.Context, id int) (*models.Ticket, error)
	CreateTicket(ctx context.Context, draft api.TicketDraft) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, id int, patch api.TicketPatch) (*models.Ticket, error)
	ListArticles(ctx context.Context, ticketID int) ([]models.Article, error)
	AddArticle(ctx context.Context, ticketID int, draft api.ArticleDraft) (*models.Article, error)
	ListTags(ctx context.Context, ticketID int) ([]string, error)
	AddTag(ctx context.Context, ticketID int, tag string) error
	RemoveTag(ctx context.Context, ticketID int, tag string) error
	GetUser(ctx context.Context, id int) (*models.User, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	SearchUsers(ctx context.Context, query string, page, perPage int) ([]models.User, error)
	GetOrganization(ctx context.Context, id int) (*models.Organization, error)
	SearchOrganizations(ctx context.Context, query string, page, perPage int) ([]models.Organization, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	ListTicketStates(ctx context.Context) ([]models.State, error)
	ListTicketPriorities(ctx context.Context) ([]models.Priority, error)
	ListAttachments(ctx context.Context, ticketID, articleID int) ([]models.Attachment, error)
	DownloadAttachment(ctx context.Context, ticketID, articleID, attachmentID, maxBytes int) ([]byte, error)
	DeleteAttachment(ctx context.Context, ticketID, articleID, attachmentID int) error
}

// Server wires the Zammad client into an MCP server.
type Server struct {
	cfg       *config.Config
	client    zammadAPI
	truncator *truncate.Truncator
	cache     *refCache
	mcp       *mcp.Server
}

// New builds the server with all tools, resources and prompts
// registered.
func New(cfg *config.Config, client zammadAPI) *Server {
	s := &Server{
		cfg:       cfg,
		client:    client,
		truncator: truncate.New(cfg.CharacterLimit),
		cache:     newRefCache(client),
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: version.Version},
		&mcp.ServerOptions{Instructions: instructions},
	)
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// Run serves MCP over the configured transport and blocks until the
// context is cancelled or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportHTTP:
		return s.runHTTP(ctx)
	default:
		slog.Info("serving MCP over stdio")
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	}
}

func (s *Server) runHTTP(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)

	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	slog.Info("serving MCP over HTTP", "addr", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
