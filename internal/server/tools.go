package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basher83/zammad-mcp/internal/api"
	"github.com/basher83/zammad-mcp/internal/models"
	"github.com/basher83/zammad-mcp/internal/output"
	"github.com/basher83/zammad-mcp/internal/pagination"
	"github.com/basher83/zammad-mcp/internal/presenter"
)

func boolPtr(b bool) *bool { return &b }

func textResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: s}},
	}
}

// failResult renders a typed error as a tool error so the caller sees
// the taxonomy code and hint instead of a bare message.
func failResult(err error) (*mcp.CallToolResult, any, error) {
	oe := output.AsError(err)
	msg := fmt.Sprintf("[%s] %s", oe.Code, oe.Message)
	if oe.Hint != "" {
		msg += "\nHint: " + oe.Hint
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}, nil, nil
}

// respond serializes a structured payload, applies the size cap and
// wraps it as a text result.
func (s *Server) respond(v any) (*mcp.CallToolResult, any, error) {
	text, err := presenter.JSON(v)
	if err != nil {
		return failResult(err)
	}
	return textResult(s.truncator.Truncate(text)), nil, nil
}

// respondText applies the size cap to an already-rendered string.
func (s *Server) respondText(text string) (*mcp.CallToolResult, any, error) {
	return textResult(s.truncator.Truncate(text)), nil, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "zammad_search_tickets",
		Description: "Search tickets with optional filters (query, state, priority, group, owner, customer). " +
			"Paginated; results carry the internal ticket id in 'id'.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Search Tickets",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleSearchTickets)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "zammad_get_ticket",
		Description: "Fetch one ticket by its internal id (not the ticket number). " +
			"Includes articles unless disabled; article_limit -1 returns all.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Ticket",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleGetTicket)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_create_ticket",
		Description: "Create a ticket with its first article. Group and customer take names or an email.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Create Ticket",
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, s.handleCreateTicket)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_update_ticket",
		Description: "Update ticket fields (title, state, priority, owner, group) by internal id.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Update Ticket",
			DestructiveHint: boolPtr(false),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(true),
		},
	}, s.handleUpdateTicket)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_add_article",
		Description: "Add an article (note or reply) to a ticket, optionally with base64 attachments.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Add Article",
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, s.handleAddArticle)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_get_article_attachments",
		Description: "List attachment metadata for one article.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Article Attachments",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleListAttachments)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "zammad_download_attachment",
		Description: "Download one attachment as base64. Refuses files larger than max_bytes " +
			"(default 10 MB).",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Download Attachment",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleDownloadAttachment)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_delete_attachment",
		Description: "Permanently delete one attachment from an article.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Delete Attachment",
			DestructiveHint: boolPtr(true),
			OpenWorldHint:   boolPtr(true),
		},
	}, s.handleDeleteAttachment)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_add_ticket_tag",
		Description: "Add a tag to a ticket. Adding an existing tag succeeds.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Add Ticket Tag",
			DestructiveHint: boolPtr(false),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(true),
		},
	}, s.handleAddTag)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_remove_ticket_tag",
		Description: "Remove a tag from a ticket. Removing a missing tag succeeds.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Remove Ticket Tag",
			DestructiveHint: boolPtr(false),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(true),
		},
	}, s.handleRemoveTag)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_get_user",
		Description: "Fetch one user by id.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get User",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleGetUser)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_search_users",
		Description: "Search users by name, login or email. Paginated.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Search Users",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleSearchUsers)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_get_current_user",
		Description: "Fetch the user account the configured credentials belong to.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Current User",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleCurrentUser)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_get_organization",
		Description: "Fetch one organization by id.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Organization",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleGetOrganization)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_search_organizations",
		Description: "Search organizations by name or domain. Paginated.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Search Organizations",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleSearchOrganizations)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "zammad_get_ticket_stats",
		Description: "Aggregate ticket counts (open/closed/pending/escalated) by scanning all " +
			"tickets. Slow on large instances.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "Get Ticket Stats",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleTicketStats)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_list_groups",
		Description: "List all groups. Cached until zammad_clear_caches.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Groups",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleListGroups)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_list_ticket_states",
		Description: "List all ticket states. Cached until zammad_clear_caches.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Ticket States",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleListStates)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_list_ticket_priorities",
		Description: "List all ticket priorities. Cached until zammad_clear_caches.",
		Annotations: &mcp.ToolAnnotations{
			Title:         "List Ticket Priorities",
			ReadOnlyHint:  true,
			OpenWorldHint: boolPtr(true),
		},
	}, s.handleListPriorities)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "zammad_clear_caches",
		Description: "Drop the cached reference lists so the next access refetches.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Clear Caches",
			DestructiveHint: boolPtr(false),
			IdempotentHint:  true,
			OpenWorldHint:   boolPtr(false),
		},
	}, s.handleClearCaches)
}

func (s *Server) handleSearchTickets(ctx context.Context, _ *mcp.CallToolRequest, in models.SearchTicketsParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	tickets, err := s.client.SearchTickets(ctx, api.TicketSearch{
		Query:    in.Query,
		State:    in.State,
		Priority: in.Priority,
		Group:    in.Group,
		Owner:    in.Owner,
		Customer: in.Customer,
		Page:     in.Page,
		PerPage:  in.PerPage,
	})
	if err != nil {
		return failResult(err)
	}
	if in.ResponseFormat == models.FormatMarkdown {
		return s.respondText(presenter.TicketList(tickets))
	}
	items, err := presenter.StructuredSlice(tickets)
	if err != nil {
		return failResult(err)
	}
	return s.respond(pagination.Paginate(items, in.Page, in.PerPage, nil).AsMap())
}

func (s *Server) handleGetTicket(ctx context.Context, _ *mcp.CallToolRequest, in models.GetTicketParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	ticket, err := s.client.GetTicket(ctx, in.TicketID)
	if err != nil {
		return failResult(err)
	}
	if in.IncludeArticles {
		articles, err := s.client.ListArticles(ctx, in.TicketID)
		if err != nil {
			return failResult(err)
		}
		ticket.Articles = windowArticles(articles, in.ArticleOffset, in.ArticleLimit)
		total := len(articles)
		ticket.ArticleCount = &total
	}
	m, err := presenter.Structured(ticket)
	if err != nil {
		return failResult(err)
	}
	if tags, err := s.client.ListTags(ctx, in.TicketID); err == nil {
		m["tags"] = tags
	} else {
		slog.Debug("tag lookup failed, omitting tags", "ticket_id", in.TicketID, "error", err)
	}
	return s.respond(m)
}

// windowArticles slices the article list by offset and limit; a
// negative limit means all remaining articles.
func windowArticles(articles []models.Article, offset, limit int) []models.Article {
	if offset >= len(articles) {
		return []models.Article{}
	}
	rest := articles[offset:]
	if limit < 0 || limit >= len(rest) {
		return rest
	}
	return rest[:limit]
}

func (s *Server) handleCreateTicket(ctx context.Context, _ *mcp.CallToolRequest, in models.CreateTicketParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	if err := models.ValidateAttachments(in.Attachments); err != nil {
		return failResult(err)
	}
	ticket, err := s.client.CreateTicket(ctx, api.TicketDraft{
		Title:    models.EscapeText(in.Title),
		Group:    in.Group,
		Customer: in.Customer,
		State:    in.State,
		Priority: in.Priority,
		Article: api.ArticleDraft{
			Body:        models.EscapeText(in.ArticleBody),
			Type:        in.ArticleType,
			Internal:    in.ArticleInternal,
			Attachments: in.Attachments,
		},
	})
	if err != nil {
		return failResult(err)
	}
	m, err := presenter.Structured(ticket)
	if err != nil {
		return failResult(err)
	}
	return s.respond(m)
}

func (s *Server) handleUpdateTicket(ctx context.Context, _ *mcp.CallToolRequest, in models.UpdateTicketParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	patch := api.TicketPatch{
		State:    in.State,
		Priority: in.Priority,
		Owner:    in.Owner,
		Group:    in.Group,
	}
	if in.Title != "" {
		patch.Title = models.EscapeText(in.Title)
	}
	ticket, err := s.client.UpdateTicket(ctx, in.TicketID, patch)
	if err != nil {
		return failResult(err)
	}
	m, err := presenter.Structured(ticket)
	if err != nil {
		return failResult(err)
	}
	return s.respond(m)
}

func (s *Server) handleAddArticle(ctx context.Context, _ *mcp.CallToolRequest, in models.AddArticleParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	if err := models.ValidateAttachments(in.Attachments); err != nil {
		return failResult(err)
	}
	article, err := s.client.AddArticle(ctx, in.TicketID, api.ArticleDraft{
		Body:        models.EscapeText(in.Body),
		Type:        in.Type,
		Internal:    *in.Internal,
		Sender:      in.Sender,
		Attachments: in.Attachments,
	})
	if err != nil {
		return failResult(err)
	}
	m, err := presenter.Structured(article)
	if err != nil {
		return failResult(err)
	}
	return s.respond(m)
}

func (s *Server) handleListAttachments(ctx context.Context, _ *mcp.CallToolRequest, in models.ListAttachmentsParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	attachments, err := s.client.ListAttachments(ctx, in.TicketID, in.ArticleID)
	if err != nil {
		return failResult(err)
	}
	items, err := presenter.StructuredSlice(attachments)
	if err != nil {
		return failResult(err)
	}
	return s.respond(pagination.Closed(items).AsMap())
}

func (s *Server) handleDownloadAttachment(ctx context.Context, _ *mcp.CallToolRequest, in models.AttachmentParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	data, err := s.client.DownloadAttachment(ctx, in.TicketID, in.ArticleID, in.AttachmentID, in.MaxBytes)
	if err != nil {
		return failResult(err)
	}
	return s.respond(map[string]any{
		"attachment_id": in.AttachmentID,
		"size":          len(data),
		"data":          base64.StdEncoding.EncodeToString(data),
	})
}

func (s *Server) handleDeleteAttachment(ctx context.Context, _ *mcp.CallToolRequest, in models.AttachmentParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	if err := s.client.DeleteAttachment(ctx, in.TicketID, in.ArticleID, in.AttachmentID); err != nil {
		return failResult(err)
	}
	return s.respond(map[string]any{
		"success":       true,
		"attachment_id": in.AttachmentID,
		"action":        "delete",
	})
}

func (s *Server) handleAddTag(ctx context.Context, _ *mcp.CallToolRequest, in models.TagParams) (*mcp.CallToolResult, any, error) {
	return s.tagTool(ctx, in, "add", s.client.AddTag)
}

func (s *Server) handleRemoveTag(ctx context.Context, _ *mcp.CallToolRequest, in models.TagParams) (*mcp.CallToolResult, any, error) {
	return s.tagTool(ctx, in, "remove", s.client.RemoveTag)
}

func (s *Server) tagTool(ctx context.Context, in models.TagParams, action string, op func(context.Context, int, string) error) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	if err := op(ctx, in.TicketID, in.Tag); err != nil {
		return failResult(err)
	}
	return s.respond(models.TagResult{
		Success:  true,
		TicketID: in.TicketID,
		Tag:      in.Tag,
		Action:   action,
	})
}

func (s *Server) handleGetUser(ctx context.Context, _ *mcp.CallToolRequest, in models.GetUserParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	user, err := s.client.GetUser(ctx, in.UserID)
	if err != nil {
		return failResult(err)
	}
	m, err := presenter.Structured(user)
	if err != nil {
		return failResult(err)
	}
	return s.respond(m)
}

func (s *Server) handleSearchUsers(ctx context.Context, _ *mcp.CallToolRequest, in models.SearchUsersParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	users, err := s.client.SearchUsers(ctx, in.Query, in.Page, in.PerPage)
	if err != nil {
		return failResult(err)
	}
	if in.ResponseFormat == models.FormatMarkdown {
		return s.respondText(presenter.UserList(users, in.Query))
	}
	items, err := presenter.StructuredSlice(users)
	if err != nil {
		return failResult(err)
	}
	return s.respond(pagination.Paginate(items, in.Page, in.PerPage, nil).AsMap())
}

func (s *Server) handleCurrentUser(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return failResult(err)
	}
	m, err := presenter.Structured(user)
	if err != nil {
		return failResult(err)
	}
	return s.respond(m)
}

func (s *Server) handleGetOrganization(ctx context.Context, _ *mcp.CallToolRequest, in models.GetOrganizationParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	org, err := s.client.GetOrganization(ctx, in.OrganizationID)
	if err != nil {
		return failResult(err)
	}
	m, err := presenter.Structured(org)
	if err != nil {
		return failResult(err)
	}
	return s.respond(m)
}

func (s *Server) handleSearchOrganizations(ctx context.Context, _ *mcp.CallToolRequest, in models.SearchOrganizationsParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	orgs, err := s.client.SearchOrganizations(ctx, in.Query, in.Page, in.PerPage)
	if err != nil {
		return failResult(err)
	}
	if in.ResponseFormat == models.FormatMarkdown {
		return s.respondText(presenter.OrganizationList(orgs, in.Query))
	}
	items, err := presenter.StructuredSlice(orgs)
	if err != nil {
		return failResult(err)
	}
	return s.respond(pagination.Paginate(items, in.Page, in.PerPage, nil).AsMap())
}

func (s *Server) handleTicketStats(ctx context.Context, _ *mcp.CallToolRequest, in models.TicketStatsParams) (*mcp.CallToolResult, any, error) {
	stats, err := s.ticketStats(ctx, in)
	if err != nil {
		return failResult(err)
	}
	return s.respond(stats)
}

func (s *Server) handleListGroups(ctx context.Context, _ *mcp.CallToolRequest, in models.ListParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	groups, err := s.cache.Groups(ctx)
	if err != nil {
		return failResult(err)
	}
	sorted := make([]models.Group, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	if in.ResponseFormat == models.FormatMarkdown {
		refs := make([]presenter.ReferenceItem, len(sorted))
		for i, g := range sorted {
			refs[i] = presenter.ReferenceItem{ID: g.ID, Name: g.Name}
		}
		return s.respondText(presenter.ReferenceList("Group", refs))
	}
	items, err := presenter.StructuredSlice(sorted)
	if err != nil {
		return failResult(err)
	}
	return s.respond(pagination.Closed(items).AsMap())
}

func (s *Server) handleListStates(ctx context.Context, _ *mcp.CallToolRequest, in models.ListParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	states, err := s.cache.States(ctx)
	if err != nil {
		return failResult(err)
	}
	sorted := make([]models.State, len(states))
	copy(sorted, states)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	if in.ResponseFormat == models.FormatMarkdown {
		refs := make([]presenter.ReferenceItem, len(sorted))
		for i, st := range sorted {
			refs[i] = presenter.ReferenceItem{ID: st.ID, Name: st.Name}
		}
		return s.respondText(presenter.ReferenceList("Ticket State", refs))
	}
	items, err := presenter.StructuredSlice(sorted)
	if err != nil {
		return failResult(err)
	}
	return s.respond(pagination.Closed(items).AsMap())
}

func (s *Server) handleListPriorities(ctx context.Context, _ *mcp.CallToolRequest, in models.ListParams) (*mcp.CallToolResult, any, error) {
	if err := models.CheckParams(&in); err != nil {
		return failResult(err)
	}
	priorities, err := s.cache.Priorities(ctx)
	if err != nil {
		return failResult(err)
	}
	sorted := make([]models.Priority, len(priorities))
	copy(sorted, priorities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	if in.ResponseFormat == models.FormatMarkdown {
		refs := make([]presenter.ReferenceItem, len(sorted))
		for i, p := range sorted {
			refs[i] = presenter.ReferenceItem{ID: p.ID, Name: p.Name}
		}
		return s.respondText(presenter.ReferenceList("Ticket Priority", refs))
	}
	items, err := presenter.StructuredSlice(sorted)
	if err != nil {
		return failResult(err)
	}
	return s.respond(pagination.Closed(items).AsMap())
}

func (s *Server) handleClearCaches(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	s.cache.Clear()
	return s.respond(map[string]any{"success": true, "cleared": []string{"groups", "ticket_states", "ticket_priorities"}})
}
