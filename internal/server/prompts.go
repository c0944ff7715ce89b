package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basher83/zammad-mcp/internal/output"
	"github.com/basher83/zammad-mcp/internal/presenter"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "analyze_ticket",
		Description: "Analyze a ticket: status, sentiment, open questions and suggested next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "ticket_id", Description: "Internal ticket id", Required: true},
		},
	}, s.analyzeTicketPrompt)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "draft_response",
		Description: "Draft a customer response for a ticket in a given tone",
		Arguments: []*mcp.PromptArgument{
			{Name: "ticket_id", Description: "Internal ticket id", Required: true},
			{Name: "tone", Description: "Desired tone, e.g. formal, friendly, apologetic"},
		},
	}, s.draftResponsePrompt)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "escalation_summary",
		Description: "Summarize escalated tickets, optionally for one group",
		Arguments: []*mcp.PromptArgument{
			{Name: "group", Description: "Restrict the summary to this group"},
		},
	}, s.escalationSummaryPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}
}

func promptTicketID(args map[string]string) (int, error) {
	raw := args["ticket_id"]
	if raw == "" {
		return 0, output.ErrValidation("ticket_id", "is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, output.ErrValidation("ticket_id", "must be a positive integer")
	}
	return id, nil
}

// renderTicketContext fetches the ticket with its articles and renders
// it for embedding in a prompt.
func (s *Server) renderTicketContext(ctx context.Context, id int) (string, error) {
	ticket, err := s.client.GetTicket(ctx, id)
	if err != nil {
		return "", err
	}
	articles, err := s.client.ListArticles(ctx, id)
	if err != nil {
		return "", err
	}
	if len(articles) > resourceArticleLimit {
		articles = articles[len(articles)-resourceArticleLimit:]
	}
	ticket.Articles = articles
	return s.truncator.Truncate(presenter.Ticket(ticket)), nil
}

func (s *Server) analyzeTicketPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id, err := promptTicketID(req.Params.Arguments)
	if err != nil {
		return nil, err
	}
	rendered, err := s.renderTicketContext(ctx, id)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following support ticket.\n\n%s\n\n", rendered)
	b.WriteString("Cover:\n")
	b.WriteString("1. Current status and what the customer is waiting on\n")
	b.WriteString("2. Customer sentiment and urgency\n")
	b.WriteString("3. Unanswered questions in the thread\n")
	b.WriteString("4. Recommended next steps for the agent\n")
	return userPrompt(fmt.Sprintf("Analysis of ticket %d", id), b.String()), nil
}

func (s *Server) draftResponsePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id, err := promptTicketID(req.Params.Arguments)
	if err != nil {
		return nil, err
	}
	tone := req.Params.Arguments["tone"]
	if tone == "" {
		tone = "professional and friendly"
	}
	rendered, err := s.renderTicketContext(ctx, id)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Draft a response to the customer on this ticket.\n\n%s\n\n", rendered)
	fmt.Fprintf(&b, "Write in a %s tone. Address every open question from the customer, ", tone)
	b.WriteString("state clearly what happens next, and do not promise anything the thread does not support.")
	return userPrompt(fmt.Sprintf("Response draft for ticket %d", id), b.String()), nil
}

func (s *Server) escalationSummaryPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	group := req.Params.Arguments["group"]
	scope := "across all groups"
	if group != "" {
		scope = fmt.Sprintf("for the %q group", group)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Produce an escalation summary %s.\n\n", scope)
	b.WriteString("Use zammad_get_ticket_stats for the overall picture")
	if group != "" {
		fmt.Fprintf(&b, " (group=%q)", group)
	}
	b.WriteString(" and zammad_search_tickets to list the affected tickets. For each escalated ticket, ")
	b.WriteString("note how long it has been waiting, who owns it, and the single most useful next action. ")
	b.WriteString("Order the summary by urgency.")
	return userPrompt("Escalation summary", b.String()), nil
}
