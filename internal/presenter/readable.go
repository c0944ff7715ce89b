// Package presenter renders API entities in the two response modes:
// readable markdown for humans and structured JSON for programmatic
// consumers.
package presenter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/basher83/zammad-mcp/internal/models"
)

// ArticleExcerptLimit caps how much of an article body the readable
// mode shows before marking it truncated.
const ArticleExcerptLimit = 500

// QueueTitleLimit caps ticket titles in queue summaries.
const QueueTitleLimit = 50

// QueueTicketsPerState caps how many tickets a queue summary lists for
// each state.
const QueueTicketsPerState = 10

func stamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func optStamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return stamp(*t)
}

// Excerpt shortens a body to the excerpt limit, appending a literal
// marker when anything was cut. Limits count characters, not bytes.
func Excerpt(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "... (truncated)"
}

func ellipsize(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Ticket renders one ticket as markdown. The header carries both the
// customer-facing number and the internal id so callers can tell the
// two apart.
func Ticket(t *models.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Ticket #%s (ID: %d): %s\n\n", t.Number, t.ID, t.Title)
	fmt.Fprintf(&b, "**State**: %s\n", t.State.DisplayName())
	fmt.Fprintf(&b, "**Priority**: %s\n", t.Priority.DisplayName())
	fmt.Fprintf(&b, "**Group**: %s\n", t.Group.DisplayName())
	fmt.Fprintf(&b, "**Owner**: %s\n", t.Owner.DisplayName())
	fmt.Fprintf(&b, "**Customer**: %s\n", t.Customer.EmailAddress())
	if !t.Organization.IsAbsent() {
		fmt.Fprintf(&b, "**Organization**: %s\n", t.Organization.DisplayName())
	}
	fmt.Fprintf(&b, "**Created**: %s\n", stamp(t.CreatedAt))
	fmt.Fprintf(&b, "**Updated**: %s\n", stamp(t.UpdatedAt))
	if t.ArticleCount != nil {
		fmt.Fprintf(&b, "**Articles**: %d\n", *t.ArticleCount)
	}
	if len(t.Articles) > 0 {
		fmt.Fprintf(&b, "\n## Articles (%d)\n", len(t.Articles))
		for i := range t.Articles {
			b.WriteString("\n")
			b.WriteString(Article(&t.Articles[i]))
		}
	}
	return b.String()
}

// Article renders one article block with the body capped at the
// excerpt limit.
func Article(a *models.Article) string {
	var b strings.Builder
	from := "-"
	if a.From != nil && *a.From != "" {
		from = *a.From
	}
	fmt.Fprintf(&b, "### %s from %s (%s)\n", a.Sender.DisplayName(), from, stamp(a.CreatedAt))
	if a.Internal {
		b.WriteString("*Internal note*\n")
	}
	b.WriteString("\n")
	b.WriteString(Excerpt(a.Body, ArticleExcerptLimit))
	b.WriteString("\n")
	return b.String()
}

// TicketList renders a search result page: a count header followed by
// a compact block per ticket.
func TicketList(tickets []models.Ticket) string {
	if len(tickets) == 0 {
		return "No tickets found.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Found %d tickets\n", len(tickets))
	for i := range tickets {
		t := &tickets[i]
		fmt.Fprintf(&b, "\n**#%s (ID: %d)**: %s\n", t.Number, t.ID, t.Title)
		fmt.Fprintf(&b, "- State: %s | Priority: %s | Group: %s\n",
			t.State.DisplayName(), t.Priority.DisplayName(), t.Group.DisplayName())
		fmt.Fprintf(&b, "- Customer: %s | Updated: %s\n",
			t.Customer.EmailAddress(), stamp(t.UpdatedAt))
	}
	return b.String()
}

// UserList renders a user search page: query header, count, then a
// short block per user.
func UserList(users []models.User, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# User Search Results: %s\n\n", query)
	fmt.Fprintf(&b, "Found %d user(s)\n", len(users))
	for i := range users {
		u := &users[i]
		email := "N/A"
		if u.Email != nil && *u.Email != "" {
			email = *u.Email
		}
		fmt.Fprintf(&b, "\n## %s\n", u.FullName())
		fmt.Fprintf(&b, "- **ID**: %d\n", u.ID)
		fmt.Fprintf(&b, "- **Email**: %s\n", email)
		fmt.Fprintf(&b, "- **Login**: %s\n", u.Login)
		fmt.Fprintf(&b, "- **Active**: %t\n", u.Active)
	}
	return b.String()
}

// OrganizationList renders an organization search page.
func OrganizationList(orgs []models.Organization, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Organization Search Results: %s\n\n", query)
	fmt.Fprintf(&b, "Found %d organization(s)\n", len(orgs))
	for i := range orgs {
		o := &orgs[i]
		fmt.Fprintf(&b, "\n## %s\n", o.Name)
		fmt.Fprintf(&b, "- **ID**: %d\n", o.ID)
		fmt.Fprintf(&b, "- **Active**: %t\n", o.Active)
	}
	return b.String()
}

// ReferenceItem is one entry in a cached reference list.
type ReferenceItem struct {
	ID   int
	Name string
}

// ReferenceList renders a complete reference list such as groups or
// states, sorted by id for stable ordering.
func ReferenceList(kind string, items []ReferenceItem) string {
	sorted := make([]ReferenceItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var b strings.Builder
	fmt.Fprintf(&b, "# %s List\n\n", kind)
	fmt.Fprintf(&b, "Found %d %s(s)\n\n", len(sorted), strings.ToLower(kind))
	for _, it := range sorted {
		fmt.Fprintf(&b, "- **%s** (ID: %d)\n", it.Name, it.ID)
	}
	return b.String()
}

// User renders one user profile.
func User(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# User: %s (ID: %d)\n\n", u.FullName(), u.ID)
	fmt.Fprintf(&b, "**Login**: %s\n", u.Login)
	if u.Email != nil && *u.Email != "" {
		fmt.Fprintf(&b, "**Email**: %s\n", *u.Email)
	}
	if u.Phone != nil && *u.Phone != "" {
		fmt.Fprintf(&b, "**Phone**: %s\n", *u.Phone)
	}
	if u.Department != nil && *u.Department != "" {
		fmt.Fprintf(&b, "**Department**: %s\n", *u.Department)
	}
	if !u.Organization.IsAbsent() {
		fmt.Fprintf(&b, "**Organization**: %s\n", u.Organization.DisplayName())
	}
	fmt.Fprintf(&b, "**Active**: %t\n", u.Active)
	if u.Vip {
		b.WriteString("**VIP**: yes\n")
	}
	fmt.Fprintf(&b, "**Last login**: %s\n", optStamp(u.LastLogin))
	fmt.Fprintf(&b, "**Created**: %s\n", stamp(u.CreatedAt))
	return b.String()
}

// Organization renders one organization profile.
func Organization(o *models.Organization) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Organization: %s (ID: %d)\n\n", o.Name, o.ID)
	if o.Domain != nil && *o.Domain != "" {
		fmt.Fprintf(&b, "**Domain**: %s\n", *o.Domain)
	}
	fmt.Fprintf(&b, "**Shared**: %t\n", o.Shared)
	fmt.Fprintf(&b, "**Active**: %t\n", o.Active)
	if o.Vip {
		b.WriteString("**VIP**: yes\n")
	}
	fmt.Fprintf(&b, "**Members**: %d\n", len(o.MemberIDs))
	if o.Note != nil && *o.Note != "" {
		fmt.Fprintf(&b, "**Note**: %s\n", *o.Note)
	}
	fmt.Fprintf(&b, "**Created**: %s\n", stamp(o.CreatedAt))
	return b.String()
}

// Queue renders a group's open workload grouped by state name. Each
// state shows at most QueueTicketsPerState tickets with ellipsized
// titles.
func Queue(group string, tickets []models.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Queue: %s\n\n", group)
	fmt.Fprintf(&b, "**Total tickets**: %d\n", len(tickets))
	if len(tickets) == 0 {
		return b.String()
	}

	byState := map[string][]models.Ticket{}
	var order []string
	for _, t := range tickets {
		name := t.State.DisplayName()
		if _, seen := byState[name]; !seen {
			order = append(order, name)
		}
		byState[name] = append(byState[name], t)
	}
	sort.Strings(order)

	for _, state := range order {
		bucket := byState[state]
		fmt.Fprintf(&b, "\n## %s (%d)\n", state, len(bucket))
		for i, t := range bucket {
			if i == QueueTicketsPerState {
				fmt.Fprintf(&b, "- ... and %d more\n", len(bucket)-QueueTicketsPerState)
				break
			}
			fmt.Fprintf(&b, "- #%s: %s\n", t.Number, ellipsize(t.Title, QueueTitleLimit))
		}
	}
	return b.String()
}
