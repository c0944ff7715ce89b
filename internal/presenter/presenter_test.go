package presenter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/basher83/zammad-mcp/internal/models"
)

func sampleTicket() *models.Ticket {
	count := 1
	return &models.Ticket{
		ID:           3,
		Number:       "65003",
		Title:        "Printer jammed again",
		GroupID:      2,
		StateID:      1,
		PriorityID:   2,
		CustomerID:   12,
		Group:        models.RelationFromBrief(models.Brief{ID: 2, Name: "Support"}),
		State:        models.RelationFromLabel("open"),
		Priority:     models.RelationFromLabel("2 normal"),
		Customer:     models.RelationFromBrief(models.Brief{ID: 12, Email: "jane@example.com"}),
		Owner:        models.RelationFromID(3),
		CreatedAt:    time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		ArticleCount: &count,
	}
}

func TestTicketHeaderShowsNumberAndID(t *testing.T) {
	out := Ticket(sampleTicket())
	if !strings.Contains(out, "# Ticket #65003 (ID: 3): Printer jammed again") {
		t.Errorf("header missing number/id pair:\n%s", out)
	}
}

func TestTicketLabelRelationsRender(t *testing.T) {
	out := Ticket(sampleTicket())
	for _, want := range []string{
		"**State**: open",
		"**Priority**: 2 normal",
		"**Group**: Support",
		"**Owner**: Unknown",
		"**Customer**: jane@example.com",
		"**Created**: 2026-08-01T09:30:00Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestExcerptCapsAt500(t *testing.T) {
	body := strings.Repeat("x", 600)
	out := Excerpt(body, ArticleExcerptLimit)
	if !strings.HasSuffix(out, "(truncated)") {
		t.Fatalf("missing truncation marker: %q", out[len(out)-30:])
	}
	kept := strings.TrimSuffix(out, "... (truncated)")
	if len(kept) != 500 {
		t.Errorf("kept %d chars, want 500", len(kept))
	}

	short := Excerpt("short body", ArticleExcerptLimit)
	if short != "short body" {
		t.Errorf("short body altered: %q", short)
	}
}

func TestExcerptCountsRunes(t *testing.T) {
	body := strings.Repeat("ä", 501)
	out := Excerpt(body, 500)
	kept := strings.TrimSuffix(out, "... (truncated)")
	if n := len([]rune(kept)); n != 500 {
		t.Errorf("kept %d runes, want 500", n)
	}
}

func TestTicketListCountHeader(t *testing.T) {
	tickets := []models.Ticket{*sampleTicket(), *sampleTicket()}
	out := TicketList(tickets)
	if !strings.Contains(out, "## Found 2 tickets") {
		t.Errorf("missing count header:\n%s", out)
	}
	if strings.Count(out, "#65003") != 2 {
		t.Errorf("expected both ticket blocks:\n%s", out)
	}
	if got := TicketList(nil); got != "No tickets found.\n" {
		t.Errorf("empty list = %q", got)
	}
}

func TestUserListFallsBackToNA(t *testing.T) {
	email := "jane@example.com"
	users := []models.User{
		{ID: 12, Login: "jane", Email: &email, Active: true},
		{ID: 13, Login: "ghost", Active: false},
	}
	out := UserList(users, "example")
	if !strings.Contains(out, "# User Search Results: example") {
		t.Errorf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "Found 2 user(s)") {
		t.Errorf("count missing:\n%s", out)
	}
	if !strings.Contains(out, "- **Email**: jane@example.com") {
		t.Errorf("email missing:\n%s", out)
	}
	if !strings.Contains(out, "- **Email**: N/A") {
		t.Errorf("N/A fallback missing:\n%s", out)
	}
}

func TestOrganizationListBlocks(t *testing.T) {
	orgs := []models.Organization{{ID: 7, Name: "Acme", Active: true}}
	out := OrganizationList(orgs, "acme")
	for _, want := range []string{
		"# Organization Search Results: acme",
		"Found 1 organization(s)",
		"## Acme",
		"- **ID**: 7",
		"- **Active**: true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestReferenceListSortedByID(t *testing.T) {
	items := []ReferenceItem{
		{ID: 3, Name: "2 normal"},
		{ID: 1, Name: "1 low"},
	}
	out := ReferenceList("Ticket Priority", items)
	if !strings.Contains(out, "# Ticket Priority List") {
		t.Errorf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "Found 2 ticket priority(s)") {
		t.Errorf("count missing:\n%s", out)
	}
	low := strings.Index(out, "- **1 low** (ID: 1)")
	normal := strings.Index(out, "- **2 normal** (ID: 3)")
	if low < 0 || normal < 0 || low > normal {
		t.Errorf("items missing or out of order:\n%s", out)
	}
	if items[0].ID != 3 {
		t.Error("input slice was reordered")
	}
}

func TestStructuredPreservesRelationShape(t *testing.T) {
	m, err := Structured(sampleTicket())
	if err != nil {
		t.Fatal(err)
	}
	if m["state"] != "open" {
		t.Errorf(`state = %v, want "open"`, m["state"])
	}
	group, ok := m["group"].(map[string]any)
	if !ok {
		t.Fatalf("group = %v, want object", m["group"])
	}
	if group["name"] != "Support" {
		t.Errorf("group.name = %v", group["name"])
	}
	if owner, ok := m["owner"].(float64); !ok || owner != 3 {
		t.Errorf("owner = %v, want bare id 3", m["owner"])
	}
	if _, ok := m["organization"]; !ok {
		t.Error("absent relation should still be present as null")
	}
}

func TestJSONIndentation(t *testing.T) {
	out, err := JSON(map[string]any{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\n  \"a\"") {
		t.Errorf("not two-space indented: %q", out)
	}
	var back map[string]any
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Errorf("output not valid JSON: %v", err)
	}
}

func TestQueueGroupsByStateAndCaps(t *testing.T) {
	var tickets []models.Ticket
	for i := 0; i < 12; i++ {
		tk := *sampleTicket()
		tk.State = models.RelationFromLabel("open")
		tk.Title = strings.Repeat("t", 60)
		tickets = append(tickets, tk)
	}
	closed := *sampleTicket()
	closed.State = models.RelationFromLabel("closed")
	tickets = append(tickets, closed)

	out := Queue("Support", tickets)
	if !strings.Contains(out, "## open (12)") || !strings.Contains(out, "## closed (1)") {
		t.Errorf("state sections missing:\n%s", out)
	}
	if !strings.Contains(out, "... and 2 more") {
		t.Errorf("per-state cap missing:\n%s", out)
	}
	if !strings.Contains(out, strings.Repeat("t", 50)+"...") {
		t.Errorf("title not ellipsized:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("t", 51)) {
		t.Error("title longer than the cap survived")
	}
}
