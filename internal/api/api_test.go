package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/basher83/zammad-mcp/internal/config"
	"github.com/basher83/zammad-mcp/internal/output"
)

func testConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.URL = url
	cfg.HTTPToken = "secret-token"
	return cfg
}

func ticketBody(id int) string {
	return `{
		"id": ` + itoa(id) + `,
		"number": "650` + itoa(id) + `",
		"title": "Test ticket",
		"group_id": 1, "state_id": 1, "priority_id": 2, "customer_id": 4,
		"group": "Support", "state": "open", "priority": "2 normal",
		"customer": {"id": 4, "email": "jane@example.com"},
		"owner": null, "organization": null,
		"created_at": "2026-08-01T09:30:00Z",
		"updated_at": "2026-08-01T09:30:00Z"
	}`
}

func itoa(n int) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}

func TestAuthHeaderHTTPToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(ticketBody(7)))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	if _, err := c.GetTicket(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Token token=secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestAuthHeaderOAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(ticketBody(7)))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.URL = srv.URL
	cfg.OAuth2Token = "oauth-secret"
	c := NewClient(cfg)
	if _, err := c.GetTicket(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer oauth-secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestAuthHeaderBasic(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Write([]byte(ticketBody(7)))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.URL = srv.URL
	cfg.Username = "agent@example.com"
	cfg.Password = "hunter2"
	c := NewClient(cfg)
	if _, err := c.GetTicket(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if !gotOK || gotUser != "agent@example.com" || gotPass != "hunter2" {
		t.Errorf("basic auth = %q/%q ok=%v", gotUser, gotPass, gotOK)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
	}{
		{401, output.CodeAuth},
		{403, output.CodeForbidden},
		{429, output.CodeRateLimit},
		{500, output.CodeUnavailable},
		{503, output.CodeUnavailable},
		{422, output.CodeAPI},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tt.status == 429 {
				w.Header().Set("Retry-After", "30")
			}
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error": "nope"}`))
		}))
		c := NewClient(testConfig(srv.URL))
		_, err := c.Get(context.Background(), "tickets/1")
		srv.Close()

		var oe *output.Error
		if !errors.As(err, &oe) {
			t.Fatalf("status %d: not a typed error: %v", tt.status, err)
		}
		if oe.Code != tt.wantCode {
			t.Errorf("status %d: code = %q, want %q", tt.status, oe.Code, tt.wantCode)
		}
		if tt.status == 429 && !strings.Contains(oe.Hint, "30") {
			t.Errorf("rate limit hint missing Retry-After: %q", oe.Hint)
		}
	}
}

func TestNotFoundTicketGuidance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "No lookup value found"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.GetTicket(context.Background(), 65003)
	var oe *output.Error
	if !errors.As(err, &oe) {
		t.Fatalf("not a typed error: %v", err)
	}
	if oe.Code != output.CodeNotFound {
		t.Errorf("code = %q", oe.Code)
	}
	if !strings.Contains(oe.Error()+oe.Hint, "65003") {
		t.Error("guidance should mention the identifier that was used")
	}
	if !strings.Contains(oe.Hint, "number") {
		t.Errorf("guidance should explain the id vs number mixup: %q", oe.Hint)
	}
}

func TestAuthErrorNeverEchoesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "authentication failed"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Get(context.Background(), "users/me")
	if err == nil {
		t.Fatal("want auth error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Error("error text leaks the token")
	}
}

func TestTimeoutIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	c := NewClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Get(ctx, "tickets/search")
	var oe *output.Error
	if !errors.As(err, &oe) {
		t.Fatalf("not a typed error: %v", err)
	}
	if oe.Code != output.CodeTimeout {
		t.Errorf("code = %q, want timeout", oe.Code)
	}
}

func TestNoRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	if _, err := c.Get(context.Background(), "tickets/1"); err == nil {
		t.Fatal("want error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want exactly 1", n)
	}
}

func TestSearchExpression(t *testing.T) {
	tests := []struct {
		name   string
		search TicketSearch
		want   string
	}{
		{"query only", TicketSearch{Query: "printer"}, "printer"},
		{"state filter", TicketSearch{State: "open"}, "state.name:open"},
		{"combined", TicketSearch{Query: "printer", State: "open", Group: "IT Support"},
			`printer AND state.name:open AND group.name:"IT Support"`},
		{"customer", TicketSearch{Customer: "jane@example.com"}, "customer.email:jane@example.com"},
		{"empty", TicketSearch{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.search.expression(); got != tt.want {
				t.Errorf("expression() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchTicketsSendsExpandAndPaging(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`[` + ticketBody(7) + `]`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	tickets, err := c.SearchTickets(context.Background(), TicketSearch{Query: "x", Page: 2, PerPage: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 1 || tickets[0].ID != 7 {
		t.Errorf("tickets = %+v", tickets)
	}
	if gotQuery["expand"] != "true" || gotQuery["page"] != "2" || gotQuery["per_page"] != "50" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestDownloadAttachmentSizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	if _, err := c.DownloadAttachment(context.Background(), 1, 2, 3, 1024); err == nil {
		t.Fatal("want error over the byte cap")
	}
	data, err := c.DownloadAttachment(context.Background(), 1, 2, 3, 4096)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 2048 {
		t.Errorf("downloaded %d bytes", len(data))
	}
}
