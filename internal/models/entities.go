package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/basher83/zammad-mcp/internal/output"
)

// entity is implemented by every decoded API record. Validate runs
// after strict decoding and is where required-field checks and
// free-text sanitization happen; the sanitized form is the canonical
// stored form.
type entity interface {
	Validate() error
}

// Decode strictly unmarshals an API payload into an entity. Unknown
// fields are rejected rather than silently dropped, and the entity's
// Validate hook runs before the value is returned.
func Decode(raw []byte, v entity) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return translateDecodeError(err)
	}
	return v.Validate()
}

func translateDecodeError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "unknown field") {
		const marker = `unknown field "`
		if i := strings.Index(msg, marker); i >= 0 {
			rest := msg[i+len(marker):]
			if j := strings.Index(rest, `"`); j >= 0 {
				return output.ErrValidation(rest[:j], "unexpected field in API response")
			}
		}
		return output.ErrValidation("", "unexpected field in API response")
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return output.ErrValidation(ute.Field,
			fmt.Sprintf("expected %s, got %s", ute.Type, ute.Value))
	}
	return output.ErrValidation("", "malformed API response: "+msg)
}

// Ticket is a Zammad ticket record. Reference fields hold whichever
// shape (id, label, or expanded object) the API returned.
type Ticket struct {
	ID                        int        `json:"id"`
	Number                    string     `json:"number"`
	Title                     string     `json:"title"`
	GroupID                   int        `json:"group_id"`
	StateID                   int        `json:"state_id"`
	PriorityID                int        `json:"priority_id"`
	CustomerID                int        `json:"customer_id"`
	OwnerID                   *int       `json:"owner_id"`
	OrganizationID            *int       `json:"organization_id"`
	Group                     Relation   `json:"group"`
	State                     Relation   `json:"state"`
	Priority                  Relation   `json:"priority"`
	Customer                  Relation   `json:"customer"`
	Owner                     Relation   `json:"owner"`
	Organization              Relation   `json:"organization"`
	CreatedBy                 Relation   `json:"created_by"`
	UpdatedBy                 Relation   `json:"updated_by"`
	Note                      *string    `json:"note"`
	PendingTime               *time.Time `json:"pending_time"`
	FirstResponseAt           *time.Time `json:"first_response_at"`
	FirstResponseEscalationAt *time.Time `json:"first_response_escalation_at"`
	FirstResponseInMin        *int       `json:"first_response_in_min"`
	FirstResponseDiffInMin    *int       `json:"first_response_diff_in_min"`
	CloseAt                   *time.Time `json:"close_at"`
	CloseEscalationAt         *time.Time `json:"close_escalation_at"`
	CloseInMin                *int       `json:"close_in_min"`
	CloseDiffInMin            *int       `json:"close_diff_in_min"`
	UpdateEscalationAt        *time.Time `json:"update_escalation_at"`
	UpdateInMin               *int       `json:"update_in_min"`
	UpdateDiffInMin           *int       `json:"update_diff_in_min"`
	LastContactAt             *time.Time `json:"last_contact_at"`
	LastContactAgentAt        *time.Time `json:"last_contact_agent_at"`
	LastContactCustomerAt     *time.Time `json:"last_contact_customer_at"`
	LastOwnerUpdateAt         *time.Time `json:"last_owner_update_at"`
	CreatedByID               *int       `json:"created_by_id"`
	UpdatedByID               *int       `json:"updated_by_id"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
	ArticleCount              *int       `json:"article_count"`
	ArticleIDs                []int      `json:"article_ids,omitempty"`
	Articles                  []Article  `json:"articles,omitempty"`
}

func (t *Ticket) Validate() error {
	if t.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive ticket id")
	}
	if t.Number == "" {
		return output.ErrValidation("number", "ticket number is required")
	}
	t.Title = EscapeText(t.Title)
	if t.Note != nil {
		note := EscapeText(*t.Note)
		t.Note = &note
	}
	for i := range t.Articles {
		if err := t.Articles[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Article is a single message or note on a ticket.
type Article struct {
	ID          int          `json:"id"`
	TicketID    int          `json:"ticket_id"`
	Type        Relation     `json:"type"`
	Sender      Relation     `json:"sender"`
	From        *string      `json:"from"`
	To          *string      `json:"to"`
	Cc          *string      `json:"cc"`
	Subject     *string      `json:"subject"`
	Body        string       `json:"body"`
	ContentType string       `json:"content_type"`
	Internal    bool         `json:"internal"`
	CreatedByID *int         `json:"created_by_id"`
	CreatedBy   Relation     `json:"created_by"`
	UpdatedByID *int         `json:"updated_by_id"`
	UpdatedBy   Relation     `json:"updated_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

func (a *Article) Validate() error {
	if a.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive article id")
	}
	a.Body = SanitizeBody(a.Body, a.ContentType)
	if a.Subject != nil {
		subj := EscapeText(*a.Subject)
		a.Subject = &subj
	}
	return nil
}

// Attachment is file metadata on an article. Content is fetched
// separately.
type Attachment struct {
	ID          int            `json:"id"`
	Filename    string         `json:"filename"`
	Size        *flexInt       `json:"size"`
	ContentType *string        `json:"content_type"`
	CreatedAt   *time.Time     `json:"created_at"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// SizeBytes returns the attachment size, or 0 when the API omitted it.
func (a Attachment) SizeBytes() int {
	if a.Size == nil {
		return 0
	}
	return int(*a.Size)
}

func (a *Attachment) Validate() error {
	if a.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive attachment id")
	}
	return nil
}

// flexInt decodes integers that Zammad sometimes serializes as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return fmt.Errorf("size %q is not numeric", s)
	}
	*f = flexInt(n)
	return nil
}

func (f flexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// User is a Zammad agent or customer account.
type User struct {
	ID                       int                 `json:"id"`
	Login                    string              `json:"login"`
	Firstname                *string             `json:"firstname"`
	Lastname                 *string             `json:"lastname"`
	Email                    *string             `json:"email"`
	Image                    *string             `json:"image"`
	ImageSource              *string             `json:"image_source"`
	Phone                    *string             `json:"phone"`
	Mobile                   *string             `json:"mobile"`
	Fax                      *string             `json:"fax"`
	Web                      *string             `json:"web"`
	Department               *string             `json:"department"`
	Street                   *string             `json:"street"`
	Zip                      *string             `json:"zip"`
	City                     *string             `json:"city"`
	Country                  *string             `json:"country"`
	Address                  *string             `json:"address"`
	Note                     *string             `json:"note"`
	OrganizationID           *int                `json:"organization_id"`
	Organization             Relation            `json:"organization"`
	Active                   bool                `json:"active"`
	Vip                      bool                `json:"vip"`
	Verified                 bool                `json:"verified"`
	OutOfOffice              bool                `json:"out_of_office"`
	OutOfOfficeStartAt       *time.Time          `json:"out_of_office_start_at"`
	OutOfOfficeEndAt         *time.Time          `json:"out_of_office_end_at"`
	OutOfOfficeReplacementID *int                `json:"out_of_office_replacement_id"`
	LastLogin                *time.Time          `json:"last_login"`
	CreatedByID              *int                `json:"created_by_id"`
	UpdatedByID              *int                `json:"updated_by_id"`
	CreatedBy                Relation            `json:"created_by"`
	UpdatedBy                Relation            `json:"updated_by"`
	CreatedAt                time.Time           `json:"created_at"`
	UpdatedAt                time.Time           `json:"updated_at"`
	RoleIDs                  []int               `json:"role_ids,omitempty"`
	GroupIDs                 map[string][]string `json:"group_ids,omitempty"`
}

func (u *User) Validate() error {
	if u.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive user id")
	}
	if u.Note != nil {
		note := EscapeText(*u.Note)
		u.Note = &note
	}
	return nil
}

// FullName composes the user's display name, falling back to email or
// login when the name fields are empty.
func (u *User) FullName() string {
	first, last := "", ""
	if u.Firstname != nil {
		first = *u.Firstname
	}
	if u.Lastname != nil {
		last = *u.Lastname
	}
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	return u.Login
}

// Organization is a Zammad organization record.
type Organization struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Shared           bool       `json:"shared"`
	Domain           *string    `json:"domain"`
	DomainAssignment bool       `json:"domain_assignment"`
	Active           bool       `json:"active"`
	Vip              bool       `json:"vip"`
	Note             *string    `json:"note"`
	MemberIDs        []int      `json:"member_ids,omitempty"`
	Members          []Relation `json:"members,omitempty"`
	CreatedByID      *int       `json:"created_by_id"`
	UpdatedByID      *int       `json:"updated_by_id"`
	CreatedBy        Relation   `json:"created_by"`
	UpdatedBy        Relation   `json:"updated_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (o *Organization) Validate() error {
	if o.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive organization id")
	}
	o.Name = EscapeText(o.Name)
	if o.Note != nil {
		note := EscapeText(*o.Note)
		o.Note = &note
	}
	return nil
}

// Group is a Zammad group (queue).
type Group struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Active             bool      `json:"active"`
	AssignmentTimeout  *int      `json:"assignment_timeout"`
	FollowUpPossible   string    `json:"follow_up_possible"`
	FollowUpAssignment bool      `json:"follow_up_assignment"`
	EmailAddressID     *int      `json:"email_address_id"`
	SignatureID        *int      `json:"signature_id"`
	Note               *string   `json:"note"`
	CreatedByID        *int      `json:"created_by_id"`
	UpdatedByID        *int      `json:"updated_by_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (g *Group) Validate() error {
	if g.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive group id")
	}
	if g.Name == "" {
		return output.ErrValidation("name", "group name is required")
	}
	return nil
}

// State is a ticket state definition. StateTypeID drives the stats
// categorization: 1 and 2 count as open, 3 as closed, 4 and 5 as
// pending.
type State struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	StateTypeID      int       `json:"state_type_id"`
	NextStateID      *int      `json:"next_state_id"`
	IgnoreEscalation bool      `json:"ignore_escalation"`
	Active           bool      `json:"active"`
	DefaultCreate    bool      `json:"default_create"`
	DefaultFollowUp  bool      `json:"default_follow_up"`
	Note             *string   `json:"note"`
	CreatedByID      *int      `json:"created_by_id"`
	UpdatedByID      *int      `json:"updated_by_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (s *State) Validate() error {
	if s.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive state id")
	}
	if s.Name == "" {
		return output.ErrValidation("name", "state name is required")
	}
	return nil
}

// Priority is a ticket priority definition.
type Priority struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Active        bool      `json:"active"`
	DefaultCreate bool      `json:"default_create"`
	UIIcon        *string   `json:"ui_icon"`
	UIColor       *string   `json:"ui_color"`
	Note          *string   `json:"note"`
	CreatedByID   *int      `json:"created_by_id"`
	UpdatedByID   *int      `json:"updated_by_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Priority) Validate() error {
	if p.ID <= 0 {
		return output.ErrValidation("id", "missing or non-positive priority id")
	}
	if p.Name == "" {
		return output.ErrValidation("name", "priority name is required")
	}
	return nil
}

// TagResult reports the outcome of a tag add or remove.
type TagResult struct {
	Success  bool   `json:"success"`
	TicketID int    `json:"ticket_id"`
	Tag      string `json:"tag"`
	Action   string `json:"action"`
}

// TicketStats is the aggregate produced by scanning tickets in pages.
type TicketStats struct {
	TotalCount     int    `json:"total_count"`
	OpenCount      int    `json:"open_count"`
	ClosedCount    int    `json:"closed_count"`
	PendingCount   int    `json:"pending_count"`
	EscalatedCount int    `json:"escalated_count"`
	Truncated      bool   `json:"truncated"`
	Note           string `json:"note,omitempty"`
}
