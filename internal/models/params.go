package models

// Tool input payloads. JSON tags drive schema inference on the MCP
// side; validate tags drive the constraint checks in CheckParams.
// Normalize fills defaults before validation so zero values coming
// from omitted JSON fields do not trip the range rules.

// ResponseFormat selects between rendered markdown and the structured
// JSON envelope.
type ResponseFormat string

const (
	FormatMarkdown ResponseFormat = "markdown"
	FormatJSON     ResponseFormat = "json"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// PageParams is the shared pagination block.
type PageParams struct {
	Page    int `json:"page,omitempty" validate:"gte=1"`
	PerPage int `json:"per_page,omitempty" validate:"gte=1,lte=100"`
}

func (p *PageParams) Normalize() {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PerPage == 0 {
		p.PerPage = DefaultPerPage
	}
}

// SearchTicketsParams filters the ticket search.
type SearchTicketsParams struct {
	Query          string         `json:"query,omitempty"`
	State          string         `json:"state,omitempty"`
	Priority       string         `json:"priority,omitempty"`
	Group          string         `json:"group,omitempty"`
	Owner          string         `json:"owner,omitempty"`
	Customer       string         `json:"customer,omitempty"`
	ResponseFormat ResponseFormat `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
	PageParams
}

func (p *SearchTicketsParams) Normalize() {
	p.PageParams.Normalize()
	if p.ResponseFormat == "" {
		p.ResponseFormat = FormatMarkdown
	}
}

// GetTicketParams fetches one ticket by internal id. ArticleLimit -1
// means all articles.
type GetTicketParams struct {
	TicketID        int  `json:"ticket_id" validate:"required,gt=0"`
	IncludeArticles bool `json:"include_articles,omitempty"`
	ArticleLimit    int  `json:"article_limit,omitempty" validate:"gte=-1"`
	ArticleOffset   int  `json:"article_offset,omitempty" validate:"gte=0"`
}

func (p *GetTicketParams) Normalize() {
	if p.ArticleLimit == 0 {
		p.ArticleLimit = 10
	}
}

// CreateTicketParams creates a ticket with its first article.
type CreateTicketParams struct {
	Title           string             `json:"title" validate:"required,max=200"`
	Group           string             `json:"group" validate:"required"`
	Customer        string             `json:"customer" validate:"required"`
	ArticleBody     string             `json:"article_body" validate:"required,max=100000"`
	State           string             `json:"state,omitempty"`
	Priority        string             `json:"priority,omitempty"`
	ArticleType     string             `json:"article_type,omitempty" validate:"omitempty,oneof=note email phone web"`
	ArticleInternal bool               `json:"article_internal,omitempty"`
	Attachments     []AttachmentUpload `json:"attachments,omitempty"`
}

func (p *CreateTicketParams) Normalize() {
	if p.ArticleType == "" {
		p.ArticleType = "note"
	}
}

// UpdateTicketParams patches mutable ticket fields. Empty strings mean
// leave unchanged.
type UpdateTicketParams struct {
	TicketID int    `json:"ticket_id" validate:"required,gt=0"`
	Title    string `json:"title,omitempty" validate:"omitempty,max=200"`
	State    string `json:"state,omitempty"`
	Priority string `json:"priority,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Group    string `json:"group,omitempty"`
}

// AddArticleParams appends an article to an existing ticket.
type AddArticleParams struct {
	TicketID    int                `json:"ticket_id" validate:"required,gt=0"`
	Body        string             `json:"body" validate:"required,max=100000"`
	Type        string             `json:"article_type,omitempty" validate:"omitempty,oneof=note email phone web"`
	Internal    *bool              `json:"internal,omitempty"`
	Sender      string             `json:"sender,omitempty" validate:"omitempty,oneof=Agent Customer System"`
	Attachments []AttachmentUpload `json:"attachments,omitempty"`
}

func (p *AddArticleParams) Normalize() {
	if p.Type == "" {
		p.Type = "note"
	}
	if p.Internal == nil {
		internal := true
		p.Internal = &internal
	}
	if p.Sender == "" {
		p.Sender = "Agent"
	}
}

// TagParams adds or removes one tag on a ticket.
type TagParams struct {
	TicketID int    `json:"ticket_id" validate:"required,gt=0"`
	Tag      string `json:"tag" validate:"required,min=1,max=100"`
}

// ListAttachmentsParams names the article whose attachments to list.
type ListAttachmentsParams struct {
	TicketID  int `json:"ticket_id" validate:"required,gt=0"`
	ArticleID int `json:"article_id" validate:"required,gt=0"`
}

// DefaultMaxDownloadBytes caps attachment downloads unless the caller
// raises the limit explicitly.
const DefaultMaxDownloadBytes = 10 * 1024 * 1024

// AttachmentParams names one attachment for download or delete.
type AttachmentParams struct {
	TicketID     int `json:"ticket_id" validate:"required,gt=0"`
	ArticleID    int `json:"article_id" validate:"required,gt=0"`
	AttachmentID int `json:"attachment_id" validate:"required,gt=0"`
	MaxBytes     int `json:"max_bytes,omitempty" validate:"gte=0"`
}

func (p *AttachmentParams) Normalize() {
	if p.MaxBytes == 0 {
		p.MaxBytes = DefaultMaxDownloadBytes
	}
}

// GetUserParams fetches one user by id.
type GetUserParams struct {
	UserID int `json:"user_id" validate:"required,gt=0"`
}

// SearchUsersParams searches users by free-text query.
type SearchUsersParams struct {
	Query          string         `json:"query" validate:"required,min=1"`
	ResponseFormat ResponseFormat `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
	PageParams
}

func (p *SearchUsersParams) Normalize() {
	p.PageParams.Normalize()
	if p.ResponseFormat == "" {
		p.ResponseFormat = FormatMarkdown
	}
}

// GetOrganizationParams fetches one organization by id.
type GetOrganizationParams struct {
	OrganizationID int `json:"organization_id" validate:"required,gt=0"`
}

// SearchOrganizationsParams searches organizations by free-text query.
type SearchOrganizationsParams struct {
	Query          string         `json:"query" validate:"required,min=1"`
	ResponseFormat ResponseFormat `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
	PageParams
}

func (p *SearchOrganizationsParams) Normalize() {
	p.PageParams.Normalize()
	if p.ResponseFormat == "" {
		p.ResponseFormat = FormatMarkdown
	}
}

// ListParams selects the rendering for the cached reference lists.
type ListParams struct {
	ResponseFormat ResponseFormat `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
}

func (p *ListParams) Normalize() {
	if p.ResponseFormat == "" {
		p.ResponseFormat = FormatMarkdown
	}
}

// TicketStatsParams optionally narrows the stats scan.
type TicketStatsParams struct {
	Group string `json:"group,omitempty"`
	State string `json:"state,omitempty"`
}
