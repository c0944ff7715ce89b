// Package pagination builds the list envelope every collection-shaped
// response uses. The envelope always carries the same key set so
// clients can paginate without sniffing which fields exist.
package pagination

// Envelope wraps one page of results with navigation metadata. Total
// is nil when the backend cannot report an overall count; HasMore is
// then inferred from whether the page came back full.
type Envelope struct {
	Items    []any          `json:"items"`
	Total    *int           `json:"total"`
	Count    int            `json:"count"`
	Page     int            `json:"page"`
	PerPage  int            `json:"per_page"`
	Offset   int            `json:"offset"`
	HasMore  bool           `json:"has_more"`
	NextPage *int           `json:"next_page"`
	NextOff  *int           `json:"next_offset"`
	Meta     map[string]any `json:"_meta"`
}

// Paginate wraps one fetched page. When total is unknown, a full page
// is assumed to have more behind it; the final exactly-full page
// therefore yields one trailing empty fetch, which is accepted as the
// cost of not issuing a count query.
func Paginate(items []any, page, perPage int, total *int) Envelope {
	count := len(items)
	offset := (page - 1) * perPage

	var hasMore bool
	if total != nil {
		hasMore = page*perPage < *total
	} else {
		hasMore = count == perPage
	}

	env := Envelope{
		Items:   items,
		Total:   total,
		Count:   count,
		Page:    page,
		PerPage: perPage,
		Offset:  offset,
		HasMore: hasMore,
		Meta:    map[string]any{},
	}
	if hasMore {
		next := page + 1
		nextOff := offset + perPage
		env.NextPage = &next
		env.NextOff = &nextOff
	}
	return env
}

// Closed wraps a complete reference list such as states or priorities.
// The list is never paginated: total equals count and HasMore is
// always false.
func Closed(items []any) Envelope {
	count := len(items)
	total := count
	return Envelope{
		Items:   items,
		Total:   &total,
		Count:   count,
		Page:    1,
		PerPage: count,
		Offset:  0,
		Meta:    map[string]any{},
	}
}

// AsMap converts the envelope to the generic form the truncation layer
// operates on.
func (e Envelope) AsMap() map[string]any {
	m := map[string]any{
		"items":       e.Items,
		"total":       nilOrInt(e.Total),
		"count":       e.Count,
		"page":        e.Page,
		"per_page":    e.PerPage,
		"offset":      e.Offset,
		"has_more":    e.HasMore,
		"next_page":   nilOrInt(e.NextPage),
		"next_offset": nilOrInt(e.NextOff),
		"_meta":       e.Meta,
	}
	return m
}

func nilOrInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
