// Package truncate shrinks oversized responses while keeping them
// useful: list payloads lose trailing items but stay valid JSON with
// truncation metadata, plain text is cut at the limit with a visible
// notice.
package truncate

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLimit is the response size cap applied when no explicit limit
// is configured.
const DefaultLimit = 25000

// compactThresholdNum/Den: payloads more than 1.2x over the limit are
// re-serialized compactly before any items are dropped, since losing
// the indentation is often enough.
const (
	compactThresholdNum = 12
	compactThresholdDen = 10
)

// Truncator applies the size cap. Limits count characters, matching
// how clients measure the text they receive.
type Truncator struct {
	Limit int
}

// New returns a Truncator for the given character limit. Non-positive
// limits fall back to the default.
func New(limit int) *Truncator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Truncator{Limit: limit}
}

// Truncate returns s unchanged when it fits. Oversized JSON objects
// with an items list are reduced structurally; everything else is cut
// as text. The operation is idempotent: applying it to its own output
// yields the same result.
func (t *Truncator) Truncate(s string) string {
	size := utf8.RuneCountInString(s)
	if size <= t.Limit {
		return s
	}
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	if strings.HasPrefix(trimmed, "{") {
		var payload map[string]any
		if err := json.Unmarshal([]byte(s), &payload); err == nil {
			if items, ok := payload["items"].([]any); ok {
				return t.truncateStructured(payload, items, size)
			}
		}
	}
	return t.truncateText(s, size)
}

func (t *Truncator) truncateStructured(payload map[string]any, items []any, originalSize int) string {
	compact := originalSize*compactThresholdDen > t.Limit*compactThresholdNum

	meta, ok := payload["_meta"].(map[string]any)
	if !ok {
		meta = map[string]any{}
	}
	meta["truncated"] = true
	meta["original_size"] = originalSize
	meta["limit"] = t.Limit
	meta["original_count"] = len(items)
	meta["note"] = "Items were dropped to fit the size limit. Use pagination to fetch the rest."
	payload["_meta"] = meta

	render := func(keep int) (string, bool) {
		payload["items"] = items[:keep]
		payload["count"] = keep
		out, err := t.encode(payload, compact)
		if err != nil {
			return "", false
		}
		return out, utf8.RuneCountInString(out) <= t.Limit
	}

	// largest prefix that fits
	lo, hi := 0, len(items)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if _, fits := render(mid); fits {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	out, fits := render(lo)
	for !fits && lo > 0 {
		lo--
		out, fits = render(lo)
	}
	if !fits {
		// even the empty envelope is over budget; cut it as text so the
		// limit holds regardless
		return t.truncateText(out, utf8.RuneCountInString(out))
	}
	return out
}

func (t *Truncator) encode(payload map[string]any, compact bool) (string, error) {
	var raw []byte
	var err error
	if compact {
		raw, err = json.Marshal(payload)
	} else {
		raw, err = json.MarshalIndent(payload, "", "  ")
	}
	return string(raw), err
}

const noticePrefix = "\n\n[Response truncated: showing "

func (t *Truncator) truncateText(s string, size int) string {
	// output from an earlier pass already carries a notice; cutting it
	// again would rewrite the notice with a misleading size
	if i := strings.LastIndex(s, noticePrefix); i >= 0 {
		if utf8.RuneCountInString(s[:i]) <= t.Limit {
			return s
		}
	}
	runes := []rune(s)
	return string(runes[:t.Limit]) + noticeFor(t.Limit, size)
}

// noticeFor builds the appended truncation notice. The notice itself
// is not counted against the limit so the kept prefix stays stable
// across repeated truncation.
func noticeFor(limit, original int) string {
	return noticePrefix + strconv.Itoa(limit) + " of " + strconv.Itoa(original) +
		" characters.\nNarrow the query, lower per_page, or fetch individual records for full detail.]"
}
