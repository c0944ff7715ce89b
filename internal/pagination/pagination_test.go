package pagination

import (
	"encoding/json"
	"testing"
)

func items(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{"id": i + 1}
	}
	return out
}

func intPtr(n int) *int { return &n }

func TestPaginateKnownTotal(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		page     int
		perPage  int
		total    int
		hasMore  bool
		nextPage int
	}{
		{"first of many", 25, 1, 25, 80, true, 2},
		{"middle page", 25, 2, 25, 80, true, 3},
		{"last partial page", 5, 4, 25, 80, false, 0},
		{"exact final page", 25, 2, 25, 50, false, 0},
		{"single page", 3, 1, 25, 3, false, 0},
		{"short page within total", 20, 1, 25, 24, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Paginate(items(tt.count), tt.page, tt.perPage, intPtr(tt.total))
			if env.HasMore != tt.hasMore {
				t.Errorf("HasMore = %v, want %v", env.HasMore, tt.hasMore)
			}
			if tt.hasMore {
				if env.NextPage == nil || *env.NextPage != tt.nextPage {
					t.Errorf("NextPage = %v, want %d", env.NextPage, tt.nextPage)
				}
				wantOff := tt.page * tt.perPage
				if env.NextOff == nil || *env.NextOff != wantOff {
					t.Errorf("NextOff = %v, want %d", env.NextOff, wantOff)
				}
			} else {
				if env.NextPage != nil || env.NextOff != nil {
					t.Error("final page should have nil next markers")
				}
			}
			if env.Count != tt.count {
				t.Errorf("Count = %d", env.Count)
			}
			if env.Offset != (tt.page-1)*tt.perPage {
				t.Errorf("Offset = %d", env.Offset)
			}
		})
	}
}

func TestPaginateUnknownTotal(t *testing.T) {
	// a full page is assumed to continue even when it is actually the
	// last one; the next fetch comes back empty and stops
	full := Paginate(items(25), 1, 25, nil)
	if !full.HasMore {
		t.Error("full page with unknown total should report more")
	}
	partial := Paginate(items(7), 2, 25, nil)
	if partial.HasMore {
		t.Error("short page should end pagination")
	}
	empty := Paginate(items(0), 3, 25, nil)
	if empty.HasMore {
		t.Error("empty page should end pagination")
	}
	if empty.Count != 0 || len(empty.Items) != 0 {
		t.Errorf("empty page count = %d", empty.Count)
	}
}

func TestClosed(t *testing.T) {
	env := Closed(items(4))
	if env.HasMore {
		t.Error("closed lists never have more")
	}
	if env.Total == nil || *env.Total != 4 {
		t.Errorf("Total = %v", env.Total)
	}
	if env.Count != 4 || env.Page != 1 || env.Offset != 0 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestEnvelopeJSONShape(t *testing.T) {
	raw, err := json.Marshal(Paginate(items(2), 1, 25, nil))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	keys := []string{"items", "total", "count", "page", "per_page",
		"offset", "has_more", "next_page", "next_offset", "_meta"}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
	if len(m) != len(keys) {
		t.Errorf("envelope has %d keys, want %d", len(m), len(keys))
	}
	if m["total"] != nil {
		t.Errorf("total = %v, want null", m["total"])
	}
	meta, ok := m["_meta"].(map[string]any)
	if !ok || len(meta) != 0 {
		t.Errorf("_meta = %v, want empty object", m["_meta"])
	}
}

func TestAsMapMatchesJSONKeys(t *testing.T) {
	env := Paginate(items(1), 1, 10, intPtr(1))
	m := env.AsMap()
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON map[string]any
	if err := json.Unmarshal(raw, &fromJSON); err != nil {
		t.Fatal(err)
	}
	if len(m) != len(fromJSON) {
		t.Errorf("AsMap has %d keys, JSON has %d", len(m), len(fromJSON))
	}
	for k := range fromJSON {
		if _, ok := m[k]; !ok {
			t.Errorf("AsMap missing %q", k)
		}
	}
}
