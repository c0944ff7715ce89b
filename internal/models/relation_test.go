package models

import (
	"encoding/json"
	"testing"
)

func TestRelationDecodeShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind RelationKind
	}{
		{"null", `null`, RelationAbsent},
		{"positive integer", `42`, RelationID},
		{"zero", `0`, RelationAbsent},
		{"negative", `-3`, RelationAbsent},
		{"fractional", `1.5`, RelationAbsent},
		{"string label", `"2 normal"`, RelationLabel},
		{"empty string", `""`, RelationLabel},
		{"object", `{"id": 7, "name": "Users"}`, RelationBrief},
		{"array", `[1, 2]`, RelationAbsent},
		{"boolean", `true`, RelationAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Relation
			if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if r.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", r.Kind(), tt.kind)
			}
		})
	}
}

func TestRelationRoundTrip(t *testing.T) {
	tests := []string{
		`null`,
		`42`,
		`"open"`,
		`{"id":7,"name":"Users"}`,
		`{"id":3,"email":"jane@example.com","firstname":"Jane","lastname":"Doe"}`,
	}
	for _, in := range tests {
		var r Relation
		if err := json.Unmarshal([]byte(in), &r); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		out, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != in {
			t.Errorf("round trip %s => %s", in, out)
		}
	}
}

func TestRelationUnsupportedShapeMarshalsNull(t *testing.T) {
	var r Relation
	if err := json.Unmarshal([]byte(`[1,2]`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("marshal = %s, want null", out)
	}
}

func TestRelationDisplayName(t *testing.T) {
	tests := []struct {
		name string
		r    Relation
		want string
	}{
		{"label", RelationFromLabel("open"), "open"},
		{"brief name", RelationFromBrief(Brief{ID: 1, Name: "Users"}), "Users"},
		{"brief first last", RelationFromBrief(Brief{ID: 2, Firstname: "Jane", Lastname: "Doe"}), "Jane Doe"},
		{"brief email only", RelationFromBrief(Brief{ID: 3, Email: "jane@example.com"}), "jane@example.com"},
		{"brief login only", RelationFromBrief(Brief{ID: 4, Login: "jdoe"}), "jdoe"},
		{"bare id", RelationFromID(9), "Unknown"},
		{"absent", Relation{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelationID(t *testing.T) {
	if id, ok := RelationFromID(5).ID(); !ok || id != 5 {
		t.Errorf("ID() = %d, %v", id, ok)
	}
	if id, ok := RelationFromBrief(Brief{ID: 8}).ID(); !ok || id != 8 {
		t.Errorf("brief ID() = %d, %v", id, ok)
	}
	if _, ok := RelationFromLabel("open").ID(); ok {
		t.Error("label should not report an id")
	}
	if _, ok := (Relation{}).ID(); ok {
		t.Error("absent should not report an id")
	}
}
