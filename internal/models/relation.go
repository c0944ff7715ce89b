package models

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// RelationKind identifies which representation a Relation holds.
type RelationKind int

const (
	// RelationAbsent means the field was null, missing, or an
	// unrecognized shape.
	RelationAbsent RelationKind = iota
	// RelationID means the field was a bare numeric identifier.
	RelationID
	// RelationLabel means the field was a plain string label.
	RelationLabel
	// RelationBrief means the field was an expanded object with at
	// least an id.
	RelationBrief
)

// Brief is the expanded form of a related record as Zammad returns it
// with expand=true. Only the subset of fields the presenter needs is
// decoded; everything else the API sends is ignored.
type Brief struct {
	ID          int    `json:"id"`
	Name        string `json:"name,omitempty"`
	Login       string `json:"login,omitempty"`
	Email       string `json:"email,omitempty"`
	Firstname   string `json:"firstname,omitempty"`
	Lastname    string `json:"lastname,omitempty"`
	StateTypeID int    `json:"state_type_id,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

// Relation is a reference field that Zammad serializes in one of three
// shapes depending on the expand parameter: a numeric id, a display
// label, or an expanded object. Decoding never fails on JSON-legal
// input; shapes that fit none of the variants collapse to
// RelationAbsent with a debug log line.
//
// Marshalling re-emits whichever shape was decoded, so entities
// round-trip without losing their original representation.
type Relation struct {
	kind  RelationKind
	id    int
	label string
	brief *Brief
}

// RelationFromID builds an id-shaped relation. Used by tests and by
// code that synthesizes entities.
func RelationFromID(id int) Relation {
	return Relation{kind: RelationID, id: id}
}

// RelationFromLabel builds a label-shaped relation.
func RelationFromLabel(label string) Relation {
	return Relation{kind: RelationLabel, label: label}
}

// RelationFromBrief builds an expanded-object relation.
func RelationFromBrief(b Brief) Relation {
	return Relation{kind: RelationBrief, brief: &b}
}

// Kind reports which shape the relation holds.
func (r Relation) Kind() RelationKind { return r.kind }

// IsAbsent reports whether the field carried no usable value.
func (r Relation) IsAbsent() bool { return r.kind == RelationAbsent }

// ID returns the numeric identifier when one is known. Brief objects
// carry their id too; labels and absent values report ok=false.
func (r Relation) ID() (int, bool) {
	switch r.kind {
	case RelationID:
		return r.id, true
	case RelationBrief:
		return r.brief.ID, true
	}
	return 0, false
}

// Label returns the raw string label, or "" for other shapes.
func (r Relation) Label() string {
	if r.kind == RelationLabel {
		return r.label
	}
	return ""
}

// Brief returns the expanded object, or nil for other shapes.
func (r Relation) Brief() *Brief {
	if r.kind == RelationBrief {
		return r.brief
	}
	return nil
}

// DisplayName returns the best human-readable name the shape allows:
// the label itself, a brief's name or composed first/last name, or
// "Unknown" when the relation is absent or only a numeric id.
func (r Relation) DisplayName() string {
	switch r.kind {
	case RelationLabel:
		return r.label
	case RelationBrief:
		b := r.brief
		if b.Name != "" {
			return b.Name
		}
		if full := strings.TrimSpace(b.Firstname + " " + b.Lastname); full != "" {
			return full
		}
		if b.Email != "" {
			return b.Email
		}
		if b.Login != "" {
			return b.Login
		}
	}
	return "Unknown"
}

// EmailAddress returns a brief's email when present, "Unknown"
// otherwise.
func (r Relation) EmailAddress() string {
	if r.kind == RelationBrief && r.brief.Email != "" {
		return r.brief.Email
	}
	return "Unknown"
}

// StateTypeID returns the brief's state_type_id when one was expanded.
func (r Relation) StateTypeID() (int, bool) {
	if r.kind == RelationBrief && r.brief.StateTypeID != 0 {
		return r.brief.StateTypeID, true
	}
	return 0, false
}

// UnmarshalJSON accepts any JSON-legal value. Numbers become
// RelationID, strings RelationLabel, objects RelationBrief, and
// everything else (null, arrays, booleans, fractional or non-positive
// numbers) RelationAbsent. It never returns an error for valid JSON.
func (r *Relation) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*r = Relation{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*r = Relation{}
			return nil
		}
		*r = Relation{kind: RelationLabel, label: s}
		return nil
	case '{':
		var b Brief
		if err := json.Unmarshal(data, &b); err != nil {
			slog.Debug("reference field object did not decode, treating as absent", "error", err)
			*r = Relation{}
			return nil
		}
		*r = Relation{kind: RelationBrief, brief: &b}
		return nil
	case '[', 't', 'f':
		slog.Debug("reference field has unsupported shape, treating as absent", "value", trimmed)
		*r = Relation{}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*r = Relation{}
		return nil
	}
	id, err := n.Int64()
	if err != nil || id <= 0 {
		slog.Debug("reference field number is not a positive integer, treating as absent", "value", n.String())
		*r = Relation{}
		return nil
	}
	*r = Relation{kind: RelationID, id: int(id)}
	return nil
}

// MarshalJSON re-emits the decoded shape unchanged.
func (r Relation) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RelationID:
		return json.Marshal(r.id)
	case RelationLabel:
		return json.Marshal(r.label)
	case RelationBrief:
		return json.Marshal(r.brief)
	}
	return []byte("null"), nil
}

// String implements fmt.Stringer for log output.
func (r Relation) String() string {
	switch r.kind {
	case RelationID:
		return fmt.Sprintf("#%d", r.id)
	case RelationLabel:
		return r.label
	case RelationBrief:
		return r.DisplayName()
	}
	return "absent"
}
