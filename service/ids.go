package service

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// IDList is a JSON field expected to hold an array of id strings. It records
// whether the field was present and whether it had the right shape, so
// callers can tell "missing" from "not a list".
type IDList struct {
	Values []string
	set    bool
	valid  bool
}

func NewIDList(ids ...string) IDList {
	return IDList{Values: ids, set: true, valid: true}
}

func (l *IDList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*l = IDList{}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		*l = IDList{set: true}
		return nil
	}
	*l = IDList{Values: ids, set: true, valid: true}
	return nil
}

func (l IDList) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	return json.Marshal(l.Values)
}

// Present reports whether the field was given and not null.
func (l IDList) Present() bool { return l.set }

// Valid reports whether the field was an array of strings.
func (l IDList) Valid() bool { return l.set && l.valid }
