package store

import (
	"reflect"
	"regexp"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Getter returns the value stored under a document field, or nil.
type Getter func(field string) any

// Filter is a conjunction of field predicates. The zero value matches every
// document. Builder methods return a new Filter and never modify the receiver.
type Filter struct {
	preds []predicate
}

type predicate interface {
	element() bson.E
	match(get Getter) bool
}

// ByID matches the document with the given _id.
func ByID(id primitive.ObjectID) Filter {
	return Filter{}.Eq("_id", id)
}

// Eq matches documents whose field equals value. For array fields it matches
// when any element equals value, as MongoDB does.
func (f Filter) Eq(field string, value any) Filter {
	return f.with(eqPred{field: field, value: value})
}

// Contains matches a case-insensitive substring. The needle is matched
// literally, never as a pattern.
func (f Filter) Contains(field, needle string) Filter {
	return f.with(containsPred{field: field, needle: needle})
}

// In matches documents whose field (or any element of an array field) equals
// one of values.
func (f Filter) In(field string, values ...any) Filter {
	return f.with(inPred{field: field, values: values})
}

// Range matches numeric fields within [min, max]. A nil bound is open.
func (f Filter) Range(field string, min, max *float64) Filter {
	if min == nil && max == nil {
		return f
	}
	return f.with(rangePred{field: field, min: min, max: max})
}

func (f Filter) Empty() bool { return len(f.preds) == 0 }

// BSON compiles the filter into a MongoDB query document. Predicates on the
// same field are combined with $and so none overwrites another.
func (f Filter) BSON() bson.D {
	out := bson.D{}
	seen := make(map[string]bool, len(f.preds))
	dup := false
	for _, p := range f.preds {
		e := p.element()
		if seen[e.Key] {
			dup = true
		}
		seen[e.Key] = true
		out = append(out, e)
	}
	if !dup {
		return out
	}
	and := make(bson.A, 0, len(out))
	for _, e := range out {
		and = append(and, bson.D{e})
	}
	return bson.D{{Key: "$and", Value: and}}
}

// Match evaluates the filter against a document in memory.
func (f Filter) Match(get Getter) bool {
	for _, p := range f.preds {
		if !p.match(get) {
			return false
		}
	}
	return true
}

func (f Filter) with(p predicate) Filter {
	return Filter{preds: append(slices.Clone(f.preds), p)}
}

type eqPred struct {
	field string
	value any
}

func (p eqPred) element() bson.E { return bson.E{Key: p.field, Value: p.value} }

func (p eqPred) match(get Getter) bool {
	for _, v := range elements(get(p.field)) {
		if equal(v, p.value) {
			return true
		}
	}
	return false
}

type containsPred struct {
	field  string
	needle string
}

func (p containsPred) element() bson.E {
	return bson.E{Key: p.field, Value: primitive.Regex{Pattern: regexp.QuoteMeta(p.needle), Options: "i"}}
}

func (p containsPred) match(get Getter) bool {
	s, ok := get(p.field).(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(p.needle))
}

type inPred struct {
	field  string
	values []any
}

func (p inPred) element() bson.E {
	return bson.E{Key: p.field, Value: bson.D{{Key: "$in", Value: bson.A(p.values)}}}
}

func (p inPred) match(get Getter) bool {
	for _, v := range elements(get(p.field)) {
		for _, want := range p.values {
			if equal(v, want) {
				return true
			}
		}
	}
	return false
}

type rangePred struct {
	field    string
	min, max *float64
}

func (p rangePred) element() bson.E {
	cond := bson.D{}
	if p.min != nil {
		cond = append(cond, bson.E{Key: "$gte", Value: *p.min})
	}
	if p.max != nil {
		cond = append(cond, bson.E{Key: "$lte", Value: *p.max})
	}
	return bson.E{Key: p.field, Value: cond}
}

func (p rangePred) match(get Getter) bool {
	n, ok := number(get(p.field))
	if !ok {
		return false
	}
	if p.min != nil && n < *p.min {
		return false
	}
	if p.max != nil && n > *p.max {
		return false
	}
	return true
}

// elements flattens array fields so scalar and array values share one path.
func elements(v any) []any {
	switch vv := v.(type) {
	case nil:
		return nil
	case []primitive.ObjectID:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = vv[i]
		}
		return out
	case []string:
		out := make([]any, len(vv))
		for i := range vv {
			out[i] = vv[i]
		}
		return out
	case []any:
		return vv
	default:
		return []any{v}
	}
}

func equal(a, b any) bool {
	if na, ok := number(a); ok {
		if nb, ok := number(b); ok {
			return na == nb
		}
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
