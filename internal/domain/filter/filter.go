// Package filter describes metadata pre-filters applied inside the venue index query.
package filter

import "fmt"

// MaxConditions bounds a single expression.
const MaxConditions = 16

// Expression is a conjunction of required and excluded conditions.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// New validates and creates an Expression.
func New(must, mustNot []Condition) (Expression, error) {
	if len(must)+len(mustNot) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Must returns the conditions every hit has to satisfy.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the conditions no hit may satisfy.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 && len(e.mustNot) == 0 }

// And returns a copy of e with c appended to the required conditions.
func (e Expression) And(c Condition) Expression {
	must := make([]Condition, 0, len(e.must)+1)
	must = append(must, e.must...)
	return Expression{must: append(must, c), mustNot: e.mustNot}
}

// Condition is a tag equality or a numeric lower bound on one metadata field.
type Condition struct {
	key   string
	tag   string
	min   float64
	isMin bool
}

// Tag creates an exact tag match condition.
func Tag(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("tag value is required for key %q", key)
	}
	return Condition{key: key, tag: value}, nil
}

// AtLeast creates a numeric `key >= min` condition.
func AtLeast(key string, minValue float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, min: minValue, isMin: true}, nil
}

// Key returns the metadata field name.
func (c Condition) Key() string { return c.key }

// TagValue returns the tag to match.
func (c Condition) TagValue() string { return c.tag }

// Min returns the inclusive lower bound.
func (c Condition) Min() float64 { return c.min }

// IsTag reports whether this is a tag condition.
func (c Condition) IsTag() bool { return c.tag != "" }

// IsMin reports whether this is a numeric lower bound.
func (c Condition) IsMin() bool { return c.isMin }
