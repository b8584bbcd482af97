package store

import (
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh record identifier. Every backend uses the same
// 24-character hex form so identifiers look alike regardless of driver.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id is a well-formed record identifier.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// Condition is a single field-equality predicate.
type Condition struct {
	Field string
	Value any
}

// Filter selects records by identifier and field equality. The zero Filter
// matches every record.
type Filter struct {
	ID         string
	ExcludeID  string
	Conditions []Condition
}

// ByID matches the record with the given identifier.
func ByID(id string) Filter {
	return Filter{ID: id}
}

// ByField matches records whose field equals value.
func ByField(field string, value any) Filter {
	return Filter{}.And(field, value)
}

// And adds a field-equality predicate.
func (f Filter) And(field string, value any) Filter {
	f.Conditions = append(slices.Clone(f.Conditions), Condition{Field: field, Value: value})
	return f
}

// Excluding drops the record with the given identifier from the match.
func (f Filter) Excluding(id string) Filter {
	f.ExcludeID = id
	return f
}

// Validate checks the identifiers carried by the filter.
func (f Filter) Validate() error {
	if f.ID != "" && !ValidID(f.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, f.ID)
	}
	if f.ExcludeID != "" && !ValidID(f.ExcludeID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, f.ExcludeID)
	}
	return nil
}

// Field is a single assignment applied by UpdateOne.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered list of assignments.
type Fields []Field

// Set appends an assignment.
func (fs Fields) Set(name string, value any) Fields {
	return append(fs, Field{Name: name, Value: value})
}
