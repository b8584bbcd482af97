package store

import (
	"context"
	"iter"

	"github.com/student-records/apiserver/types"
)

// Collection names shared by every backend.
const (
	UsersCollection    = "users"
	StudentsCollection = "students"
)

// Collection is the narrow CRUD gateway over one collection of records.
type Collection[T any] interface {
	// FindOne returns the first record matching filter, or ErrNotFound.
	FindOne(ctx context.Context, filter Filter) (T, error)

	// FindMany lazily yields every record matching filter. Iteration stops
	// after the first error.
	FindMany(ctx context.Context, filter Filter) iter.Seq2[T, error]

	// InsertOne stores doc under a new identifier and returns it. The
	// identifier field of doc is ignored.
	InsertOne(ctx context.Context, doc T) (string, error)

	// UpdateOne applies set to the first record matching filter and reports
	// whether a record matched.
	UpdateOne(ctx context.Context, filter Filter, set Fields) (bool, error)

	// DeleteOne removes the first record matching filter and reports whether
	// a record was deleted.
	DeleteOne(ctx context.Context, filter Filter) (bool, error)
}

// Store owns the collections of one database connection.
type Store interface {
	Users() Collection[types.User]
	Students() Collection[types.Student]
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Collect drains a FindMany sequence into a slice. The result is never nil.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := make([]T, 0)
	for doc, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}
