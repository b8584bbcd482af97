package mongostore

import (
	"context"

	"github.com/student-records/apiserver/internal/store"
	"github.com/student-records/apiserver/types"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store holds the users and students collections of one database.
type Store struct {
	client   *mongo.Client
	users    *Collection[types.User]
	students *Collection[types.Student]
}

// New binds the collections of the named database. The store takes
// ownership of client and disconnects it on Close.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		users:    NewCollection[types.User](db, store.UsersCollection),
		students: NewCollection[types.Student](db, store.StudentsCollection),
	}
}

func (s *Store) Users() store.Collection[types.User] {
	return s.users
}

func (s *Store) Students() store.Collection[types.Student] {
	return s.students
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
