package sqlstore

import (
	"context"
	"database/sql"

	"github.com/student-records/apiserver/internal/store"
	"github.com/student-records/apiserver/types"
)

// UserSchema maps types.User onto the users table.
var UserSchema = Schema[types.User]{
	Table:   store.UsersCollection,
	Columns: []string{"username", "email", "hashed_password", "is_active", "created_at"},
	Values: func(u types.User) []any {
		return []any{u.Username, u.Email, u.HashedPassword, u.IsActive, u.CreatedAt}
	},
	Scan: func(scan func(dest ...any) error) (types.User, error) {
		var u types.User
		err := scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt)
		return u, err
	},
}

// StudentSchema maps types.Student onto the students table.
var StudentSchema = Schema[types.Student]{
	Table: store.StudentsCollection,
	Columns: []string{
		"name", "email", "grade", "age", "address", "description", "role", "created_at", "updated_at",
	},
	Values: func(s types.Student) []any {
		return []any{
			s.Name, s.Email, s.Grade, s.Age, s.Address, s.Description, string(s.Role), s.CreatedAt, s.UpdatedAt,
		}
	},
	Scan: func(scan func(dest ...any) error) (types.Student, error) {
		var s types.Student
		var role string
		err := scan(
			&s.ID,
			&s.Name,
			&s.Email,
			&s.Grade,
			&s.Age,
			&s.Address,
			&s.Description,
			&role,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		s.Role = types.Role(role)
		return s, err
	},
}

// Store holds the users and students tables of one database.
type Store struct {
	db       *sql.DB
	users    *Collection[types.User]
	students *Collection[types.Student]
}

// New binds the tables of db. The store takes ownership of db and closes it
// on Close.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:       db,
		users:    NewCollection(db, dialect, UserSchema),
		students: NewCollection(db, dialect, StudentSchema),
	}
}

func (s *Store) Users() store.Collection[types.User] {
	return s.users
}

func (s *Store) Students() store.Collection[types.Student] {
	return s.students
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
