package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/student-records/apiserver/config"
	"github.com/student-records/apiserver/internal/auth"
	"github.com/student-records/apiserver/internal/db"
	"github.com/student-records/apiserver/internal/store/sqlstore"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "students.db"),
	}
	if err := db.MigrateUp(cfg); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	conn, err := db.OpenSQLite(context.Background(), cfg.SQLitePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s := sqlstore.New(conn, sqlstore.SQLite)
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return s
}

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestStore(t).Users(), auth.NewHasher(bcrypt.MinCost))
}
