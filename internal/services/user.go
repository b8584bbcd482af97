package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/student-records/apiserver/internal/store"
	"github.com/student-records/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher derives and checks password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// UserService encapsulates user use-cases.
type UserService struct {
	users  store.Collection[types.User]
	hasher PasswordHasher
	now    func() time.Time
}

func NewUserService(users store.Collection[types.User], hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher, now: time.Now}
}

// Register creates an active user. Uniqueness of username and email is
// enforced by the store's unique indexes.
func (s *UserService) Register(ctx context.Context, username, email, password string) (types.User, error) {
	digest, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return types.User{}, ErrPasswordTooLong
	}
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := types.User{
		Username:       username,
		Email:          email,
		HashedPassword: digest,
		IsActive:       true,
		CreatedAt:      s.now().UTC().Truncate(time.Millisecond),
	}
	id, err := s.users.InsertOne(ctx, user)
	if err != nil {
		return types.User{}, duplicateError(err)
	}

	user.ID = id
	user.HashedPassword = ""
	return user, nil
}

// Authenticate returns the user when password matches the stored digest.
// Unknown users and wrong passwords both report false.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, bool, error) {
	user, ok, err := s.FindByUsername(ctx, username)
	if err != nil || !ok {
		return types.User{}, false, err
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return types.User{}, false, nil
	}
	return user, true, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (types.User, bool, error) {
	user, err := s.users.FindOne(ctx, store.ByField("username", username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, false, nil
		}
		return types.User{}, false, err
	}
	return user, true, nil
}
