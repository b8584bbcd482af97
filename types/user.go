package types

import "time"

// User represents an account allowed to use the student API.
// It contains identity, credentials, and activation state.
type User struct {
	// ID is the store-generated identifier of the user.
	ID string `json:"id" bson:"_id,omitempty"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" bson:"username"`

	// Email is the user's email address. It is unique across users.
	Email string `json:"email" bson:"email"`

	// HashedPassword stores the bcrypt digest of the user's password.
	// This field is never exposed in API responses.
	HashedPassword string `json:"-" bson:"hashed_password"`

	// IsActive reports whether the account may authenticate requests.
	// New accounts are active.
	IsActive bool `json:"is_active" bson:"is_active"`

	// CreatedAt is the timestamp when the account was registered.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
