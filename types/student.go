package types

import "time"

// Role describes what kind of person a student record belongs to.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Student represents a single student record.
type Student struct {
	// ID is the store-generated identifier of the record.
	ID string `json:"id" bson:"_id,omitempty"`

	// Name is the student's full name.
	Name string `json:"name" bson:"name"`

	// Email is the student's email address. It is unique across students.
	Email string `json:"email" bson:"email"`

	// Grade is the school grade, from 1 to 12.
	Grade int `json:"grade" bson:"grade"`

	// Age is the student's age in years.
	Age int `json:"age" bson:"age"`

	// Address is the student's postal address.
	Address string `json:"address" bson:"address"`

	// Description holds optional free-form notes.
	Description string `json:"description,omitempty" bson:"description,omitempty"`

	// Role optionally marks the record as a student or a teacher.
	Role Role `json:"role,omitempty" bson:"role,omitempty"`

	// CreatedAt is the timestamp at which the record was created.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// UpdatedAt is the timestamp of the most recent change to the record.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// StudentInput carries the fields of a new student record.
type StudentInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Grade       int    `json:"grade" validate:"required,min=1,max=12"`
	Age         int    `json:"age" validate:"required,min=5,max=17"`
	Address     string `json:"address" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Role        Role   `json:"role,omitempty" validate:"omitempty,oneof=student teacher"`
}

// StudentUpdate carries a partial update. Only fields present in the
// request body are applied.
type StudentUpdate struct {
	Name        Optional[string] `json:"name"`
	Email       Optional[string] `json:"email"`
	Grade       Optional[int]    `json:"grade"`
	Age         Optional[int]    `json:"age"`
	Address     Optional[string] `json:"address"`
	Description Optional[string] `json:"description"`
	Role        Optional[Role]   `json:"role"`
}

// Empty reports whether the update carries no fields at all.
func (u StudentUpdate) Empty() bool {
	return !u.Name.Set && !u.Email.Set && !u.Grade.Set && !u.Age.Set &&
		!u.Address.Set && !u.Description.Set && !u.Role.Set
}
