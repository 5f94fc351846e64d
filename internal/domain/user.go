package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User-specific validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrUsernameTooLong     = errors.New("username must be at most 32 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidRole         = errors.New("invalid role")
)

// Roles recognized by authorization checks.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User represents a registered user of the platform. Only the fields the
// task subsystem needs are modeled here: identity for ownership checks,
// username for author enrichment, and credentials for the auth
// collaborator.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username"      json:"username"`
	Password       string             `bson:"-"             json:"-"` // Plaintext, held only during registration
	HashedPassword string             `bson:"password"      json:"-"` // Never expose the hash in JSON
	Role           string             `bson:"role"          json:"role"`
	CreatedAt      time.Time          `bson:"created_at"    json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"    json:"updated_at"`
}

// Caller identifies the authenticated user making a request, as extracted
// by the auth middleware.
type Caller struct {
	ID   primitive.ObjectID
	Role string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// NewUser creates a new User with the given username and password.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(username, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        primitive.NewObjectID(),
		Username:  strings.TrimSpace(username),
		Password:  password,
		Role:      RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID.IsZero() {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if len(u.Username) > 32 {
		return ErrUsernameTooLong
	}

	if u.Role != RoleMember && u.Role != RoleAdmin {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt's practical input limit
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// AuthorView returns the display projection of this user.
func (u *User) AuthorView() AuthorView {
	return AuthorView{
		ID:       u.ID.Hex(),
		Username: u.Username,
	}
}
