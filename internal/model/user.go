package model

import "time"

// User represents an application user record as stored in the
// `users` table. The password hash never leaves the server: it is
// tagged json:"-" and skipped during serialization.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name; also the token subject.
//	Email        – unique email address (stored lower-cased).
//	PasswordHash – bcrypt hashed password.
//	IsActive     – whether the account may authenticate.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`         // users.id
	Username     string    `json:"username"`   // users.username
	Email        string    `json:"email"`      // users.email
	PasswordHash string    `json:"-"`          // users.password_hash
	IsActive     bool      `json:"is_active"`  // users.is_active
	CreatedAt    time.Time `json:"created_at"` // users.created_at
}
