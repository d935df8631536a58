package model

import "time"

// User represents a row in the `users` table.  Identifiers are UUID strings
// stored as CHAR(36).  The password hash never leaves the repository and
// session layers; handlers expose separate response types.
//
// Fields:
//  ID           – primary key (UUID).
//  Email        – unique email address.
//  Username     – unique optional username (empty when NULL).
//  PasswordHash – bcrypt hash of the password.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  CreatedAt    – timestamp of registration.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

// Role represents a row in the `roles` table: a named permission bucket
// assigned to users through the user_role join table.
type Role struct {
	ID   string // roles.id (UUID)
	Name string // roles.name, unique
}

// ProfileUpdate carries the editable profile fields.  A nil pointer leaves
// the corresponding column untouched.
type ProfileUpdate struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
}
