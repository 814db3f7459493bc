package models

import "time"

// User is the full profile of a registered user. The password hash is
// deliberately not part of this struct; it never leaves the users repository.
type User struct {
	Username    string
	FirstName   string
	LastName    string
	Phone       string
	JoinAt      time.Time
	LastLoginAt time.Time
}

// UserSummary is the directory-listing projection of a user.
type UserSummary struct {
	Username  string
	FirstName string
	LastName  string
}

// Person identifies one side of a message.
type Person struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}
