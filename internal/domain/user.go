package domain

import "time"

// User is a community member known to the bot. StartedChat records whether the
// user ever opened a private chat with the bot, which is what makes a direct
// message deliverable.
type User struct {
	ID          int64 // telegram id
	FirstName   string
	Username    string
	Banned      bool
	StartedChat bool
	LastSeen    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
