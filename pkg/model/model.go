// Package model defines the core domain types for the trivia game.
package model

import (
	"errors"
	"fmt"
	"slices"
)

const MaxUsernameLength = 32

var ErrUsernameEmpty = errors.New("username must not be empty")
var ErrUsernameTooLong = fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
var ErrUsernameInvalidChars = errors.New("username must contain only alphanumeric characters, underscores, or hyphens")

// User represents a registered player. Passwords are stored and compared as
// plain strings; this server has no authentication security layer.
type User struct {
	Username string
	Password string
	Score    int
	Asked    map[int]bool // question ids already served to this user
}

// NewUser creates a user with an empty asked set.
func NewUser(username, password string, score int) *User {
	return &User{
		Username: username,
		Password: password,
		Score:    score,
		Asked:    make(map[int]bool),
	}
}

// HasAsked reports whether the question id was already served to the user.
func (u *User) HasAsked(id int) bool {
	return u.Asked[id]
}

// ValidateUsername checks that a username is 1-32 ASCII alphanumeric,
// underscore, or hyphen characters. Returns nil on success or a descriptive
// error.
func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return ErrUsernameInvalidChars
		}
	}
	return nil
}

var ErrQuestionEmptyText = errors.New("question text must not be empty")
var ErrQuestionTooFewAnswers = errors.New("question needs at least two answer options")
var ErrQuestionBadCorrect = errors.New("correct answer must be one of the answer options")

// Question is a quiz question. Read-only after load.
type Question struct {
	ID      int
	Text    string
	Answers []string // ordered answer options as shown to the player
	Correct string   // the correct option, always a member of Answers
}

// Validate checks structural invariants after loading.
func (q *Question) Validate() error {
	if q.Text == "" {
		return ErrQuestionEmptyText
	}
	if len(q.Answers) < 2 {
		return ErrQuestionTooFewAnswers
	}
	if !slices.Contains(q.Answers, q.Correct) {
		return ErrQuestionBadCorrect
	}
	return nil
}

// Session represents one live connection's authentication state (in-memory
// only). ConnID is assigned by the server at accept time and never reused for
// the process lifetime.
type Session struct {
	ConnID        uint64
	Authenticated bool
	Username      string
}
