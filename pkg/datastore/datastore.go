// Package datastore loads users and questions into the in-memory stores at
// startup. Backends: pipe-table flat files, SQLite, and the Open Trivia DB
// HTTP API. The server core never touches a backend after the load completes.
package datastore

import (
	"fmt"

	"github.com/NicolasHaas/gotrivia/pkg/model"
	"github.com/NicolasHaas/gotrivia/pkg/store"
)

// UserLoader supplies the registered users.
type UserLoader interface {
	LoadUsers() ([]*model.User, error)
}

// QuestionLoader supplies the question bank contents.
type QuestionLoader interface {
	LoadQuestions() ([]model.Question, error)
}

// PopulateUsers fills a user store from a loader.
func PopulateUsers(dst *store.UserStore, src UserLoader) error {
	users, err := src.LoadUsers()
	if err != nil {
		return fmt.Errorf("datastore: load users: %w", err)
	}
	for _, u := range users {
		if err := dst.Add(u); err != nil {
			return fmt.Errorf("datastore: populate users: %w", err)
		}
	}
	return nil
}

// PopulateQuestions fills a question bank from a loader.
func PopulateQuestions(dst *store.QuestionBank, src QuestionLoader) error {
	questions, err := src.LoadQuestions()
	if err != nil {
		return fmt.Errorf("datastore: load questions: %w", err)
	}
	for _, q := range questions {
		if err := dst.Add(q); err != nil {
			return fmt.Errorf("datastore: populate questions: %w", err)
		}
	}
	return nil
}
