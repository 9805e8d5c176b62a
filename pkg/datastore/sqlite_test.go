package datastore

import (
	"path/filepath"
	"testing"

	"github.com/NicolasHaas/gotrivia/pkg/model"
)

func newTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "trivia.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteUsersRoundTrip(t *testing.T) {
	s := newTestDB(t)

	bob := model.NewUser("bob", "secret", 10)
	bob.Asked[2313] = true
	alice := model.NewUser("alice", "pw", 0)

	if err := s.SaveUsers([]model.User{*bob, *alice}); err != nil {
		t.Fatalf("SaveUsers: %v", err)
	}

	users, err := s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("LoadUsers: got %d users want 2", len(users))
	}

	byName := map[string]*model.User{}
	for _, u := range users {
		byName[u.Username] = u
	}
	got := byName["bob"]
	if got == nil || got.Score != 10 || got.Password != "secret" || !got.HasAsked(2313) {
		t.Fatalf("LoadUsers: unexpected bob %+v", got)
	}

	// Saving again updates score instead of duplicating the row.
	bob.Score = 15
	if err := s.SaveUsers([]model.User{*bob}); err != nil {
		t.Fatalf("SaveUsers: %v", err)
	}
	users, err = s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("LoadUsers: got %d users want 2 after upsert", len(users))
	}
}

func TestSQLiteQuestionsRoundTrip(t *testing.T) {
	s := newTestDB(t)

	in := []model.Question{
		{ID: 2313, Text: "How much is 2 + 2", Answers: []string{"3", "4", "2", "1"}, Correct: "4"},
		{ID: 4122, Text: "What is the capital of France ?", Answers: []string{"Lion", "Marseille", "Paris", "Montpelier"}, Correct: "Paris"},
	}
	if err := s.ImportQuestions(in); err != nil {
		t.Fatalf("ImportQuestions: %v", err)
	}

	out, err := s.LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("LoadQuestions: got %d questions want 2", len(out))
	}
	if out[1].Correct != "Paris" || len(out[1].Answers) != 4 {
		t.Fatalf("LoadQuestions: unexpected question %+v", out[1])
	}
	for _, q := range out {
		if err := q.Validate(); err != nil {
			t.Fatalf("LoadQuestions: question %d invalid: %v", q.ID, err)
		}
	}
}
