package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/NicolasHaas/gotrivia/pkg/model"
)

// SQLiteStore loads users and questions from a SQLite database and can write
// scores back on shutdown. Question options are stored as a single
// comma-joined column; the correct answer is stored as its text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database and runs migrations.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("datastore: open db: %w", err)
	}

	ctx := context.Background()

	// WAL keeps reads cheap while the server writes scores back
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("datastore: set WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("datastore: set busy_timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("datastore: migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		username TEXT    PRIMARY KEY CHECK(length(username) > 0 AND length(username) <= 32),
		password TEXT    NOT NULL,
		score    INTEGER NOT NULL DEFAULT 0 CHECK(score >= 0),
		asked    TEXT    NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS questions (
		id      INTEGER PRIMARY KEY,
		text    TEXT    NOT NULL CHECK(length(text) > 0),
		answers TEXT    NOT NULL,
		correct TEXT    NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// LoadUsers reads all users.
func (s *SQLiteStore) LoadUsers() ([]*model.User, error) {
	rows, err := s.db.QueryContext(context.Background(),
		"SELECT username, password, score, asked FROM users ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("datastore: query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*model.User
	for rows.Next() {
		var username, password, asked string
		var score int
		if err := rows.Scan(&username, &password, &score, &asked); err != nil {
			return nil, fmt.Errorf("datastore: scan user: %w", err)
		}
		u := model.NewUser(username, password, score)
		if asked != "" {
			for _, field := range strings.Split(asked, ",") {
				var id int
				if _, err := fmt.Sscanf(strings.TrimSpace(field), "%d", &id); err != nil {
					return nil, fmt.Errorf("datastore: user %s: bad asked id %q", username, field)
				}
				u.Asked[id] = true
			}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// LoadQuestions reads all questions.
func (s *SQLiteStore) LoadQuestions() ([]model.Question, error) {
	rows, err := s.db.QueryContext(context.Background(),
		"SELECT id, text, answers, correct FROM questions ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("datastore: query questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var answers string
		if err := rows.Scan(&q.ID, &q.Text, &answers, &q.Correct); err != nil {
			return nil, fmt.Errorf("datastore: scan question: %w", err)
		}
		q.Answers = strings.Split(answers, ",")
		for i := range q.Answers {
			q.Answers[i] = strings.TrimSpace(q.Answers[i])
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// SaveUsers upserts users with their current score and asked set. Called on
// shutdown when score persistence is enabled.
func (s *SQLiteStore) SaveUsers(users []model.User) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("datastore: begin save: %w", err)
	}

	for _, u := range users {
		asked := make([]string, 0, len(u.Asked))
		for id := range u.Asked {
			asked = append(asked, fmt.Sprintf("%d", id))
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, password, score, asked) VALUES (?, ?, ?, ?)
			ON CONFLICT(username) DO UPDATE SET score = excluded.score, asked = excluded.asked`,
			u.Username, u.Password, u.Score, strings.Join(asked, ","))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("datastore: save user %s: %w", u.Username, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("datastore: commit save: %w", err)
	}
	return nil
}

// ImportQuestions inserts questions, replacing rows with the same id. Used to
// seed a database from another loader.
func (s *SQLiteStore) ImportQuestions(questions []model.Question) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("datastore: begin import: %w", err)
	}
	for _, q := range questions {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO questions (id, text, answers, correct) VALUES (?, ?, ?, ?)",
			q.ID, q.Text, strings.Join(q.Answers, ","), q.Correct)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("datastore: import question %d: %w", q.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("datastore: commit import: %w", err)
	}
	return nil
}
