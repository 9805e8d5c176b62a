package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NicolasHaas/gotrivia/pkg/quiz"
)

// Question source names accepted by Config.QuestionSource.
const (
	SourceFile = "file"
	SourceDB   = "db"
	SourceWeb  = "web"
)

// Config holds server configuration. Zero values fall back to defaults when
// loaded from YAML.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`  // TCP bind address for the game protocol
	MetricsAddr string `yaml:"metrics_addr"` // HTTP bind address for /metrics (empty = disabled)

	UsersFile      string `yaml:"users_file"`      // pipe-table users file
	QuestionsFile  string `yaml:"questions_file"`  // pipe-table questions file
	DBPath         string `yaml:"db_path"`         // SQLite database (users + questions + score write-back)
	QuestionSource string `yaml:"question_source"` // "file", "db", or "web"

	RewardPoints      int  `yaml:"reward_points"`        // score reward per correct answer
	MarkAskedOnAnswer bool `yaml:"mark_asked_on_answer"` // also exclude graded questions from future selection

	// CLI-only actions (run and exit)
	ExportUsers     bool `yaml:"-"` // export all users as YAML and exit
	ExportQuestions bool `yaml:"-"` // export all questions as YAML and exit
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     ":5678",
		MetricsAddr:    ":5679",
		UsersFile:      "users.txt",
		QuestionsFile:  "questions.txt",
		QuestionSource: SourceFile,
		RewardPoints:   quiz.CorrectAnswerPoints,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI flag
	if err != nil {
		return cfg, fmt.Errorf("server: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("server: parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks config invariants.
func (c Config) Validate() error {
	switch c.QuestionSource {
	case SourceFile, SourceDB, SourceWeb:
	default:
		return fmt.Errorf("server: unknown question source %q (valid: file, db, web)", c.QuestionSource)
	}
	if c.RewardPoints < 0 {
		return fmt.Errorf("server: reward points must be non-negative, got %d", c.RewardPoints)
	}
	if c.QuestionSource == SourceDB && c.DBPath == "" {
		return fmt.Errorf("server: question source %q requires a db path", c.QuestionSource)
	}
	return nil
}
