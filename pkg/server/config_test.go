package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	data := `listen_addr: ":7700"
questions_file: "trivia.txt"
reward_points: 10
mark_asked_on_answer: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != ":7700" {
		t.Fatalf("ListenAddr: got %q", cfg.ListenAddr)
	}
	if cfg.QuestionsFile != "trivia.txt" {
		t.Fatalf("QuestionsFile: got %q", cfg.QuestionsFile)
	}
	if cfg.RewardPoints != 10 {
		t.Fatalf("RewardPoints: got %d", cfg.RewardPoints)
	}
	if !cfg.MarkAskedOnAnswer {
		t.Fatal("MarkAskedOnAnswer: got false")
	}
	// Untouched keys keep their defaults.
	if cfg.UsersFile != "users.txt" {
		t.Fatalf("UsersFile default: got %q", cfg.UsersFile)
	}
	if cfg.QuestionSource != SourceFile {
		t.Fatalf("QuestionSource default: got %q", cfg.QuestionSource)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"web source", func(c *Config) { c.QuestionSource = SourceWeb }, false},
		{"db source with path", func(c *Config) { c.QuestionSource = SourceDB; c.DBPath = "x.db" }, false},
		{"db source without path", func(c *Config) { c.QuestionSource = SourceDB }, true},
		{"unknown source", func(c *Config) { c.QuestionSource = "carrier-pigeon" }, true},
		{"negative reward", func(c *Config) { c.RewardPoints = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate: err=%v wantErr=%t", err, tt.wantErr)
			}
		})
	}
}
