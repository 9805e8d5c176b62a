package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/NicolasHaas/gotrivia/pkg/datastore"
	"github.com/NicolasHaas/gotrivia/pkg/logging"
	"github.com/NicolasHaas/gotrivia/pkg/server"
	"github.com/NicolasHaas/gotrivia/pkg/store"
	"github.com/NicolasHaas/gotrivia/pkg/version"
)

func main() {
	cfg := server.DefaultConfig()

	configPath := flag.String("config", "", "YAML config file (explicit flags override it)")
	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "TCP bind address for the game protocol")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "HTTP bind address for Prometheus /metrics (empty to disable)")
	flag.StringVar(&cfg.UsersFile, "users-file", cfg.UsersFile, "Users file (pipe-separated table)")
	flag.StringVar(&cfg.QuestionsFile, "questions-file", cfg.QuestionsFile, "Questions file (pipe-separated table)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file (users persist across restarts)")
	flag.StringVar(&cfg.QuestionSource, "questions", cfg.QuestionSource, "Question source: file, db, or web")
	flag.IntVar(&cfg.RewardPoints, "reward", cfg.RewardPoints, "Score reward per correct answer")
	flag.BoolVar(&cfg.MarkAskedOnAnswer, "mark-asked-on-answer", cfg.MarkAskedOnAnswer, "Also exclude graded questions from future selection")
	flag.BoolVar(&cfg.ExportUsers, "export-users", false, "Export all users as YAML and exit")
	flag.BoolVar(&cfg.ExportQuestions, "export-questions", false, "Export the question bank as YAML and exit")

	showVersion := flag.Bool("version", false, "Print version and exit")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	// Configure structured logging
	if err := logging.Setup(logging.Options{
		Level:  *logLevel,
		Format: *logFormat,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	if *configPath != "" {
		fileCfg, err := server.LoadConfig(*configPath)
		if err != nil {
			slog.Error("load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = mergeFlags(fileCfg, cfg)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	users, bank, db, err := loadData(cfg)
	if err != nil {
		slog.Error("load data", "err", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	// Export commands run and exit without binding a socket.
	if cfg.ExportUsers || cfg.ExportQuestions {
		if cfg.ExportUsers {
			data, err := server.ExportUsersYAML(users)
			if err != nil {
				slog.Error("export users", "err", err)
				os.Exit(1)
			}
			fmt.Print(string(data))
		}
		if cfg.ExportQuestions {
			data, err := server.ExportQuestionsYAML(bank)
			if err != nil {
				slog.Error("export questions", "err", err)
				os.Exit(1)
			}
			fmt.Print(string(data))
		}
		return
	}

	slog.Info("starting trivia server", "version", version.String(),
		"users", users.Count(), "questions", bank.Count(), "source", cfg.QuestionSource)

	srv := server.New(cfg, server.Dependencies{Users: users, Bank: bank})
	if err := srv.Run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}

	// Write scores back so a restart keeps them.
	if db != nil {
		if err := db.SaveUsers(users.All()); err != nil {
			slog.Error("save users", "err", err)
			os.Exit(1)
		}
		slog.Info("saved users", "count", users.Count())
	}
}

// mergeFlags lays explicitly set command-line flags over a file config.
func mergeFlags(fileCfg, flagCfg server.Config) server.Config {
	merged := fileCfg
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			merged.ListenAddr = flagCfg.ListenAddr
		case "metrics":
			merged.MetricsAddr = flagCfg.MetricsAddr
		case "users-file":
			merged.UsersFile = flagCfg.UsersFile
		case "questions-file":
			merged.QuestionsFile = flagCfg.QuestionsFile
		case "db":
			merged.DBPath = flagCfg.DBPath
		case "questions":
			merged.QuestionSource = flagCfg.QuestionSource
		case "reward":
			merged.RewardPoints = flagCfg.RewardPoints
		case "mark-asked-on-answer":
			merged.MarkAskedOnAnswer = flagCfg.MarkAskedOnAnswer
		}
	})
	merged.ExportUsers = flagCfg.ExportUsers
	merged.ExportQuestions = flagCfg.ExportQuestions
	return merged
}

// loadData populates the user store and question bank from the configured
// sources. The returned SQLite handle is non-nil when a database path is set;
// the caller owns closing it and writing scores back on shutdown.
func loadData(cfg server.Config) (*store.UserStore, *store.QuestionBank, *datastore.SQLiteStore, error) {
	users := store.NewUserStore()
	bank := store.NewQuestionBank()

	var db *datastore.SQLiteStore
	if cfg.DBPath != "" {
		var err error
		db, err = datastore.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	// Users come from the database when one is configured; the users file
	// seeds an empty database on first run.
	if db != nil {
		if err := datastore.PopulateUsers(users, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}
	if users.Count() == 0 {
		fileStore := &datastore.FileStore{UsersPath: cfg.UsersFile, QuestionsPath: cfg.QuestionsFile}
		if err := datastore.PopulateUsers(users, fileStore); err != nil {
			if db != nil {
				db.Close()
			}
			return nil, nil, nil, err
		}
	}

	var src datastore.QuestionLoader
	switch cfg.QuestionSource {
	case server.SourceFile:
		src = &datastore.FileStore{UsersPath: cfg.UsersFile, QuestionsPath: cfg.QuestionsFile}
	case server.SourceDB:
		src = db
	case server.SourceWeb:
		src = datastore.NewWebQuizLoader()
	}
	if err := datastore.PopulateQuestions(bank, src); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, nil, err
	}

	// Keep web-fetched questions for offline restarts.
	if cfg.QuestionSource == server.SourceWeb && db != nil {
		if err := db.ImportQuestions(bank.All()); err != nil {
			slog.Warn("persist fetched questions", "err", err)
		}
	}

	return users, bank, db, nil
}
