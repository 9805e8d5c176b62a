package server

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/NicolasHaas/gotrivia/pkg/store"
)

// UserYAML represents a user in YAML export.
type UserYAML struct {
	Username string `yaml:"username"`
	Score    int    `yaml:"score"`
	Asked    []int  `yaml:"asked,omitempty"`
}

// UsersExport is the top-level YAML for user export.
type UsersExport struct {
	Users []UserYAML `yaml:"users"`
}

// QuestionYAML represents a question in YAML export.
type QuestionYAML struct {
	ID      int      `yaml:"id"`
	Text    string   `yaml:"text"`
	Answers []string `yaml:"answers"`
	Correct string   `yaml:"correct"`
}

// QuestionsExport is the top-level YAML for question export.
type QuestionsExport struct {
	Questions []QuestionYAML `yaml:"questions"`
}

// ExportUsersYAML exports all users as YAML, in store insertion order.
// Passwords are deliberately left out of the export.
func ExportUsersYAML(users *store.UserStore) ([]byte, error) {
	export := UsersExport{}
	for _, u := range users.All() {
		asked := make([]int, 0, len(u.Asked))
		for id := range u.Asked {
			asked = append(asked, id)
		}
		sort.Ints(asked)
		export.Users = append(export.Users, UserYAML{
			Username: u.Username,
			Score:    u.Score,
			Asked:    asked,
		})
	}
	return yaml.Marshal(&export)
}

// ExportQuestionsYAML exports the question bank as YAML.
func ExportQuestionsYAML(bank *store.QuestionBank) ([]byte, error) {
	export := QuestionsExport{}
	for _, q := range bank.All() {
		export.Questions = append(export.Questions, QuestionYAML{
			ID:      q.ID,
			Text:    q.Text,
			Answers: q.Answers,
			Correct: q.Correct,
		})
	}
	return yaml.Marshal(&export)
}
